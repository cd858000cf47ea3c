package services

import (
	"context"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type AchievementService struct{ *deps }

func (s *AchievementService) ValidateTitle(raw string) (string, error) {
	return requireText("title", raw, 255)
}

func (s *AchievementService) Publish(ctx context.Context, userID int64, title, description, photoFileID string) (*models.Achievement, error) {
	title, err := s.ValidateTitle(title)
	if err != nil {
		return nil, err
	}
	a := &models.Achievement{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		PhotoFileID: photoFileID,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateAchievement(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AchievementService) Get(ctx context.Context, id uuid.UUID) (*models.Achievement, error) {
	return s.store.GetAchievement(ctx, id)
}

func (s *AchievementService) Feed(ctx context.Context, limit int) ([]models.Achievement, error) {
	return s.store.ListAchievements(ctx, limit)
}

// Like records one like per user. added is false for a repeat like.
func (s *AchievementService) Like(ctx context.Context, id uuid.UUID, userID int64) (added bool, total int, err error) {
	added, err = s.store.LikeAchievement(ctx, id, userID, s.now())
	if err != nil {
		return false, 0, err
	}
	total, err = s.store.CountLikes(ctx, id)
	return added, total, err
}

// Comment stores a comment and returns the achievement so its author can be notified.
func (s *AchievementService) Comment(ctx context.Context, id uuid.UUID, userID int64, text string) (*models.Achievement, error) {
	text, err := requireText("comment", text, 1000)
	if err != nil {
		return nil, err
	}
	a, err := s.store.GetAchievement(ctx, id)
	if err != nil {
		return nil, err
	}
	c := &models.AchievementComment{AchievementID: id, UserID: userID, Comment: text, CreatedAt: s.now()}
	if err := s.store.AddAchievementComment(ctx, c); err != nil {
		return nil, err
	}
	return a, nil
}

type ContactService struct{ *deps }

var validate = validator.New(validator.WithRequiredStructEnabled())

// ContactDraft fields are optional except the company name.
type ContactDraft struct {
	CompanyName string `validate:"required,max=255"`
	ContactName string `validate:"max=255"`
	Position    string `validate:"max=255"`
	Email       string `validate:"omitempty,email,max=255"`
	Phone       string `validate:"max=50"`
	Telegram    string `validate:"max=64"`
	Notes       string `validate:"max=2000"`
}

// ValidateEmail checks a single e-mail step input.
func (s *ContactService) ValidateEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if err := validate.Var(raw, "required,email"); err != nil {
		return "", invalid("email", "Некорректный e-mail")
	}
	return raw, nil
}

func (s *ContactService) Create(ctx context.Context, addedBy int64, d ContactDraft) (*models.CompanyContact, error) {
	if err := validate.Struct(d); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return nil, invalid(strings.ToLower(ve[0].Field()), "Некорректное значение поля "+ve[0].Field())
		}
		return nil, err
	}
	c := &models.CompanyContact{
		CompanyName: strings.TrimSpace(d.CompanyName),
		ContactName: d.ContactName,
		Position:    d.Position,
		Email:       d.Email,
		Phone:       d.Phone,
		Telegram:    strings.TrimPrefix(d.Telegram, "@"),
		Notes:       d.Notes,
		AddedBy:     addedBy,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) Search(ctx context.Context, query string) ([]models.CompanyContact, error) {
	query, err := requireText("query", query, 255)
	if err != nil {
		return nil, err
	}
	return s.store.SearchContacts(ctx, query, 20)
}

func (s *ContactService) List(ctx context.Context) ([]models.CompanyContact, error) {
	return s.store.ListContacts(ctx, 50)
}
