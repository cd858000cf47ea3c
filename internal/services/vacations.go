package services

import (
	"context"
	"strings"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/google/uuid"
)

var VacationTypes = []string{"Ежегодный", "Без сохранения", "Учебный"}

type VacationService struct{ *deps }

type VacationDraft struct {
	UserID int64
	Start  time.Time
	End    time.Time
	Type   string
	Reason string
}

// Days is the inclusive length of the request.
func (d VacationDraft) Days() int {
	return int(d.End.Sub(d.Start).Hours()/24) + 1
}

func (s *VacationService) Balance(ctx context.Context, userID int64) (*models.VacationBalance, error) {
	return s.store.EnsureVacationBalance(ctx, userID, s.now().Year(), s.cfg.VacationDaysPerYear)
}

// ParseStart accepts a start date that is not in the past.
func (s *VacationService) ParseStart(raw string) (time.Time, error) {
	t, err := ParseDate("start_date", raw)
	if err != nil {
		return time.Time{}, err
	}
	if t.Before(dayStart(s.now().UTC())) {
		return time.Time{}, invalid("start_date", "Дата начала не может быть в прошлом")
	}
	return t, nil
}

// ParseEnd accepts an end date after start within the same year.
func (s *VacationService) ParseEnd(start time.Time, raw string) (time.Time, error) {
	t, err := ParseDate("end_date", raw)
	if err != nil {
		return time.Time{}, err
	}
	if !t.After(start) {
		return time.Time{}, invalid("end_date", "Дата окончания должна быть позже даты начала")
	}
	if t.Year() != start.Year() {
		return time.Time{}, invalid("end_date", "Отпуск должен укладываться в один календарный год")
	}
	return t, nil
}

func (s *VacationService) ParseType(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, t := range VacationTypes {
		if t == raw {
			return t, nil
		}
	}
	return "", invalid("type", "Выбери тип отпуска кнопкой")
}

// Request moves the requested days from remaining to pending.
func (s *VacationService) Request(ctx context.Context, d VacationDraft) (*models.VacationRequest, *models.VacationBalance, error) {
	if !d.End.After(d.Start) {
		return nil, nil, invalid("end_date", "Дата окончания должна быть позже даты начала")
	}
	if _, err := s.ParseType(d.Type); err != nil {
		return nil, nil, err
	}
	req := &models.VacationRequest{
		UserID:       d.UserID,
		StartDate:    d.Start,
		EndDate:      d.End,
		VacationType: d.Type,
		Reason:       strings.TrimSpace(d.Reason),
		DaysCount:    d.Days(),
		Year:         d.Start.Year(),
		Status:       models.StatusPending,
		CreatedAt:    s.now(),
	}
	bal, err := s.store.CreateVacationRequest(ctx, req, s.cfg.VacationDaysPerYear)
	if err != nil {
		return nil, bal, err
	}
	return req, bal, nil
}

func (s *VacationService) Get(ctx context.Context, id uuid.UUID) (*models.VacationRequest, error) {
	return s.store.GetVacationRequest(ctx, id)
}

func (s *VacationService) Pending(ctx context.Context) ([]models.VacationRequest, error) {
	return s.store.ListVacationRequests(ctx, 0, models.StatusPending)
}

func (s *VacationService) Mine(ctx context.Context, userID int64) ([]models.VacationRequest, error) {
	return s.store.ListVacationRequests(ctx, userID, "")
}

func (s *VacationService) Approve(ctx context.Context, id uuid.UUID, reviewerID int64) (*models.VacationRequest, error) {
	return s.store.ApproveVacation(ctx, id, reviewerID, "", s.now())
}

func (s *VacationService) Reject(ctx context.Context, id uuid.UUID, reviewerID int64, comment string) (*models.VacationRequest, error) {
	comment, err := requireText("comment", comment, 1000)
	if err != nil {
		return nil, err
	}
	return s.store.RejectVacation(ctx, id, reviewerID, comment, s.now())
}
