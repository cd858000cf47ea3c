package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
)

type UserService struct{ *deps }

// Ensure creates the user on first contact and refreshes last activity.
func (s *UserService) Ensure(ctx context.Context, telegramID int64, username, fullName string) (*models.User, bool, error) {
	u, created, err := s.store.EnsureUser(ctx, telegramID, username, fullName, s.cfg.EnergyMax, s.now())
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}
	return u, created, nil
}

func (s *UserService) Get(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.store.GetUser(ctx, telegramID)
}

func (s *UserService) ChooseRole(ctx context.Context, telegramID int64, role string) error {
	if role != models.RoleIntern && role != models.RoleVeteran {
		return invalid("role", "Неизвестная роль")
	}
	return s.store.SetRole(ctx, telegramID, role)
}

// Register stores the free-text profile and marks the user registered.
func (s *UserService) Register(ctx context.Context, telegramID int64, profile string) error {
	profile, err := requireText("profile", profile, 2000)
	if err != nil {
		return err
	}
	if len([]rune(profile)) < 3 {
		return invalid("profile", "Расскажи о себе чуть подробнее")
	}
	return s.store.CompleteRegistration(ctx, telegramID, profile)
}

var presences = map[string]bool{
	models.PresenceOnline:  true,
	models.PresenceAway:    true,
	models.PresenceBusy:    true,
	models.PresenceOffline: true,
}

func (s *UserService) SetPresence(ctx context.Context, telegramID int64, status string) error {
	if !presences[status] {
		return invalid("status", "Неизвестный статус")
	}
	return s.store.SetPresence(ctx, telegramID, status)
}

func (s *UserService) SetStatusMessage(ctx context.Context, telegramID int64, message string) error {
	message, err := requireText("status_message", message, 100)
	if err != nil {
		return err
	}
	return s.store.SetStatusMessage(ctx, telegramID, message)
}

// Profile is the personal cabinet view.
type Profile struct {
	User      *models.User
	Progress  []models.InternProgress
	Bookings  []models.EventSlot
	OpenTasks int
}

func (s *UserService) Profile(ctx context.Context, telegramID int64) (*Profile, error) {
	u, err := s.store.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: u}
	if p.Progress, err = s.store.ListProgress(ctx, telegramID); err != nil {
		return nil, err
	}
	if p.Bookings, err = s.store.ListUserBookings(ctx, telegramID); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListAssignedTasks(ctx, telegramID, models.TaskPending)
	if err != nil {
		return nil, err
	}
	p.OpenTasks = len(tasks)
	return p, nil
}

// CompletedTests counts distinct completed tests.
func (s *UserService) CompletedTests(ctx context.Context, telegramID int64) (int, error) {
	rows, err := s.store.ListProgress(ctx, telegramID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range rows {
		if r.Completed {
			n++
		}
	}
	return n, nil
}

// Graduated reports whether the user completed enough tests to graduate.
func (s *UserService) Graduated(ctx context.Context, telegramID int64) (bool, error) {
	n, err := s.CompletedTests(ctx, telegramID)
	if err != nil {
		return false, err
	}
	return n >= s.cfg.GraduationCount, nil
}

// Graduate promotes an intern who completed every test to veteran.
func (s *UserService) Graduate(ctx context.Context, telegramID int64) error {
	ok, err := s.Graduated(ctx, telegramID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotGraduated
	}
	return s.store.SetRole(ctx, telegramID, models.RoleVeteran)
}

// Others lists registered users except telegramID, ordered by id.
func (s *UserService) Others(ctx context.Context, telegramID int64) ([]models.User, error) {
	return s.store.ListUsers(ctx, store.UserFilter{RegisteredOnly: true, ExcludeID: telegramID})
}

func (s *UserService) All(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx, store.UserFilter{})
}

// Resolve picks a user either by @username or by 1-based position in list.
// The chosen user is re-read from the store so a stale list cannot be trusted.
func (s *UserService) Resolve(ctx context.Context, field, input string, list []models.User, self int64) (*models.User, error) {
	input = strings.TrimSpace(input)
	var u *models.User
	if strings.HasPrefix(input, "@") {
		found, err := s.store.FindUserByUsername(ctx, input)
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalid(field, "Пользователь "+input+" не найден")
		}
		if err != nil {
			return nil, err
		}
		u = found
	} else {
		idx, err := ParseIndex(field, input, len(list))
		if err != nil {
			return nil, err
		}
		fresh, err := s.store.GetUser(ctx, list[idx].TelegramID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalid(field, "Пользователь больше не доступен")
		}
		if err != nil {
			return nil, err
		}
		u = fresh
	}
	if u.TelegramID == self {
		return nil, invalid(field, "Нельзя выбрать самого себя")
	}
	return u, nil
}

func (s *UserService) Admins(ctx context.Context) ([]models.AdminGrant, error) {
	return s.store.ListAdmins(ctx)
}

func (s *UserService) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	return s.store.IsAdmin(ctx, telegramID)
}
