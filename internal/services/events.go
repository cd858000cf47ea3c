package services

import (
	"context"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"github.com/google/uuid"
)

var EventCategories = []string{"🏃 Зарядка", "🎰 Покер", "🎉 Корпоратив", "📚 Тренинг"}

type EventService struct{ *deps }

type SlotDraft struct {
	Category        string
	EventName       string
	Date            string
	Time            string
	Location        string
	MaxParticipants int
	PointsReward    int64
}

func (s *EventService) Active(ctx context.Context) ([]models.EventSlot, error) {
	return s.store.ListActiveSlots(ctx)
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*models.EventSlot, error) {
	return s.store.GetSlot(ctx, id)
}

// ValidateCategory accepts one of the known categories.
func (s *EventService) ValidateCategory(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, c := range EventCategories {
		if c == raw {
			return c, nil
		}
	}
	return "", invalid("category", "Выбери категорию кнопкой")
}

func (s *EventService) Create(ctx context.Context, d SlotDraft) (*models.EventSlot, error) {
	if _, err := s.ValidateCategory(d.Category); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(d.EventName)
	if name == "" {
		name = d.Category
	}
	if _, err := ParseDate("date", d.Date); err != nil {
		return nil, err
	}
	if _, err := ParseClock("time", d.Time); err != nil {
		return nil, err
	}
	if d.MaxParticipants < 1 || d.MaxParticipants > 100 {
		return nil, invalid("max_participants", "Число должно быть от 1 до 100")
	}
	if d.PointsReward < 1 || d.PointsReward > 100 {
		return nil, invalid("points_reward", "Число должно быть от 1 до 100")
	}
	slot := &models.EventSlot{
		EventName:       name,
		Category:        d.Category,
		Date:            d.Date,
		Time:            d.Time,
		Location:        strings.TrimSpace(d.Location),
		MaxParticipants: d.MaxParticipants,
		PointsReward:    d.PointsReward,
		Status:          models.SlotActive,
		CreatedAt:       s.now(),
	}
	if err := s.store.CreateSlot(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// Book re-checks status, capacity and uniqueness at commit.
func (s *EventService) Book(ctx context.Context, userID int64, slotID uuid.UUID) (*models.EventSlot, error) {
	return s.store.BookSlot(ctx, userID, slotID, s.now())
}

func (s *EventService) Bookings(ctx context.Context, userID int64) ([]models.EventSlot, error) {
	return s.store.ListUserBookings(ctx, userID)
}

// EditableFields lists slot fields by their display label.
var EditableFields = []struct {
	Label string
	Field string
}{
	{"Название", "event_name"},
	{"Дата", "date"},
	{"Время", "time"},
	{"Место", "location"},
	{"Макс. участников", "max_participants"},
	{"Награда", "points_reward"},
	{"Статус", "status"},
}

// FieldByLabel maps a button label to a column name.
func (s *EventService) FieldByLabel(label string) (string, error) {
	for _, f := range EditableFields {
		if f.Label == strings.TrimSpace(label) {
			return f.Field, nil
		}
	}
	return "", invalid("field", "Выбери поле кнопкой")
}

// Update parses raw for field and writes it.
func (s *EventService) Update(ctx context.Context, id uuid.UUID, field, raw string) error {
	if !store.SlotFields[field] {
		return invalid("field", "Это поле нельзя изменить")
	}
	var value interface{}
	switch field {
	case "date":
		if _, err := ParseDate("date", raw); err != nil {
			return err
		}
		value = strings.TrimSpace(raw)
	case "time":
		t, err := ParseClock("time", raw)
		if err != nil {
			return err
		}
		value = t
	case "max_participants":
		n, err := ParseInt(field, raw, 1, 100)
		if err != nil {
			return err
		}
		value = int(n)
	case "points_reward":
		n, err := ParseInt(field, raw, 1, 100)
		if err != nil {
			return err
		}
		value = n
	case "status":
		st := strings.ToLower(strings.TrimSpace(raw))
		if st != models.SlotActive && st != models.SlotInactive {
			return invalid("status", "Статус: active или inactive")
		}
		value = st
	default:
		text, err := requireText(field, raw, 255)
		if err != nil {
			return err
		}
		value = text
	}
	return s.store.UpdateSlot(ctx, id, field, value)
}

func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteSlot(ctx, id)
}
