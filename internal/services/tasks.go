package services

import (
	"context"
	"strings"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/google/uuid"
)

// TaskRewards are the coin values a task creator may attach.
var TaskRewards = []int64{0, 5, 10, 20, 50}

var TaskPriorities = []struct {
	Label string
	Value string
}{
	{"🟢 Низкий", models.PriorityLow},
	{"🟡 Средний", models.PriorityMedium},
	{"🔴 Высокий", models.PriorityHigh},
}

type TaskService struct{ *deps }

type TaskDraft struct {
	CreatorID   int64
	AssigneeID  int64
	Title       string
	Description string
	Priority    string
	Reward      int64
	DueDate     *time.Time
}

func (s *TaskService) ValidateTitle(raw string) (string, error) {
	return requireText("title", raw, 255)
}

// ParsePriority accepts a priority label or value.
func (s *TaskService) ParsePriority(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, p := range TaskPriorities {
		if raw == p.Label || raw == p.Value {
			return p.Value, nil
		}
	}
	return "", invalid("priority", "Выбери приоритет кнопкой")
}

func (s *TaskService) ParseReward(raw string) (int64, error) {
	n, err := ParseInt("reward", raw, 0, 50)
	if err != nil {
		return 0, err
	}
	for _, r := range TaskRewards {
		if r == n {
			return n, nil
		}
	}
	return 0, invalid("reward", "Выбери награду кнопкой")
}

// ParseDueDate accepts DD.MM.YYYY not in the past.
func (s *TaskService) ParseDueDate(raw string) (time.Time, error) {
	t, err := ParseDate("due_date", raw)
	if err != nil {
		return time.Time{}, err
	}
	if t.Before(dayStart(s.now().UTC())) {
		return time.Time{}, invalid("due_date", "Срок не может быть в прошлом")
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, d TaskDraft) (*models.Task, error) {
	if d.CreatorID == d.AssigneeID {
		return nil, invalid("assignee", "Нельзя назначить задачу самому себе")
	}
	title, err := s.ValidateTitle(d.Title)
	if err != nil {
		return nil, err
	}
	if _, err := s.ParsePriority(d.Priority); err != nil {
		return nil, err
	}
	valid := false
	for _, r := range TaskRewards {
		if r == d.Reward {
			valid = true
		}
	}
	if !valid {
		return nil, invalid("reward", "Недопустимая награда")
	}
	t := &models.Task{
		CreatorID:   d.CreatorID,
		AssigneeID:  d.AssigneeID,
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Status:      models.TaskPending,
		Priority:    d.Priority,
		RewardCoins: d.Reward,
		DueDate:     d.DueDate,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.store.GetTask(ctx, id)
}

// Pending lists the tasks assigned to userID that can still be acted on.
func (s *TaskService) Pending(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.store.ListAssignedTasks(ctx, userID, models.TaskPending)
}

func (s *TaskService) Assigned(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.store.ListAssignedTasks(ctx, userID, "")
}

func (s *TaskService) Created(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.store.ListCreatedTasks(ctx, userID)
}

// Complete marks the task done and pays its reward.
func (s *TaskService) Complete(ctx context.Context, id uuid.UUID, assigneeID int64) (*models.Task, error) {
	return s.store.CompleteTask(ctx, id, assigneeID, s.now())
}

// Postpone pushes the task back by one day.
func (s *TaskService) Postpone(ctx context.Context, id uuid.UUID, assigneeID int64) (*models.Task, error) {
	return s.store.PostponeTask(ctx, id, assigneeID, s.now().Add(24*time.Hour))
}

func (s *TaskService) Cancel(ctx context.Context, id uuid.UUID, actorID int64, reason string) (*models.Task, error) {
	reason, err := requireText("reason", reason, 1000)
	if err != nil {
		return nil, err
	}
	return s.store.CancelTask(ctx, id, actorID, reason)
}
