package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
	TaskPostponed = "postponed"
	TaskCancelled = "cancelled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatorID       int64      `gorm:"not null;index" json:"creator_id"`
	AssigneeID      int64      `gorm:"not null;index:idx_tasks_assignee_status" json:"assignee_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Status          string     `gorm:"size:20;not null;default:'pending';index:idx_tasks_assignee_status" json:"status"`
	Priority        string     `gorm:"size:10;not null;default:'medium'" json:"priority"`
	RewardCoins     int64      `gorm:"not null;default:0" json:"reward_coins"`
	DueDate         *time.Time `json:"due_date"`
	CancelledReason string     `gorm:"type:text" json:"cancelled_reason"`
	PostponedUntil  *time.Time `json:"postponed_until"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
