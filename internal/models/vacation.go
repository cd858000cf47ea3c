package models

import (
	"time"

	"github.com/google/uuid"
)

// VacationBalance partitions a year's allotment; TotalDays == UsedDays + PendingDays + RemainingDays.
type VacationBalance struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        int64     `gorm:"not null;uniqueIndex:idx_vacation_user_year" json:"user_id"`
	Year          int       `gorm:"not null;uniqueIndex:idx_vacation_user_year" json:"year"`
	TotalDays     int       `gorm:"not null;default:28" json:"total_days"`
	UsedDays      int       `gorm:"not null;default:0" json:"used_days"`
	PendingDays   int       `gorm:"not null;default:0" json:"pending_days"`
	RemainingDays int       `gorm:"not null;default:28" json:"remaining_days"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Consistent reports whether the partition invariant holds.
func (b *VacationBalance) Consistent() bool {
	return b.TotalDays == b.UsedDays+b.PendingDays+b.RemainingDays
}

type VacationRequest struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          int64      `gorm:"not null;index" json:"user_id"`
	StartDate       time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate         time.Time  `gorm:"type:date;not null" json:"end_date"`
	VacationType    string     `gorm:"size:50;not null" json:"vacation_type"`
	Reason          string     `gorm:"type:text" json:"reason"`
	DaysCount       int        `gorm:"not null" json:"days_count"`
	Year            int        `gorm:"not null" json:"year"`
	Status          string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewerID      *int64     `json:"reviewer_id"`
	ReviewerComment string     `gorm:"type:text" json:"reviewer_comment"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	CreatedAt       time.Time  `json:"created_at"`
}
