package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// TestSubmission is an intern's claim for a completed course test, awaiting admin review.
type TestSubmission struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        int64      `gorm:"not null;index" json:"user_id"`
	Username      string     `gorm:"size:64" json:"username"`
	TestName      string     `gorm:"size:100;not null" json:"test_name"`
	PointsClaimed int64      `gorm:"not null" json:"points_claimed"`
	PhotoFileID   string     `gorm:"type:text" json:"photo_file_id"`
	Status        string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewerID    *int64     `json:"reviewer_id"`
	ReviewComment string     `gorm:"type:text" json:"review_comment"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

type InternProgress struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       int64     `gorm:"not null;uniqueIndex:idx_progress_user_test" json:"user_id"`
	TestName     string    `gorm:"size:100;not null;uniqueIndex:idx_progress_user_test" json:"test_name"`
	Completed    bool      `gorm:"not null;default:false" json:"completed"`
	PointsEarned int64     `gorm:"not null;default:0" json:"points_earned"`
	CompletedAt  time.Time `json:"completed_at"`
}
