package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	PhotoFileID string    `gorm:"type:text" json:"photo_file_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type AchievementLike struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AchievementID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_achievement_user" json:"achievement_id"`
	UserID        int64     `gorm:"not null;uniqueIndex:idx_like_achievement_user" json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type AchievementComment struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AchievementID uuid.UUID `gorm:"type:uuid;not null;index" json:"achievement_id"`
	UserID        int64     `gorm:"not null" json:"user_id"`
	Comment       string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

type CompanyContact struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyName string    `gorm:"size:255;not null;index" json:"company_name"`
	ContactName string    `gorm:"size:255" json:"contact_name"`
	Position    string    `gorm:"size:255" json:"position"`
	Email       string    `gorm:"size:255" json:"email"`
	Phone       string    `gorm:"size:50" json:"phone"`
	Telegram    string    `gorm:"size:64" json:"telegram"`
	Notes       string    `gorm:"type:text" json:"notes"`
	AddedBy     int64     `json:"added_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Broadcast is the delivery report of one admin mailing.
type Broadcast struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AdminID   int64          `gorm:"not null;index" json:"admin_id"`
	Target    string         `gorm:"size:20;not null" json:"target"`
	Text      string         `gorm:"type:text" json:"text"`
	Photos    datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"photos"`
	Sent      int            `json:"sent"`
	Failed    int            `json:"failed"`
	CreatedAt time.Time      `json:"created_at"`
}
