package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	RoleIntern  = "intern"
	RoleVeteran = "veteran"
)

const (
	PresenceOnline  = "online"
	PresenceAway    = "away"
	PresenceBusy    = "busy"
	PresenceOffline = "offline"
)

// User is keyed by the Telegram user id; every other table references it by that id.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TelegramID    int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	Username      string    `gorm:"size:64;index" json:"username"`
	FullName      string    `gorm:"size:255" json:"full_name"`
	Role          string    `gorm:"size:20;default:'intern'" json:"role"`
	PCoins        int64     `gorm:"not null;default:0;check:p_coins >= 0" json:"p_coins"`
	Energy        int       `gorm:"not null;default:100" json:"energy"`
	Profile       string    `gorm:"type:text" json:"profile"`
	IsRegistered  bool      `gorm:"not null;default:false;index" json:"is_registered"`
	Status        string    `gorm:"size:20;default:'offline'" json:"status"`
	StatusMessage string    `gorm:"size:100" json:"status_message"`
	LastActivity  time.Time `json:"last_activity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DisplayName prefers the full name, then the @username, then the numeric id.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "id" + strconv.FormatInt(u.TelegramID, 10)
}

// AdminGrant marks a user as an admin. Created on login, removed on exit.
type AdminGrant struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TelegramID int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	Username   string    `gorm:"size:64" json:"username"`
	CreatedAt  time.Time `json:"created_at"`
}

// AdminPassword holds a personal bcrypt hash for an admin.
type AdminPassword struct {
	TelegramID   int64     `gorm:"primaryKey;autoIncrement:false" json:"telegram_id"`
	PasswordHash string    `gorm:"not null" json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}
