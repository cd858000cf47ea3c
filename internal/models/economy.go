package models

import (
	"time"

	"github.com/google/uuid"
)

// Gift is an immutable coin transfer between two users.
type Gift struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SenderID   int64     `gorm:"not null;index:idx_gifts_sender_created" json:"sender_id"`
	ReceiverID int64     `gorm:"not null;index" json:"receiver_id"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Message    string    `gorm:"type:text" json:"message"`
	CreatedAt  time.Time `gorm:"index:idx_gifts_sender_created" json:"created_at"`
}

// Battle records one PVP round; PointsWon is the stake moved from loser to winner.
type Battle struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AttackerID int64     `gorm:"not null;index" json:"attacker_id"`
	DefenderID int64     `gorm:"not null;index" json:"defender_id"`
	WinnerID   int64     `gorm:"not null" json:"winner_id"`
	PointsWon  int64     `gorm:"not null" json:"points_won"`
	CreatedAt  time.Time `json:"created_at"`
}

type Purchase struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	ItemName  string    `gorm:"size:100;not null" json:"item_name"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// EnergyLog is an append-only record of energy spending.
type EnergyLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"size:50" json:"action"`
	Delta     int       `json:"delta"`
	CreatedAt time.Time `json:"created_at"`
}

type ClickerStat struct {
	UserID      int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	TotalClicks int64     `gorm:"not null;default:0" json:"total_clicks"`
	LastClick   time.Time `json:"last_click"`
}
