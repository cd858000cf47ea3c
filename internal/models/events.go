package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SlotActive   = "active"
	SlotInactive = "inactive"
)

type EventSlot struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventName           string    `gorm:"size:255;not null" json:"event_name"`
	Category            string    `gorm:"size:100" json:"category"`
	Date                string    `gorm:"size:10;not null" json:"date"`
	Time                string    `gorm:"size:5;not null" json:"time"`
	Location            string    `gorm:"size:255" json:"location"`
	MaxParticipants     int       `gorm:"not null;default:10" json:"max_participants"`
	CurrentParticipants int       `gorm:"not null;default:0" json:"current_participants"`
	PointsReward        int64     `gorm:"not null;default:5" json:"points_reward"`
	Status              string    `gorm:"size:20;not null;default:'active';index" json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Free reports the remaining capacity.
func (s *EventSlot) Free() int {
	if s.CurrentParticipants >= s.MaxParticipants {
		return 0
	}
	return s.MaxParticipants - s.CurrentParticipants
}

type EventBooking struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_booking_user_slot" json:"user_id"`
	SlotID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_booking_user_slot;index" json:"slot_id"`
	CreatedAt time.Time `json:"created_at"`
}
