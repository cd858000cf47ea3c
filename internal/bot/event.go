package bot

import (
	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/session"
)

const (
	KindText     = "text"
	KindPhoto    = "photo"
	KindCallback = "callback"
)

// Event is one normalized inbound update.
type Event struct {
	UserID       int64
	ChatID       int64
	MessageID    int
	Username     string
	FullName     string
	Kind         string
	Text         string
	PhotoFileID  string
	CallbackID   string
	CallbackData string
}

// Request is an event together with the state loaded for it.
type Request struct {
	Event
	User     *models.User
	Dialogue *session.Dialogue
}
