package bot

import (
	"context"

	"github.com/TheX6/partnerkin-super-bot/internal/render"
)

// Button is an inline button. Exactly one of Data and URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is either a reply keyboard, an inline keyboard or a removal.
// A nil *Keyboard leaves the current keyboard alone.
type Keyboard struct {
	Reply  [][]string
	Inline [][]Button
	Remove bool
}

func Reply(rows ...[]string) *Keyboard {
	return &Keyboard{Reply: rows}
}

func Inline(rows ...[]Button) *Keyboard {
	return &Keyboard{Inline: rows}
}

func Row(labels ...string) []string {
	return labels
}

func RemoveKeyboard() *Keyboard {
	return &Keyboard{Remove: true}
}

// Presenter renders bot output on the chat transport. EditMessage with an
// empty text replaces only the inline keyboard.
type Presenter interface {
	Send(ctx context.Context, chatID int64, text string, kb *Keyboard) (int, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, kb *Keyboard) (int, error)
	SendDocument(ctx context.Context, chatID int64, doc render.Document, caption string) error
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb *Keyboard) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}
