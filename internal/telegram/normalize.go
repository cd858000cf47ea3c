package telegram

import (
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/bot"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Normalize turns an update into a bot event. ok is false for updates the
// bot does not handle: edits, channel posts, stickers and the like.
func Normalize(u tgbotapi.Update) (bot.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		return fromCallback(u.CallbackQuery)
	case u.Message != nil:
		return fromMessage(u.Message)
	}
	return bot.Event{}, false
}

func fromMessage(m *tgbotapi.Message) (bot.Event, bool) {
	if m.From == nil || m.Chat == nil || m.From.IsBot {
		return bot.Event{}, false
	}
	ev := bot.Event{
		UserID:    m.From.ID,
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Username:  m.From.UserName,
		FullName:  fullName(m.From),
	}
	switch {
	case len(m.Photo) > 0:
		ev.Kind = bot.KindPhoto
		ev.PhotoFileID = m.Photo[len(m.Photo)-1].FileID
		ev.Text = m.Caption
	case m.Text != "":
		ev.Kind = bot.KindText
		ev.Text = m.Text
	default:
		return bot.Event{}, false
	}
	return ev, true
}

func fromCallback(q *tgbotapi.CallbackQuery) (bot.Event, bool) {
	if q.From == nil {
		return bot.Event{}, false
	}
	ev := bot.Event{
		UserID:       q.From.ID,
		ChatID:       q.From.ID,
		Username:     q.From.UserName,
		FullName:     fullName(q.From),
		Kind:         bot.KindCallback,
		CallbackID:   q.ID,
		CallbackData: q.Data,
	}
	if q.Message != nil && q.Message.Chat != nil {
		ev.ChatID = q.Message.Chat.ID
		ev.MessageID = q.Message.MessageID
	}
	return ev, true
}

func fullName(u *tgbotapi.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
