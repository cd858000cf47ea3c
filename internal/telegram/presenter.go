// Package telegram adapts the bot to the Telegram Bot API: it renders bot
// output with tgbotapi, normalizes inbound updates and runs them through a
// per-user ordered worker pool.
package telegram

import (
	"context"
	"log/slog"

	"github.com/TheX6/partnerkin-super-bot/internal/bot"
	"github.com/TheX6/partnerkin-super-bot/internal/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the subset of *tgbotapi.BotAPI the presenter uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Presenter implements bot.Presenter. tgbotapi calls are not cancellable,
// so ctx is only checked before each call.
type Presenter struct {
	api API
	log *slog.Logger
}

func NewPresenter(api API, log *slog.Logger) *Presenter {
	if log == nil {
		log = slog.Default()
	}
	return &Presenter{api: api, log: log}
}

var _ bot.Presenter = (*Presenter)(nil)

func (p *Presenter) Send(ctx context.Context, chatID int64, text string, kb *bot.Keyboard) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if m := markup(kb); m != nil {
		msg.ReplyMarkup = m
	}
	sent, err := p.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (p *Presenter) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, kb *bot.Keyboard) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	if m := markup(kb); m != nil {
		photo.ReplyMarkup = m
	}
	sent, err := p.api.Send(photo)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (p *Presenter) SendDocument(ctx context.Context, chatID int64, doc render.Document, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: doc.Name, Bytes: doc.Data})
	d.Caption = caption
	_, err := p.api.Send(d)
	return err
}

// EditMessage replaces the text and inline keyboard of a sent message. An
// empty text edits only the keyboard.
func (p *Presenter) EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb *bot.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	inline := inlineMarkup(kb)
	if text == "" {
		if inline == nil {
			inline = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		}
		_, err := p.api.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, *inline))
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = inline
	_, err := p.api.Request(edit)
	return err
}

func (p *Presenter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if callbackID == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

func (p *Presenter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// markup converts a keyboard to the tgbotapi reply markup. nil leaves the
// chat's current keyboard untouched.
func markup(kb *bot.Keyboard) interface{} {
	switch {
	case kb == nil:
		return nil
	case kb.Remove:
		return tgbotapi.NewRemoveKeyboard(true)
	case len(kb.Inline) > 0:
		return *inlineMarkup(kb)
	case len(kb.Reply) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Reply))
		for _, row := range kb.Reply {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
		}
		return tgbotapi.NewReplyKeyboard(rows...)
	}
	return nil
}

func inlineMarkup(kb *bot.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if kb == nil || len(kb.Inline) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Inline))
	for _, row := range kb.Inline {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	m := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &m
}
