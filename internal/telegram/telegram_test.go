package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/bot"
	"github.com/TheX6/partnerkin-super-bot/internal/ratelimit"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestNormalizeText(t *testing.T) {
	ev, ok := Normalize(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: 42, UserName: "anna", FirstName: "Anna", LastName: "Petrova"},
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      "/start",
	}})
	if !ok {
		t.Fatal("expected text message to normalize")
	}
	if ev.Kind != bot.KindText || ev.Text != "/start" || ev.UserID != 42 || ev.ChatID != 42 || ev.MessageID != 7 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.FullName != "Anna Petrova" || ev.Username != "anna" {
		t.Fatalf("unexpected identity %q %q", ev.FullName, ev.Username)
	}
}

func TestNormalizePhotoTakesLargestSize(t *testing.T) {
	ev, ok := Normalize(tgbotapi.Update{Message: &tgbotapi.Message{
		From:    &tgbotapi.User{ID: 1, FirstName: "Ivan"},
		Chat:    &tgbotapi.Chat{ID: 1},
		Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
		Caption: "result",
	}})
	if !ok {
		t.Fatal("expected photo to normalize")
	}
	if ev.Kind != bot.KindPhoto || ev.PhotoFileID != "large" || ev.Text != "result" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestNormalizeCallback(t *testing.T) {
	ev, ok := Normalize(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 5},
		Data:    "shop:coffee",
		Message: &tgbotapi.Message{MessageID: 99, Chat: &tgbotapi.Chat{ID: 500}},
	}})
	if !ok {
		t.Fatal("expected callback to normalize")
	}
	if ev.Kind != bot.KindCallback || ev.CallbackID != "cb1" || ev.CallbackData != "shop:coffee" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.ChatID != 500 || ev.MessageID != 99 {
		t.Fatalf("expected origin message coordinates, got chat %d message %d", ev.ChatID, ev.MessageID)
	}
}

func TestNormalizeIgnoresUnsupported(t *testing.T) {
	cases := map[string]tgbotapi.Update{
		"empty":   {},
		"sticker": {Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}}},
		"bot":     {Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1, IsBot: true}, Chat: &tgbotapi.Chat{ID: 1}, Text: "hi"}},
		"edited":  {EditedMessage: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}, Text: "hi"}},
	}
	for name, u := range cases {
		t.Run(name, func(t *testing.T) {
			if _, ok := Normalize(u); ok {
				t.Fatal("expected update to be ignored")
			}
		})
	}
}

type recorder struct {
	mu     sync.Mutex
	events map[int64][]string
}

func (r *recorder) handle(_ context.Context, ev bot.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[ev.UserID] = append(r.events[ev.UserID], ev.Text)
}

func TestPoolKeepsPerUserOrder(t *testing.T) {
	rec := &recorder{events: map[int64][]string{}}
	p := NewPool(rec.handle, WithQueueSize(200))
	ctx := context.Background()

	const n = 100
	for i := 0; i < n; i++ {
		for _, user := range []int64{1, 2, 3} {
			if err := p.Submit(ctx, bot.Event{UserID: user, Text: string(rune('a' + i%26)) + string(rune('0'+i/26))}); err != nil {
				t.Fatalf("submit: %v", err)
			}
		}
	}
	if err := p.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, user := range []int64{1, 2, 3} {
		got := rec.events[user]
		if len(got) != n {
			t.Fatalf("user %d: expected %d events, got %d", user, n, len(got))
		}
		for i, text := range got {
			want := string(rune('a'+i%26)) + string(rune('0'+i/26))
			if text != want {
				t.Fatalf("user %d: event %d out of order: got %q want %q", user, i, text, want)
			}
		}
	}
}

func TestPoolRateLimit(t *testing.T) {
	p := NewPool(func(context.Context, bot.Event) {}, WithLimiter(ratelimit.NewMemory(2, time.Minute)))
	ctx := context.Background()
	defer p.Close(ctx)

	for i := 0; i < 2; i++ {
		if err := p.Submit(ctx, bot.Event{UserID: 1}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := p.Submit(ctx, bot.Event{UserID: 1}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := p.Submit(ctx, bot.Event{UserID: 2}); err != nil {
		t.Fatalf("expected other user to pass, got %v", err)
	}
}

func TestPoolIdleWorkerExits(t *testing.T) {
	p := NewPool(func(context.Context, bot.Event) {}, WithIdleTimeout(10*time.Millisecond))
	ctx := context.Background()
	defer p.Close(ctx)

	if err := p.Submit(ctx, bot.Event{UserID: 1}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for p.Workers() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected idle worker to exit")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := p.Submit(ctx, bot.Event{UserID: 1}); err != nil {
		t.Fatalf("expected a fresh worker after idle exit, got %v", err)
	}
}

func TestPoolRefusesAfterClose(t *testing.T) {
	p := NewPool(func(context.Context, bot.Event) {})
	ctx := context.Background()
	if err := p.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Submit(ctx, bot.Event{UserID: 1}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestPresenterReplyKeyboard(t *testing.T) {
	api := &fakeAPI{}
	p := NewPresenter(api, nil)
	id, err := p.Send(context.Background(), 10, "menu", bot.Reply(bot.Row("a", "b"), bot.Row("c")))
	if err != nil || id != 1 {
		t.Fatalf("send: id %d err %v", id, err)
	}
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected MessageConfig, got %T", api.sent[0])
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok {
		t.Fatalf("expected reply keyboard, got %T", msg.ReplyMarkup)
	}
	if len(kb.Keyboard) != 2 || len(kb.Keyboard[0]) != 2 || kb.Keyboard[1][0].Text != "c" {
		t.Fatalf("unexpected keyboard %+v", kb.Keyboard)
	}
}

func TestPresenterInlineKeyboard(t *testing.T) {
	api := &fakeAPI{}
	p := NewPresenter(api, nil)
	_, err := p.Send(context.Background(), 10, "pick", bot.Inline([]bot.Button{
		{Text: "buy", Data: "shop:coffee"},
		{Text: "open", URL: "https://example.org/app"},
	}))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	kb, ok := api.sent[0].(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatal("expected inline keyboard")
	}
	row := kb.InlineKeyboard[0]
	if row[0].CallbackData == nil || *row[0].CallbackData != "shop:coffee" {
		t.Fatalf("unexpected data button %+v", row[0])
	}
	if row[1].URL == nil || *row[1].URL != "https://example.org/app" {
		t.Fatalf("unexpected url button %+v", row[1])
	}
}

func TestPresenterEditKeyboardOnly(t *testing.T) {
	api := &fakeAPI{}
	p := NewPresenter(api, nil)
	if err := p.EditMessage(context.Background(), 10, 3, "", bot.Inline([]bot.Button{{Text: "❤️ 2", Data: "ach:like:x"}})); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, ok := api.requests[0].(tgbotapi.EditMessageReplyMarkupConfig); !ok {
		t.Fatalf("expected markup-only edit, got %T", api.requests[0])
	}
	if err := p.EditMessage(context.Background(), 10, 3, "done", nil); err != nil {
		t.Fatalf("edit: %v", err)
	}
	edit, ok := api.requests[1].(tgbotapi.EditMessageTextConfig)
	if !ok || edit.Text != "done" || edit.ReplyMarkup != nil {
		t.Fatalf("expected text edit without keyboard, got %+v", api.requests[1])
	}
}

func TestPresenterSkipsEmptyCallbackID(t *testing.T) {
	api := &fakeAPI{}
	p := NewPresenter(api, nil)
	if err := p.AnswerCallback(context.Background(), "", "x"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if len(api.requests) != 0 {
		t.Fatalf("expected no request, got %d", len(api.requests))
	}
}
