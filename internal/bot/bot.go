// Package bot turns normalized chat events into domain operations. It owns
// the dispatch precedence, the routing table, menus and every dialogue flow.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/session"
)

type handlerFunc func(ctx context.Context, r *Request) error

// route is one menu label. admin routes need a grant, secure routes also
// need a live admin session.
type route struct {
	handle handlerFunc
	// role, when set, limits the route to registered users of that role.
	role   string
	admin  bool
	secure bool
}

// callbackRoute handles inline button data starting with prefix. The
// returned text is shown to the user as the callback answer.
type callbackRoute struct {
	prefix string
	handle func(ctx context.Context, r *Request, payload string) (string, error)
}

// step is one state of a dialogue. prompt asks for the input, handle
// consumes it.
type step struct {
	prompt   handlerFunc
	handle   handlerFunc
	photo    bool
	freeText bool
}

type flow map[string]step

type Bot struct {
	svc       *services.Services
	dialogues *session.Registry
	nav       *session.Navigation
	out       Presenter
	log       *slog.Logger
	webAppURL string

	routes    map[string]route
	commands  map[string]route
	callbacks []callbackRoute
	flows     map[string]flow
}

type Option func(*Bot)

func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) { b.log = l }
}

// WithWebAppURL sets the mini-app link used by /app and the tapper button.
func WithWebAppURL(url string) Option {
	return func(b *Bot) { b.webAppURL = url }
}

func New(svc *services.Services, dialogues *session.Registry, nav *session.Navigation, out Presenter, opts ...Option) *Bot {
	b := &Bot{
		svc:       svc,
		dialogues: dialogues,
		nav:       nav,
		out:       out,
		log:       slog.Default(),
		routes:    make(map[string]route),
		commands:  make(map[string]route),
		flows:     make(map[string]flow),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.registerCommands()
	b.registerRoutes()
	b.registerCallbacks()
	b.registerFlows()
	return b
}

// on binds a menu label. Binding a label twice is a programming error.
func (b *Bot) on(label string, r route) {
	if _, dup := b.routes[label]; dup {
		panic(fmt.Sprintf("bot: duplicate route %q", label))
	}
	b.routes[label] = r
}

func (b *Bot) onCallback(prefix string, h func(ctx context.Context, r *Request, payload string) (string, error)) {
	b.callbacks = append(b.callbacks, callbackRoute{prefix: prefix, handle: h})
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, kb *Keyboard) error {
	_, err := b.out.Send(ctx, chatID, text, kb)
	return err
}

// reply answers in the chat the request came from.
func (b *Bot) reply(ctx context.Context, r *Request, text string, kb *Keyboard) error {
	return b.send(ctx, r.ChatID, text, kb)
}

// notify delivers to another user. Delivery errors are logged and dropped.
func (b *Bot) notify(ctx context.Context, chatID int64, text string, kb *Keyboard) {
	if _, err := b.out.Send(ctx, chatID, text, kb); err != nil {
		b.log.Warn("notification failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) notifyPhoto(ctx context.Context, chatID int64, fileID, caption string, kb *Keyboard) {
	if _, err := b.out.SendPhoto(ctx, chatID, fileID, caption, kb); err != nil {
		b.log.Warn("notification failed", "chat_id", chatID, "error", err)
	}
}

// notifyAdmins sends text to every admin except skip.
func (b *Bot) notifyAdmins(ctx context.Context, skip int64, photo, text string, kb *Keyboard) error {
	admins, err := b.svc.Users.Admins(ctx)
	if err != nil {
		return err
	}
	for _, a := range admins {
		if a.TelegramID == skip {
			continue
		}
		if photo != "" {
			b.notifyPhoto(ctx, a.TelegramID, photo, text, kb)
		} else {
			b.notify(ctx, a.TelegramID, text, kb)
		}
	}
	return nil
}
