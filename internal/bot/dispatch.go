package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/session"
	"github.com/getsentry/sentry-go"
)

const (
	msgGenericError = "😔 Что-то пошло не так. Попробуй позже."
	msgCancelled    = "❌ Действие отменено."
	msgTooManyTries = "⚠️ Слишком много неверных попыток. Возвращаю в главное меню."
	msgExpectText   = "Здесь нужен текст"
	msgExpectPhoto  = "Пришли фото"
)

// Handle processes one event. Events of one user must not be handled
// concurrently; the transport guarantees per-user ordering. Failures never
// escape: the user gets a generic reply and the error is logged.
func (b *Bot) Handle(ctx context.Context, ev Event) {
	start := time.Now()
	r := &Request{Event: ev}
	defer func() {
		if rec := recover(); rec != nil {
			b.fail(ctx, r, fmt.Errorf("panic: %v", rec), rec)
		}
	}()

	user, _, err := b.svc.Users.Ensure(ctx, ev.UserID, ev.Username, ev.FullName)
	if err != nil {
		b.fail(ctx, r, err, nil)
		return
	}
	r.User = user
	if r.Dialogue, err = b.dialogues.Active(ctx, ev.UserID); err != nil {
		b.fail(ctx, r, err, nil)
		return
	}
	if err := b.dispatch(ctx, r); err != nil {
		b.fail(ctx, r, err, nil)
		return
	}
	b.log.Debug("event handled", "user_id", ev.UserID, "kind", ev.Kind, "latency_ms", time.Since(start).Milliseconds())
}

// dispatch applies the fixed precedence; the first match wins.
func (b *Bot) dispatch(ctx context.Context, r *Request) error {
	text := strings.TrimSpace(r.Text)

	if r.Dialogue != nil && r.Kind == KindText && b.escapes(r.Dialogue, text) {
		return b.escape(ctx, r)
	}
	if r.Kind == KindText && strings.HasPrefix(text, "/") {
		return b.command(ctx, r, text)
	}
	if r.Kind == KindCallback {
		return b.callback(ctx, r)
	}
	if r.Kind == KindPhoto && r.Dialogue != nil && b.expectsPhoto(r.Dialogue) {
		return b.runStep(ctx, r)
	}
	if rt, ok := b.routes[text]; ok && r.Kind == KindText {
		if r.Dialogue != nil {
			if err := b.dialogues.Clear(ctx, r.UserID); err != nil {
				return err
			}
			r.Dialogue = nil
		}
		return b.run(ctx, r, rt)
	}
	if r.Dialogue != nil {
		return b.runStep(ctx, r)
	}
	if !r.User.IsRegistered && r.Kind == KindText && text != "" {
		return b.captureRegistration(ctx, r)
	}
	return nil
}

// run executes a route after its access checks.
func (b *Bot) run(ctx context.Context, r *Request, rt route) error {
	if rt.role != "" && (r.User == nil || !r.User.IsRegistered || r.User.Role != rt.role) {
		return b.refuse(ctx, r, services.ErrWrongRole)
	}
	if rt.admin || rt.secure {
		ok, err := b.svc.AdminAuth.IsAdmin(ctx, r.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return b.refuse(ctx, r, services.ErrNotAdmin)
		}
	}
	if rt.secure {
		if err := b.svc.AdminAuth.VerifyActive(r.UserID); err != nil {
			return b.refuse(ctx, r, err)
		}
	}
	return b.settle(ctx, r, rt.handle(ctx, r))
}

func (b *Bot) escape(ctx context.Context, r *Request) error {
	if err := b.dialogues.Clear(ctx, r.UserID); err != nil {
		return err
	}
	r.Dialogue = nil
	if err := b.reply(ctx, r, msgCancelled, nil); err != nil {
		return err
	}
	return b.showRoot(ctx, r)
}

// escapes checks text against the escape words. Free-text steps need the
// whole message to be escape words so ordinary content is kept.
func (b *Bot) escapes(d *session.Dialogue, text string) bool {
	if st, ok := b.flows[d.Kind][d.Step]; ok && st.freeText {
		return isOnlyEscape(text)
	}
	return isEscape(text)
}

func (b *Bot) expectsPhoto(d *session.Dialogue) bool {
	st, ok := b.flows[d.Kind][d.Step]
	return ok && st.photo
}

func (b *Bot) runStep(ctx context.Context, r *Request) error {
	d := r.Dialogue
	st, ok := b.flows[d.Kind][d.Step]
	if !ok {
		_ = b.dialogues.Clear(ctx, r.UserID)
		return fmt.Errorf("unknown dialogue step %s/%s", d.Kind, d.Step)
	}
	if r.Kind == KindPhoto && !st.photo {
		return b.retry(ctx, r, "❌ "+msgExpectText)
	}
	if r.Kind == KindText && st.photo && strings.TrimSpace(r.Text) != LabelSkip && strings.TrimSpace(r.Text) != LabelDone {
		return b.retry(ctx, r, "❌ "+msgExpectPhoto)
	}
	return b.settle(ctx, r, st.handle(ctx, r))
}

// settle turns a handler error into the right reply. Validation reprompts,
// refused preconditions end the dialogue with a specific message, anything
// else propagates as internal.
func (b *Bot) settle(ctx context.Context, r *Request, err error) error {
	if err == nil {
		return nil
	}
	if services.IsValidation(err) && r.Dialogue != nil {
		msg, _ := services.UserMessage(err)
		return b.retry(ctx, r, msg)
	}
	if _, ok := services.UserMessage(err); ok {
		return b.refuse(ctx, r, err)
	}
	if r.Dialogue != nil {
		if cerr := b.dialogues.Clear(ctx, r.UserID); cerr != nil {
			b.log.Error("failed to clear dialogue", "user_id", r.UserID, "error", cerr)
		}
	}
	return err
}

// refuse reports a precondition failure, ends any dialogue and shows the menu.
func (b *Bot) refuse(ctx context.Context, r *Request, cause error) error {
	msg, ok := services.UserMessage(cause)
	if !ok {
		return cause
	}
	if r.Dialogue != nil {
		if err := b.dialogues.Clear(ctx, r.UserID); err != nil {
			return err
		}
		r.Dialogue = nil
	}
	if r.Kind == KindCallback {
		_ = b.out.AnswerCallback(ctx, r.CallbackID, "")
	}
	return b.reply(ctx, r, msg, b.rootKeyboard(ctx, r))
}

// retry counts an invalid input against the budget and asks again.
func (b *Bot) retry(ctx context.Context, r *Request, msg string) error {
	exhausted, err := b.dialogues.Fail(ctx, r.Dialogue)
	if err != nil {
		return err
	}
	if exhausted {
		r.Dialogue = nil
		if err := b.reply(ctx, r, msgTooManyTries, nil); err != nil {
			return err
		}
		return b.showRoot(ctx, r)
	}
	if err := b.reply(ctx, r, msg, nil); err != nil {
		return err
	}
	return b.flows[r.Dialogue.Kind][r.Dialogue.Step].prompt(ctx, r)
}

// begin starts a dialogue and asks its first question.
func (b *Bot) begin(ctx context.Context, r *Request, kind, first string, values map[string]string) error {
	d, err := b.dialogues.Start(ctx, r.UserID, r.ChatID, kind, first)
	if err != nil {
		return err
	}
	for k, v := range values {
		d.Set(k, v)
	}
	if len(values) > 0 {
		if err := b.dialogues.Save(ctx, d); err != nil {
			return err
		}
	}
	r.Dialogue = d
	return b.flows[kind][first].prompt(ctx, r)
}

// next saves the dialogue at step and asks its question.
func (b *Bot) next(ctx context.Context, r *Request, step string) error {
	r.Dialogue.Advance(step)
	if err := b.dialogues.Save(ctx, r.Dialogue); err != nil {
		return err
	}
	return b.flows[r.Dialogue.Kind][step].prompt(ctx, r)
}

// save persists values collected without changing the step.
func (b *Bot) save(ctx context.Context, r *Request) error {
	return b.dialogues.Save(ctx, r.Dialogue)
}

// finish ends the dialogue after its commit.
func (b *Bot) finish(ctx context.Context, r *Request) error {
	if err := b.dialogues.Clear(ctx, r.UserID); err != nil {
		return err
	}
	r.Dialogue = nil
	return nil
}

func (b *Bot) fail(ctx context.Context, r *Request, err error, panicValue interface{}) {
	var kind, stepName string
	if r.Dialogue != nil {
		kind, stepName = r.Dialogue.Kind, r.Dialogue.Step
	}
	input := r.Text
	if r.Kind == KindCallback {
		input = r.CallbackData
	}
	if kind == dlgAdminLogin {
		input = "***"
	}
	if len([]rune(input)) > 200 {
		input = string([]rune(input)[:200])
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: strconv.FormatInt(r.UserID, 10), Username: r.Username})
		scope.SetTag("dialogue", kind)
		scope.SetTag("step", stepName)
		scope.SetTag("event_kind", r.Kind)
	})
	if panicValue != nil {
		hub.Recover(panicValue)
	} else if !errors.Is(err, context.Canceled) {
		hub.CaptureException(err)
	}

	b.log.Error("event handling failed",
		"user_id", r.UserID,
		"chat_id", r.ChatID,
		"dialogue", kind,
		"step", stepName,
		"input", input,
		"error", err,
	)

	if r.Kind == KindCallback && r.CallbackID != "" {
		_ = b.out.AnswerCallback(ctx, r.CallbackID, "")
	}
	if _, serr := b.out.Send(ctx, r.ChatID, msgGenericError, nil); serr != nil {
		b.log.Warn("failed to deliver error reply", "chat_id", r.ChatID, "error", serr)
	}
}
