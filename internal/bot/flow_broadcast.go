package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/services"
)

const maxBroadcastPhotos = 10

var broadcastTargets = []struct {
	label  string
	target string
}{
	{LabelTargetAll, services.TargetAll},
	{LabelTargetInterns, services.TargetInterns},
	{LabelTargetVeterans, services.TargetVeterans},
	{LabelTargetUser, services.TargetUser},
}

func (b *Bot) startBroadcast(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgBroadcast, stepSelectTarget, nil)
}

func (b *Bot) promptBroadcastTarget(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "📢 Кому отправить рассылку?", Reply(
		Row(LabelTargetAll),
		Row(LabelTargetInterns, LabelTargetVeterans),
		Row(LabelTargetUser),
		Row(LabelBack),
	))
}

func (b *Bot) handleBroadcastTarget(ctx context.Context, r *Request) error {
	text := strings.TrimSpace(r.Text)
	for _, t := range broadcastTargets {
		if t.label != text {
			continue
		}
		r.Dialogue.Set("target", t.target)
		if t.target == services.TargetUser {
			return b.next(ctx, r, stepSelectUser)
		}
		return b.next(ctx, r, stepEnterText)
	}
	return &services.ValidationError{Field: "target", Message: "Выбери получателей кнопкой"}
}

func (b *Bot) promptBroadcastUser(ctx context.Context, r *Request) error {
	users, err := b.svc.Users.Others(ctx, r.UserID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return services.ErrNoRecipients
	}
	return b.userList(ctx, r, "👤 Кому отправить сообщение?", users)
}

func (b *Bot) handleBroadcastUser(ctx context.Context, r *Request) error {
	u, err := b.pickUser(ctx, r, "user")
	if err != nil {
		return err
	}
	r.Dialogue.Set("user", strconv.FormatInt(u.TelegramID, 10))
	return b.next(ctx, r, stepEnterText)
}

func (b *Bot) promptBroadcastText(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "✏️ Текст рассылки:", Reply(Row(LabelBack)))
}

func (b *Bot) handleBroadcastText(ctx context.Context, r *Request) error {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return &services.ValidationError{Field: "text", Message: "Текст не может быть пустым"}
	}
	if len([]rune(text)) > 1024 {
		return &services.ValidationError{Field: "text", Message: "Слишком длинный текст (максимум 1024 символа)"}
	}
	r.Dialogue.Set("text", text)
	return b.next(ctx, r, stepCollectMedia)
}

func (b *Bot) promptBroadcastMedia(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "🖼 Пришли фото для рассылки или нажми «"+LabelDone+"», чтобы отправить.",
		Reply(Row(LabelDone), Row(LabelBack)))
}

func broadcastPhotos(r *Request) []string {
	raw := r.Dialogue.Get("photos")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// handleBroadcastMedia collects photos until the admin presses done.
func (b *Bot) handleBroadcastMedia(ctx context.Context, r *Request) error {
	photos := broadcastPhotos(r)
	if r.Kind == KindPhoto {
		if len(photos) >= maxBroadcastPhotos {
			return &services.ValidationError{Field: "photos", Message: fmt.Sprintf("Не больше %d фото. Нажми «%s»", maxBroadcastPhotos, LabelDone)}
		}
		photos = append(photos, r.PhotoFileID)
		r.Dialogue.Set("photos", strings.Join(photos, ","))
		if err := b.save(ctx, r); err != nil {
			return err
		}
		return b.reply(ctx, r, fmt.Sprintf("📎 Фото добавлено (%d). Пришли еще или нажми «%s».", len(photos), LabelDone), nil)
	}
	return b.sendBroadcast(ctx, r, photos)
}

func (b *Bot) sendBroadcast(ctx context.Context, r *Request, photos []string) error {
	d := r.Dialogue
	target := d.Get("target")
	userID, _ := strconv.ParseInt(d.Get("user"), 10, 64)
	recipients, err := b.svc.Broadcaster.Recipients(ctx, target, r.UserID, userID)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return services.ErrNoRecipients
	}
	text := "📢 " + d.Get("text")
	report := b.svc.Broadcaster.Fanout(ctx, recipients, func(ctx context.Context, chatID int64) error {
		if len(photos) == 0 {
			_, err := b.out.Send(ctx, chatID, text, nil)
			return err
		}
		for i, p := range photos {
			caption := ""
			if i == 0 {
				caption = text
			}
			if _, err := b.out.SendPhoto(ctx, chatID, p, caption, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err := b.svc.Broadcaster.Record(ctx, r.UserID, target, d.Get("text"), photos, report); err != nil {
		b.log.Error("failed to record broadcast", "admin_id", r.UserID, "error", err)
	}
	b.log.Info("broadcast sent", "admin_id", r.UserID, "target", target, "sent", report.Sent, "failed", report.Failed)
	return b.complete(ctx, r, fmt.Sprintf("✅ Рассылка завершена.\nДоставлено: %d\nОшибок: %d", report.Sent, report.Failed))
}
