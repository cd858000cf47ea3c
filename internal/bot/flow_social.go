package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"github.com/google/uuid"
)

const feedSize = 10

// achievements

func achievementButtons(id uuid.UUID, likes int) *Keyboard {
	like := "❤️"
	if likes > 0 {
		like = fmt.Sprintf("❤️ %d", likes)
	}
	return Inline([]Button{
		{Text: like, Data: "ach:like:" + id.String()},
		{Text: "💬 Комментировать", Data: "ach:comment:" + id.String()},
	})
}

func achievementText(author string, a models.Achievement) string {
	text := fmt.Sprintf("🏆 %s\n%s", author, a.Title)
	if a.Description != "" {
		text += "\n\n" + a.Description
	}
	return text
}

func (b *Bot) startAchievement(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgAchievement, stepEnterTitle, nil)
}

func (b *Bot) handleAchievementTitle(ctx context.Context, r *Request) error {
	title, err := b.svc.Achievements.ValidateTitle(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("title", title)
	return b.next(ctx, r, stepEnterDesc)
}

func (b *Bot) handleAchievementDescription(ctx context.Context, r *Request) error {
	desc, skipped := input(r)
	if skipped {
		desc = ""
	}
	r.Dialogue.Set("description", desc)
	return b.next(ctx, r, stepUploadPhoto)
}

func (b *Bot) promptAchievementPhoto(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "📸 Приложи фото или пропусти:", Reply(Row(LabelSkip), Row(LabelBack)))
}

func (b *Bot) handleAchievementPhoto(ctx context.Context, r *Request) error {
	a, err := b.svc.Achievements.Publish(ctx, r.UserID, r.Dialogue.Get("title"), r.Dialogue.Get("description"), r.PhotoFileID)
	if err != nil {
		return err
	}
	report, err := b.announce(ctx, r.User, a)
	if err != nil {
		return err
	}
	return b.complete(ctx, r, fmt.Sprintf("🎉 Достижение опубликовано! Его увидели %d коллег.", report.Sent))
}

// announce fans a new achievement out to every other registered user.
func (b *Bot) announce(ctx context.Context, author *models.User, a *models.Achievement) (services.Report, error) {
	recipients, err := b.svc.Broadcaster.Recipients(ctx, services.TargetAll, author.TelegramID, 0)
	if err != nil {
		return services.Report{}, err
	}
	text := achievementText(author.DisplayName(), *a)
	kb := achievementButtons(a.ID, 0)
	return b.svc.Broadcaster.Fanout(ctx, recipients, func(ctx context.Context, chatID int64) error {
		if a.PhotoFileID != "" {
			_, err := b.out.SendPhoto(ctx, chatID, a.PhotoFileID, text, kb)
			return err
		}
		_, err := b.out.Send(ctx, chatID, text, kb)
		return err
	}), nil
}

func (b *Bot) showFeed(ctx context.Context, r *Request) error {
	items, err := b.svc.Achievements.Feed(ctx, feedSize)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return b.reply(ctx, r, "🏆 Пока никто не поделился достижениями.", nil)
	}
	for _, a := range items {
		author := fmt.Sprintf("id%d", a.UserID)
		if u, err := b.svc.Users.Get(ctx, a.UserID); err == nil {
			author = u.DisplayName()
		}
		text := achievementText(author, a)
		if a.PhotoFileID != "" {
			if _, err := b.out.SendPhoto(ctx, r.ChatID, a.PhotoFileID, text, achievementButtons(a.ID, 0)); err != nil {
				return err
			}
			continue
		}
		if err := b.reply(ctx, r, text, achievementButtons(a.ID, 0)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) likeAchievement(ctx context.Context, r *Request, id uuid.UUID) (string, error) {
	added, total, err := b.svc.Achievements.Like(ctx, id, r.UserID)
	if err != nil {
		return "", err
	}
	if !added {
		return "Ты уже лайкнул", nil
	}
	if err := b.out.EditMessage(ctx, r.ChatID, r.MessageID, "", achievementButtons(id, total)); err != nil {
		b.log.Warn("failed to update like counter", "chat_id", r.ChatID, "error", err)
	}
	if a, err := b.svc.Achievements.Get(ctx, id); err == nil && a.UserID != r.UserID {
		b.notify(ctx, a.UserID, fmt.Sprintf("❤️ %s оценил твое достижение «%s»", r.User.DisplayName(), a.Title), nil)
	}
	return "❤️", nil
}

func (b *Bot) startAchievementComment(ctx context.Context, r *Request, id uuid.UUID) (string, error) {
	if _, err := b.svc.Achievements.Get(ctx, id); err != nil {
		return "", err
	}
	return "", b.begin(ctx, r, dlgAchievementComment, stepEnterComment, map[string]string{"achievement": id.String()})
}

func (b *Bot) handleAchievementComment(ctx context.Context, r *Request) error {
	id, err := uuid.Parse(r.Dialogue.Get("achievement"))
	if err != nil {
		return store.ErrNotFound
	}
	a, err := b.svc.Achievements.Comment(ctx, id, r.UserID, r.Text)
	if err != nil {
		return err
	}
	if a.UserID != r.UserID {
		b.notify(ctx, a.UserID, fmt.Sprintf("💬 %s прокомментировал «%s»:\n%s", r.User.DisplayName(), a.Title, strings.TrimSpace(r.Text)), nil)
	}
	return b.complete(ctx, r, "✅ Комментарий отправлен.")
}

// contacts

var contactFields = map[string]string{
	stepCompany:     "company",
	stepContactName: "contact_name",
	stepPosition:    "position",
	stepEmail:       "email",
	stepPhone:       "phone",
	stepTelegram:    "telegram",
	stepNotes:       "notes",
}

func contactCard(c models.CompanyContact) string {
	var sb strings.Builder
	sb.WriteString("🏢 " + c.CompanyName)
	line := func(icon, v string) {
		if v != "" {
			sb.WriteString("\n" + icon + " " + v)
		}
	}
	line("👤", c.ContactName)
	line("💼", c.Position)
	line("📧", c.Email)
	line("📞", c.Phone)
	if c.Telegram != "" {
		sb.WriteString("\n✈️ @" + c.Telegram)
	}
	line("📝", c.Notes)
	return sb.String()
}

func (b *Bot) startContactCreate(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgContactCreate, stepCompany, nil)
}

// handleContactField stores one optional text field and moves on.
func (b *Bot) handleContactField(cur, nextStep string) handlerFunc {
	return func(ctx context.Context, r *Request) error {
		text, skipped := input(r)
		if skipped {
			text = ""
		}
		if cur == stepCompany && text == "" {
			return &services.ValidationError{Field: "company", Message: "Название компании обязательно"}
		}
		r.Dialogue.Set(contactFields[cur], text)
		return b.next(ctx, r, nextStep)
	}
}

func (b *Bot) handleContactEmail(ctx context.Context, r *Request) error {
	raw, skipped := input(r)
	email := ""
	if !skipped {
		var err error
		if email, err = b.svc.Contacts.ValidateEmail(raw); err != nil {
			return err
		}
	}
	r.Dialogue.Set("email", email)
	return b.next(ctx, r, stepPhone)
}

func (b *Bot) handleContactNotes(ctx context.Context, r *Request) error {
	notes, skipped := input(r)
	if skipped {
		notes = ""
	}
	d := r.Dialogue
	c, err := b.svc.Contacts.Create(ctx, r.UserID, services.ContactDraft{
		CompanyName: d.Get("company"),
		ContactName: d.Get("contact_name"),
		Position:    d.Get("position"),
		Email:       d.Get("email"),
		Phone:       d.Get("phone"),
		Telegram:    d.Get("telegram"),
		Notes:       notes,
	})
	if err != nil {
		return err
	}
	return b.complete(ctx, r, "✅ Контакт сохранен:\n\n"+contactCard(*c))
}

func (b *Bot) startContactSearch(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgContactSearch, stepEnterQuery, nil)
}

func (b *Bot) handleContactQuery(ctx context.Context, r *Request) error {
	found, err := b.svc.Contacts.Search(ctx, r.Text)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return b.complete(ctx, r, "🔍 Ничего не найдено.")
	}
	return b.complete(ctx, r, contactList("🔍 Найдено", found))
}

func contactList(header string, cs []models.CompanyContact) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d):", header, len(cs))
	for _, c := range cs {
		sb.WriteString("\n\n" + contactCard(c))
	}
	return sb.String()
}

func (b *Bot) listContacts(ctx context.Context, r *Request) error {
	cs, err := b.svc.Contacts.List(ctx)
	if err != nil {
		return err
	}
	if len(cs) == 0 {
		return b.reply(ctx, r, "📇 Контактов пока нет.", nil)
	}
	return b.reply(ctx, r, contactList("📇 Контакты", cs), nil)
}

// status message

func (b *Bot) startStatusMessage(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgStatusMessage, stepEnterText, nil)
}

func (b *Bot) handleStatusMessage(ctx context.Context, r *Request) error {
	if err := b.svc.Users.SetStatusMessage(ctx, r.UserID, r.Text); err != nil {
		return err
	}
	return b.complete(ctx, r, "✅ Сообщение статуса обновлено.")
}
