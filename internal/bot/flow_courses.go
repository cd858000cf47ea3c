package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"github.com/google/uuid"
)

const (
	reviewSubmission = "sub"
	reviewVacation   = "vac"
)

func (b *Bot) startSubmission(testKey string) handlerFunc {
	return func(ctx context.Context, r *Request) error {
		return b.begin(ctx, r, dlgSubmission, stepEnterScore, map[string]string{"test": testKey})
	}
}

func (b *Bot) courseTitle(key string) string {
	if c, ok := b.svc.Courses.Course(key); ok {
		return c.Title
	}
	return key
}

func (b *Bot) promptScore(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, fmt.Sprintf("%s\nСколько баллов ты набрал? (0–100)", b.courseTitle(r.Dialogue.Get("test"))), Reply(Row(LabelBack)))
}

func (b *Bot) handleScore(ctx context.Context, r *Request) error {
	points, err := b.svc.Courses.ParsePoints(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("points", strconv.FormatInt(points, 10))
	return b.next(ctx, r, stepUploadPhoto)
}

func (b *Bot) promptScreenshot(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "📸 Пришли скриншот с результатом теста:", Reply(Row(LabelBack)))
}

func (b *Bot) handleScreenshot(ctx context.Context, r *Request) error {
	if r.PhotoFileID == "" {
		return &services.ValidationError{Field: "photo", Message: "Пришли скриншот результата"}
	}
	points, _ := strconv.ParseInt(r.Dialogue.Get("points"), 10, 64)
	sub, err := b.svc.Courses.Submit(ctx, r.User, r.Dialogue.Get("test"), points, r.PhotoFileID)
	if err != nil {
		return err
	}
	caption := fmt.Sprintf("📝 Новый результат теста\n👤 %s\n%s\n🎯 Баллы: %d", r.User.DisplayName(), b.courseTitle(sub.TestName), sub.PointsClaimed)
	if err := b.notifyAdmins(ctx, r.UserID, sub.PhotoFileID, caption, reviewButtons(reviewSubmission, sub.ID)); err != nil {
		b.log.Warn("failed to notify admins", "error", err)
	}
	return b.complete(ctx, r, "✅ Результат отправлен на проверку. Баллы начислят после одобрения.")
}

func reviewButtons(kind string, id uuid.UUID) *Keyboard {
	return Inline([]Button{
		{Text: "✅ Одобрить", Data: kind + ":approve:" + id.String()},
		{Text: "❌ Отклонить", Data: kind + ":reject:" + id.String()},
	})
}

func (b *Bot) reviewSubmissions(ctx context.Context, r *Request) error {
	subs, err := b.svc.Courses.Pending(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return b.reply(ctx, r, "✅ Нет тестов на проверке.", nil)
	}
	for _, s := range subs {
		caption := fmt.Sprintf("👤 @%s\n%s\n🎯 Баллы: %d\n🕒 %s", s.Username, b.courseTitle(s.TestName), s.PointsClaimed, s.CreatedAt.Format("02.01.2006 15:04"))
		if _, err := b.out.SendPhoto(ctx, r.ChatID, s.PhotoFileID, caption, reviewButtons(reviewSubmission, s.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) approveSubmission(ctx context.Context, r *Request, id uuid.UUID) (string, error) {
	res, err := b.svc.Courses.Approve(ctx, id, r.UserID)
	if err != nil {
		return "", err
	}
	sub := res.Submission
	b.notify(ctx, sub.UserID, fmt.Sprintf("✅ Тест «%s» одобрен! +%d баллов", b.courseTitle(sub.TestName), sub.PointsClaimed), nil)
	if res.Graduated {
		b.notify(ctx, sub.UserID, "🎓 Все тесты пройдены! Нажми «"+LabelGraduate+"», чтобы получить сертификат.",
			Reply(Row(LabelGraduate), Row(LabelMainMenu)))
	}
	if err := b.reply(ctx, r, fmt.Sprintf("✅ Одобрено: @%s, %s", sub.Username, b.courseTitle(sub.TestName)), nil); err != nil {
		return "", err
	}
	return "Одобрено", nil
}

// startRejection opens the comment dialogue for a pending submission or
// vacation request.
func (b *Bot) startRejection(ctx context.Context, r *Request, kind string, id uuid.UUID) (string, error) {
	var status string
	switch kind {
	case reviewSubmission:
		s, err := b.svc.Courses.Get(ctx, id)
		if err != nil {
			return "", err
		}
		status = s.Status
	case reviewVacation:
		v, err := b.svc.Vacations.Get(ctx, id)
		if err != nil {
			return "", err
		}
		status = v.Status
	}
	if status != models.StatusPending {
		return "", store.ErrAlreadyProcessed
	}
	err := b.begin(ctx, r, dlgReview, stepEnterComment, map[string]string{"target": kind, "id": id.String()})
	return "", err
}

func (b *Bot) promptReviewComment(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "💬 Укажи причину отказа:", Reply(Row(LabelBack)))
}

func (b *Bot) handleReviewComment(ctx context.Context, r *Request) error {
	id, err := uuid.Parse(r.Dialogue.Get("id"))
	if err != nil {
		return store.ErrNotFound
	}
	switch r.Dialogue.Get("target") {
	case reviewSubmission:
		sub, err := b.svc.Courses.Reject(ctx, id, r.UserID, r.Text)
		if err != nil {
			return err
		}
		b.notify(ctx, sub.UserID, fmt.Sprintf("❌ Тест «%s» отклонен.\nПричина: %s\nМожешь отправить результат заново.",
			b.courseTitle(sub.TestName), sub.ReviewComment), nil)
	case reviewVacation:
		v, err := b.svc.Vacations.Reject(ctx, id, r.UserID, r.Text)
		if err != nil {
			return err
		}
		b.notify(ctx, v.UserID, fmt.Sprintf("❌ Заявка на отпуск %s – %s отклонена.\nПричина: %s",
			v.StartDate.Format(services.DateLayout), v.EndDate.Format(services.DateLayout), v.ReviewerComment), nil)
	default:
		return store.ErrNotFound
	}
	return b.complete(ctx, r, "✅ Отклонено, пользователь уведомлен.")
}
