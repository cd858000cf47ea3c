package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/google/uuid"
)

var reviewStatusTitles = map[string]string{
	models.StatusPending:  "⏳ На рассмотрении",
	models.StatusApproved: "✅ Одобрено",
	models.StatusRejected: "❌ Отклонено",
}

func balanceText(bal *models.VacationBalance) string {
	return fmt.Sprintf("🏖 Отпуск %d\nВсего: %d дн.\nИспользовано: %d\nНа рассмотрении: %d\nОсталось: %d",
		bal.Year, bal.TotalDays, bal.UsedDays, bal.PendingDays, bal.RemainingDays)
}

func vacationLine(v models.VacationRequest) string {
	return fmt.Sprintf("%s – %s (%d дн., %s)", v.StartDate.Format(services.DateLayout), v.EndDate.Format(services.DateLayout), v.DaysCount, v.VacationType)
}

func (b *Bot) vacationBalance(ctx context.Context, r *Request) error {
	bal, err := b.svc.Vacations.Balance(ctx, r.UserID)
	if err != nil {
		return err
	}
	return b.reply(ctx, r, balanceText(bal), nil)
}

func (b *Bot) myVacations(ctx context.Context, r *Request) error {
	reqs, err := b.svc.Vacations.Mine(ctx, r.UserID)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return b.reply(ctx, r, "📋 Заявок на отпуск нет.", nil)
	}
	var sb strings.Builder
	sb.WriteString("📋 Мои заявки:\n\n")
	for _, v := range reqs {
		fmt.Fprintf(&sb, "• %s\n  %s", vacationLine(v), reviewStatusTitles[v.Status])
		if v.ReviewerComment != "" {
			fmt.Fprintf(&sb, ": %s", v.ReviewerComment)
		}
		sb.WriteString("\n")
	}
	return b.reply(ctx, r, sb.String(), nil)
}

func (b *Bot) startVacation(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgVacation, stepStartDate, nil)
}

func (b *Bot) promptVacationStart(ctx context.Context, r *Request) error {
	bal, err := b.svc.Vacations.Balance(ctx, r.UserID)
	if err != nil {
		return err
	}
	return b.reply(ctx, r, fmt.Sprintf("🏖 Доступно дней: %d\nДата начала отпуска (ДД.ММ.ГГГГ):", bal.RemainingDays), Reply(Row(LabelBack)))
}

func (b *Bot) handleVacationStart(ctx context.Context, r *Request) error {
	start, err := b.svc.Vacations.ParseStart(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("start", start.Format(services.DateLayout))
	return b.next(ctx, r, stepEndDate)
}

func (b *Bot) promptVacationEnd(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "Дата окончания отпуска (ДД.ММ.ГГГГ):", Reply(Row(LabelBack)))
}

func (b *Bot) handleVacationEnd(ctx context.Context, r *Request) error {
	start, err := time.Parse(services.DateLayout, r.Dialogue.Get("start"))
	if err != nil {
		return err
	}
	end, err := b.svc.Vacations.ParseEnd(start, r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("end", end.Format(services.DateLayout))
	return b.next(ctx, r, stepType)
}

func (b *Bot) promptVacationType(ctx context.Context, r *Request) error {
	rows := make([][]string, 0, len(services.VacationTypes)+1)
	for _, t := range services.VacationTypes {
		rows = append(rows, Row(t))
	}
	return b.reply(ctx, r, "Тип отпуска:", Reply(append(rows, Row(LabelBack))...))
}

func (b *Bot) handleVacationType(ctx context.Context, r *Request) error {
	t, err := b.svc.Vacations.ParseType(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("type", t)
	return b.next(ctx, r, stepReason)
}

func (b *Bot) promptVacationReason(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "💬 Комментарий к заявке:", Reply(Row(LabelSkip), Row(LabelBack)))
}

func (b *Bot) handleVacationReason(ctx context.Context, r *Request) error {
	reason, skipped := input(r)
	if skipped {
		reason = ""
	}
	d := r.Dialogue
	start, err := time.Parse(services.DateLayout, d.Get("start"))
	if err != nil {
		return err
	}
	end, err := time.Parse(services.DateLayout, d.Get("end"))
	if err != nil {
		return err
	}
	req, bal, err := b.svc.Vacations.Request(ctx, services.VacationDraft{
		UserID: r.UserID,
		Start:  start,
		End:    end,
		Type:   d.Get("type"),
		Reason: reason,
	})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("🏖 Заявка на отпуск\n👤 %s\n%s", r.User.DisplayName(), vacationLine(*req))
	if req.Reason != "" {
		text += "\n💬 " + req.Reason
	}
	if err := b.notifyAdmins(ctx, r.UserID, "", text, reviewButtons(reviewVacation, req.ID)); err != nil {
		b.log.Warn("failed to notify admins", "error", err)
	}
	return b.complete(ctx, r, "✅ Заявка отправлена на рассмотрение.\n\n"+balanceText(bal))
}

func (b *Bot) reviewVacations(ctx context.Context, r *Request) error {
	reqs, err := b.svc.Vacations.Pending(ctx)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return b.reply(ctx, r, "✅ Нет заявок на рассмотрении.", nil)
	}
	for _, v := range reqs {
		name := fmt.Sprintf("id%d", v.UserID)
		if u, err := b.svc.Users.Get(ctx, v.UserID); err == nil {
			name = u.DisplayName()
		}
		text := fmt.Sprintf("🏖 %s\n%s", name, vacationLine(v))
		if v.Reason != "" {
			text += "\n💬 " + v.Reason
		}
		if err := b.reply(ctx, r, text, reviewButtons(reviewVacation, v.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) approveVacation(ctx context.Context, r *Request, id uuid.UUID) (string, error) {
	v, err := b.svc.Vacations.Approve(ctx, id, r.UserID)
	if err != nil {
		return "", err
	}
	b.notify(ctx, v.UserID, "✅ Заявка на отпуск одобрена: "+vacationLine(*v), nil)
	if err := b.reply(ctx, r, "✅ Отпуск одобрен: "+vacationLine(*v), nil); err != nil {
		return "", err
	}
	return "Одобрено", nil
}
