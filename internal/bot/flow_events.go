package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"github.com/google/uuid"
)

func slotLine(s models.EventSlot) string {
	line := fmt.Sprintf("%s\n   📆 %s %s", s.EventName, s.Date, s.Time)
	if s.Location != "" {
		line += ", " + s.Location
	}
	return line + fmt.Sprintf("\n   👥 %d/%d, 🎁 %d баллов", s.CurrentParticipants, s.MaxParticipants, s.PointsReward)
}

func (b *Bot) listEvents(ctx context.Context, r *Request) error {
	slots, err := b.svc.Events.Active(ctx)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return b.reply(ctx, r, "📅 Активных мероприятий нет.", nil)
	}
	var sb strings.Builder
	sb.WriteString("📅 Мероприятия:\n\n")
	for i, s := range slots {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, slotLine(s))
	}
	return b.reply(ctx, r, sb.String(), nil)
}

func (b *Bot) myBookings(ctx context.Context, r *Request) error {
	slots, err := b.svc.Events.Bookings(ctx, r.UserID)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return b.reply(ctx, r, "🗓 Ты пока никуда не записан.", nil)
	}
	var sb strings.Builder
	sb.WriteString("🗓 Твои записи:\n\n")
	for _, s := range slots {
		fmt.Fprintf(&sb, "• %s\n", slotLine(s))
	}
	return b.reply(ctx, r, sb.String(), nil)
}

// slotList renders active slots as a numbered list and records their ids.
func (b *Bot) slotList(ctx context.Context, r *Request, header string) error {
	slots, err := b.svc.Events.Active(ctx)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		if err := b.finish(ctx, r); err != nil {
			return err
		}
		return b.reply(ctx, r, "📅 Активных мероприятий нет.", nil)
	}
	var sb strings.Builder
	sb.WriteString(header + "\n\n")
	ids := make([]string, 0, len(slots))
	for i, s := range slots {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, slotLine(s))
		ids = append(ids, s.ID.String())
	}
	sb.WriteString("\nВведи номер:")
	if err := b.offer(ctx, r, ids); err != nil {
		return err
	}
	return b.reply(ctx, r, sb.String(), Reply(Row(LabelBack)))
}

func chooseSlot(r *Request) (uuid.UUID, error) {
	raw, err := choose(r, "slot")
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, store.ErrNotFound
	}
	return id, nil
}

// booking

func (b *Bot) startBooking(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgBooking, stepSelectSlot, nil)
}

func (b *Bot) promptBookingSlot(ctx context.Context, r *Request) error {
	return b.slotList(ctx, r, "✍️ На какое мероприятие записаться?")
}

func (b *Bot) handleBookingSlot(ctx context.Context, r *Request) error {
	id, err := chooseSlot(r)
	if err != nil {
		return err
	}
	slot, err := b.svc.Events.Book(ctx, r.UserID, id)
	if err != nil {
		return err
	}
	return b.complete(ctx, r, fmt.Sprintf("✅ Ты записан!\n%s", slotLine(*slot)))
}

// admin: create

func (b *Bot) startEventCreate(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgEventCreate, stepCategory, nil)
}

func (b *Bot) promptEventCategory(ctx context.Context, r *Request) error {
	rows := make([][]string, 0, len(services.EventCategories)+1)
	for _, c := range services.EventCategories {
		rows = append(rows, Row(c))
	}
	return b.reply(ctx, r, "🗂 Выбери категорию мероприятия:", Reply(append(rows, Row(LabelBack))...))
}

func (b *Bot) handleEventCategory(ctx context.Context, r *Request) error {
	c, err := b.svc.Events.ValidateCategory(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("category", c)
	return b.next(ctx, r, stepName)
}

func (b *Bot) promptEventName(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "✏️ Название мероприятия (или пропусти, чтобы использовать категорию):", Reply(Row(LabelSkip), Row(LabelBack)))
}

func (b *Bot) handleEventName(ctx context.Context, r *Request) error {
	name, skipped := input(r)
	if skipped {
		name = r.Dialogue.Get("category")
	}
	if name == "" {
		return &services.ValidationError{Field: "name", Message: "Название не может быть пустым"}
	}
	r.Dialogue.Set("name", name)
	return b.next(ctx, r, stepDate)
}

func (b *Bot) promptEventDate(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "📆 Дата (ДД.ММ.ГГГГ):", Reply(Row(LabelBack)))
}

func (b *Bot) handleEventDate(ctx context.Context, r *Request) error {
	if _, err := services.ParseDate("date", r.Text); err != nil {
		return err
	}
	r.Dialogue.Set("date", strings.TrimSpace(r.Text))
	return b.next(ctx, r, stepTime)
}

func (b *Bot) promptEventTime(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "🕒 Время (ЧЧ:ММ):", Reply(Row(LabelBack)))
}

func (b *Bot) handleEventTime(ctx context.Context, r *Request) error {
	t, err := services.ParseClock("time", r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("time", t)
	return b.next(ctx, r, stepLocation)
}

func (b *Bot) promptEventLocation(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "📍 Место проведения:", Reply(Row(LabelSkip), Row(LabelBack)))
}

func (b *Bot) handleEventLocation(ctx context.Context, r *Request) error {
	loc, skipped := input(r)
	if skipped {
		loc = ""
	}
	r.Dialogue.Set("location", loc)
	return b.next(ctx, r, stepMaxSeats)
}

func (b *Bot) promptEventSeats(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "👥 Максимум участников (1–100):", Reply(Row(LabelBack)))
}

func (b *Bot) handleEventSeats(ctx context.Context, r *Request) error {
	n, err := services.ParseInt("max_participants", r.Text, 1, 100)
	if err != nil {
		return err
	}
	r.Dialogue.Set("max", strconv.FormatInt(n, 10))
	return b.next(ctx, r, stepReward)
}

func (b *Bot) promptEventReward(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "🎁 Награда в баллах (1–100):", Reply(Row(LabelBack)))
}

func (b *Bot) handleEventReward(ctx context.Context, r *Request) error {
	reward, err := services.ParseInt("points_reward", r.Text, 1, 100)
	if err != nil {
		return err
	}
	d := r.Dialogue
	seats, _ := strconv.Atoi(d.Get("max"))
	slot, err := b.svc.Events.Create(ctx, services.SlotDraft{
		Category:        d.Get("category"),
		EventName:       d.Get("name"),
		Date:            d.Get("date"),
		Time:            d.Get("time"),
		Location:        d.Get("location"),
		MaxParticipants: seats,
		PointsReward:    reward,
	})
	if err != nil {
		return err
	}
	return b.complete(ctx, r, "✅ Мероприятие создано:\n"+slotLine(*slot))
}

// admin: edit and delete

func (b *Bot) startEventEdit(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgEventEdit, stepSelectSlot, nil)
}

func (b *Bot) startEventDelete(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgEventDelete, stepSelectSlot, nil)
}

func (b *Bot) promptAdminSlot(ctx context.Context, r *Request) error {
	return b.slotList(ctx, r, "📅 Выбери мероприятие:")
}

func (b *Bot) handleAdminSlot(nextStep string) handlerFunc {
	return func(ctx context.Context, r *Request) error {
		id, err := chooseSlot(r)
		if err != nil {
			return err
		}
		slot, err := b.svc.Events.Get(ctx, id)
		if err != nil {
			return &services.ValidationError{Field: "slot", Message: "Мероприятие больше не доступно"}
		}
		r.Dialogue.Set("slot", slot.ID.String())
		r.Dialogue.Set("slot_name", slot.EventName)
		return b.next(ctx, r, nextStep)
	}
}

func (b *Bot) promptEditField(ctx context.Context, r *Request) error {
	rows := make([][]string, 0, len(services.EditableFields)+1)
	for _, f := range services.EditableFields {
		rows = append(rows, Row(f.Label))
	}
	return b.reply(ctx, r, "Что изменить в «"+r.Dialogue.Get("slot_name")+"»?", Reply(append(rows, Row(LabelBack))...))
}

func (b *Bot) handleEditField(ctx context.Context, r *Request) error {
	field, err := b.svc.Events.FieldByLabel(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("field", field)
	r.Dialogue.Set("field_label", strings.TrimSpace(r.Text))
	return b.next(ctx, r, stepEnterValue)
}

func (b *Bot) promptEditValue(ctx context.Context, r *Request) error {
	hint := ""
	switch r.Dialogue.Get("field") {
	case "date":
		hint = " (ДД.ММ.ГГГГ)"
	case "time":
		hint = " (ЧЧ:ММ)"
	case "status":
		hint = " (active или inactive)"
	}
	return b.reply(ctx, r, "Новое значение для «"+r.Dialogue.Get("field_label")+"»"+hint+":", Reply(Row(LabelBack)))
}

func (b *Bot) handleEditValue(ctx context.Context, r *Request) error {
	id, err := uuid.Parse(r.Dialogue.Get("slot"))
	if err != nil {
		return store.ErrNotFound
	}
	if err := b.svc.Events.Update(ctx, id, r.Dialogue.Get("field"), r.Text); err != nil {
		return err
	}
	slot, err := b.svc.Events.Get(ctx, id)
	if err != nil {
		return err
	}
	return b.complete(ctx, r, "✅ Мероприятие обновлено:\n"+slotLine(*slot))
}

func (b *Bot) promptDeleteConfirm(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "🗑 Удалить «"+r.Dialogue.Get("slot_name")+"» вместе со всеми записями?", yesNo())
}

func (b *Bot) handleDeleteConfirm(ctx context.Context, r *Request) error {
	switch strings.TrimSpace(r.Text) {
	case LabelYes:
		id, err := uuid.Parse(r.Dialogue.Get("slot"))
		if err != nil {
			return store.ErrNotFound
		}
		if err := b.svc.Events.Delete(ctx, id); err != nil {
			return err
		}
		return b.complete(ctx, r, "✅ Мероприятие удалено.")
	case LabelNo:
		return b.complete(ctx, r, "Удаление отменено.")
	default:
		return &services.ValidationError{Field: "confirm", Message: "Ответь кнопкой «Да» или «Нет»"}
	}
}
