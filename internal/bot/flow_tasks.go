package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"github.com/google/uuid"
)

var priorityTitles = map[string]string{}

func init() {
	for _, p := range services.TaskPriorities {
		priorityTitles[p.Value] = p.Label
	}
}

var taskStatusTitles = map[string]string{
	models.TaskPending:   "⏳ В работе",
	models.TaskCompleted: "✅ Выполнена",
	models.TaskPostponed: "⏸ Отложена",
	models.TaskCancelled: "❌ Отменена",
}

func taskCard(t models.Task) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 %s\n%s · %s", t.Title, priorityTitles[t.Priority], taskStatusTitles[t.Status])
	if t.Description != "" {
		sb.WriteString("\n" + t.Description)
	}
	if t.RewardCoins > 0 {
		fmt.Fprintf(&sb, "\n🎁 Награда: %d баллов", t.RewardCoins)
	}
	if t.DueDate != nil {
		sb.WriteString("\n📆 Срок: " + t.DueDate.Format(services.DateLayout))
	}
	return sb.String()
}

func taskButtons(id uuid.UUID) *Keyboard {
	s := id.String()
	return Inline(
		[]Button{{Text: "✅ Выполнено", Data: "task:done:" + s}, {Text: "⏸ Отложить", Data: "task:postpone:" + s}},
		[]Button{{Text: "❌ Отменить", Data: "task:cancel:" + s}},
	)
}

func (b *Bot) myTasks(ctx context.Context, r *Request) error {
	tasks, err := b.svc.Tasks.Assigned(ctx, r.UserID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return b.reply(ctx, r, "📋 У тебя нет задач.", nil)
	}
	for _, t := range tasks {
		var kb *Keyboard
		if t.Status == models.TaskPending {
			kb = taskButtons(t.ID)
		}
		if err := b.reply(ctx, r, taskCard(t), kb); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) issuedTasks(ctx context.Context, r *Request) error {
	tasks, err := b.svc.Tasks.Created(ctx, r.UserID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return b.reply(ctx, r, "📤 Ты еще не выдавал задач.", nil)
	}
	for _, t := range tasks {
		text := taskCard(t)
		if u, err := b.svc.Users.Get(ctx, t.AssigneeID); err == nil {
			text += "\n👤 Исполнитель: " + u.DisplayName()
		}
		var kb *Keyboard
		if t.Status == models.TaskPending {
			kb = Inline([]Button{{Text: "❌ Отменить", Data: "task:cancel:" + t.ID.String()}})
		}
		if err := b.reply(ctx, r, text, kb); err != nil {
			return err
		}
	}
	return nil
}

// create

func (b *Bot) startTaskCreate(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgTaskCreate, stepSelectAssignee, nil)
}

func (b *Bot) promptTaskAssignee(ctx context.Context, r *Request) error {
	users, err := b.svc.Users.Others(ctx, r.UserID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return services.ErrNoRecipients
	}
	return b.userList(ctx, r, "👤 Кому поставить задачу?", users)
}

func (b *Bot) handleTaskAssignee(ctx context.Context, r *Request) error {
	u, err := b.pickUser(ctx, r, "assignee")
	if err != nil {
		return err
	}
	r.Dialogue.Set("assignee", strconv.FormatInt(u.TelegramID, 10))
	r.Dialogue.Set("assignee_name", u.DisplayName())
	return b.next(ctx, r, stepEnterTitle)
}

func (b *Bot) promptTaskTitle(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "✏️ Название задачи:", Reply(Row(LabelBack)))
}

func (b *Bot) handleTaskTitle(ctx context.Context, r *Request) error {
	title, err := b.svc.Tasks.ValidateTitle(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("title", title)
	return b.next(ctx, r, stepEnterDesc)
}

func (b *Bot) promptTaskDescription(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "📝 Описание задачи:", Reply(Row(LabelSkip), Row(LabelBack)))
}

func (b *Bot) handleTaskDescription(ctx context.Context, r *Request) error {
	desc, skipped := input(r)
	if skipped {
		desc = ""
	}
	r.Dialogue.Set("description", desc)
	return b.next(ctx, r, stepSelectPriority)
}

func (b *Bot) promptTaskPriority(ctx context.Context, r *Request) error {
	labels := make([]string, 0, len(services.TaskPriorities))
	for _, p := range services.TaskPriorities {
		labels = append(labels, p.Label)
	}
	return b.reply(ctx, r, "⚡ Приоритет:", Reply(Row(labels...), Row(LabelBack)))
}

func (b *Bot) handleTaskPriority(ctx context.Context, r *Request) error {
	p, err := b.svc.Tasks.ParsePriority(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("priority", p)
	return b.next(ctx, r, stepSelectReward)
}

func (b *Bot) promptTaskReward(ctx context.Context, r *Request) error {
	labels := make([]string, 0, len(services.TaskRewards))
	for _, v := range services.TaskRewards {
		labels = append(labels, strconv.FormatInt(v, 10))
	}
	return b.reply(ctx, r, "🎁 Награда в баллах:", Reply(Row(labels...), Row(LabelBack)))
}

func (b *Bot) handleTaskReward(ctx context.Context, r *Request) error {
	reward, err := b.svc.Tasks.ParseReward(r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("reward", strconv.FormatInt(reward, 10))
	return b.next(ctx, r, stepEnterDueDate)
}

func (b *Bot) promptTaskDueDate(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "📆 Срок выполнения (ДД.ММ.ГГГГ):", Reply(Row(LabelSkip), Row(LabelBack)))
}

func (b *Bot) handleTaskDueDate(ctx context.Context, r *Request) error {
	raw, skipped := input(r)
	var due *time.Time
	if !skipped {
		t, err := b.svc.Tasks.ParseDueDate(raw)
		if err != nil {
			return err
		}
		due = &t
	}
	d := r.Dialogue
	assignee, _ := strconv.ParseInt(d.Get("assignee"), 10, 64)
	reward, _ := strconv.ParseInt(d.Get("reward"), 10, 64)
	task, err := b.svc.Tasks.Create(ctx, services.TaskDraft{
		CreatorID:   r.UserID,
		AssigneeID:  assignee,
		Title:       d.Get("title"),
		Description: d.Get("description"),
		Priority:    d.Get("priority"),
		Reward:      reward,
		DueDate:     due,
	})
	if err != nil {
		return err
	}
	b.notify(ctx, assignee, fmt.Sprintf("📥 Новая задача от %s\n\n%s", r.User.DisplayName(), taskCard(*task)), taskButtons(task.ID))
	return b.complete(ctx, r, fmt.Sprintf("✅ Задача «%s» поставлена: %s", task.Title, d.Get("assignee_name")))
}

// complete from the menu

func (b *Bot) startTaskComplete(ctx context.Context, r *Request) error {
	return b.begin(ctx, r, dlgTaskComplete, stepSelectTask, nil)
}

func (b *Bot) promptTaskSelect(ctx context.Context, r *Request) error {
	tasks, err := b.svc.Tasks.Pending(ctx, r.UserID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		if err := b.finish(ctx, r); err != nil {
			return err
		}
		return b.reply(ctx, r, "📋 Нет задач в работе.", nil)
	}
	var sb strings.Builder
	sb.WriteString("✅ Какую задачу ты выполнил?\n\n")
	ids := make([]string, 0, len(tasks))
	for i, t := range tasks {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t.Title)
		ids = append(ids, t.ID.String())
	}
	sb.WriteString("\nВведи номер:")
	if err := b.offer(ctx, r, ids); err != nil {
		return err
	}
	return b.reply(ctx, r, sb.String(), Reply(Row(LabelBack)))
}

func (b *Bot) handleTaskSelect(ctx context.Context, r *Request) error {
	raw, err := choose(r, "task")
	if err != nil {
		return err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return store.ErrNotFound
	}
	task, err := b.completeTask(ctx, r, id)
	if err != nil {
		return err
	}
	return b.complete(ctx, r, completedText(task))
}

func completedText(t *models.Task) string {
	text := fmt.Sprintf("✅ Задача «%s» выполнена!", t.Title)
	if t.RewardCoins > 0 {
		text += fmt.Sprintf(" +%d баллов", t.RewardCoins)
	}
	return text
}

func (b *Bot) completeTask(ctx context.Context, r *Request, id uuid.UUID) (*models.Task, error) {
	task, err := b.svc.Tasks.Complete(ctx, id, r.UserID)
	if err != nil {
		return nil, err
	}
	b.notify(ctx, task.CreatorID, fmt.Sprintf("✅ %s выполнил задачу «%s»", r.User.DisplayName(), task.Title), nil)
	return task, nil
}

// inline task actions

func (b *Bot) taskDone(ctx context.Context, r *Request, id uuid.UUID) (string, error) {
	task, err := b.completeTask(ctx, r, id)
	if err != nil {
		return "", err
	}
	if err := b.out.EditMessage(ctx, r.ChatID, r.MessageID, taskCard(*task), nil); err != nil {
		b.log.Warn("failed to edit task card", "chat_id", r.ChatID, "error", err)
	}
	if err := b.reply(ctx, r, completedText(task), nil); err != nil {
		return "", err
	}
	return "Готово!", nil
}

func (b *Bot) taskPostpone(ctx context.Context, r *Request, id uuid.UUID) (string, error) {
	task, err := b.svc.Tasks.Postpone(ctx, id, r.UserID)
	if err != nil {
		return "", err
	}
	if err := b.out.EditMessage(ctx, r.ChatID, r.MessageID, taskCard(*task), nil); err != nil {
		b.log.Warn("failed to edit task card", "chat_id", r.ChatID, "error", err)
	}
	b.notify(ctx, task.CreatorID, fmt.Sprintf("⏸ %s отложил задачу «%s» до %s", r.User.DisplayName(), task.Title,
		task.PostponedUntil.Format(services.DateLayout)), nil)
	return "Отложено", nil
}

// startTaskCancel asks for a reason before cancelling.
func (b *Bot) startTaskCancel(ctx context.Context, r *Request, id uuid.UUID) (string, error) {
	task, err := b.svc.Tasks.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if task.AssigneeID != r.UserID && task.CreatorID != r.UserID {
		return "", store.ErrNotFound
	}
	if task.Status != models.TaskPending {
		return "", store.ErrAlreadyProcessed
	}
	return "", b.begin(ctx, r, dlgTaskCancel, stepEnterReason, map[string]string{"task": id.String(), "title": task.Title})
}

func (b *Bot) promptCancelReason(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "💬 Почему отменяешь задачу «"+r.Dialogue.Get("title")+"»?", Reply(Row(LabelBack)))
}

func (b *Bot) handleCancelReason(ctx context.Context, r *Request) error {
	id, err := uuid.Parse(r.Dialogue.Get("task"))
	if err != nil {
		return store.ErrNotFound
	}
	task, err := b.svc.Tasks.Cancel(ctx, id, r.UserID, r.Text)
	if err != nil {
		return err
	}
	other := task.CreatorID
	if other == r.UserID {
		other = task.AssigneeID
	}
	b.notify(ctx, other, fmt.Sprintf("❌ %s отменил задачу «%s»\nПричина: %s", r.User.DisplayName(), task.Title, task.CancelledReason), nil)
	return b.complete(ctx, r, "✅ Задача отменена.")
}
