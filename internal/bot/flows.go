package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
)

const keyChoices = "choices"

func (b *Bot) registerFlows() {
	b.flows[dlgRegistration] = flow{
		stepProfileText: {prompt: b.promptProfile, handle: b.handleProfile, freeText: true},
	}
	b.flows[dlgAdminLogin] = flow{
		stepEnterPassword: {prompt: b.promptPassword, handle: b.handlePassword},
	}
	b.flows[dlgGift] = flow{
		stepSelectRecip:  {prompt: b.promptGiftRecipient, handle: b.handleGiftRecipient},
		stepEnterAmount:  {prompt: b.promptGiftAmount, handle: b.handleGiftAmount},
		stepEnterMessage: {prompt: b.promptGiftMessage, handle: b.handleGiftMessage, freeText: true},
	}
	b.flows[dlgBalance] = flow{
		stepSelectUser:  {prompt: b.promptBalanceUser, handle: b.handleBalanceUser},
		stepEnterAmount: {prompt: b.promptBalanceAmount, handle: b.handleBalanceAmount},
	}
	b.flows[dlgSubmission] = flow{
		stepEnterScore:  {prompt: b.promptScore, handle: b.handleScore},
		stepUploadPhoto: {prompt: b.promptScreenshot, handle: b.handleScreenshot, photo: true},
	}
	b.flows[dlgReview] = flow{
		stepEnterComment: {prompt: b.promptReviewComment, handle: b.handleReviewComment, freeText: true},
	}
	b.flows[dlgBooking] = flow{
		stepSelectSlot: {prompt: b.promptBookingSlot, handle: b.handleBookingSlot},
	}
	b.flows[dlgEventCreate] = flow{
		stepCategory: {prompt: b.promptEventCategory, handle: b.handleEventCategory},
		stepName:     {prompt: b.promptEventName, handle: b.handleEventName, freeText: true},
		stepDate:     {prompt: b.promptEventDate, handle: b.handleEventDate},
		stepTime:     {prompt: b.promptEventTime, handle: b.handleEventTime},
		stepLocation: {prompt: b.promptEventLocation, handle: b.handleEventLocation, freeText: true},
		stepMaxSeats: {prompt: b.promptEventSeats, handle: b.handleEventSeats},
		stepReward:   {prompt: b.promptEventReward, handle: b.handleEventReward},
	}
	b.flows[dlgEventEdit] = flow{
		stepSelectSlot:  {prompt: b.promptAdminSlot, handle: b.handleAdminSlot(stepSelectField)},
		stepSelectField: {prompt: b.promptEditField, handle: b.handleEditField},
		stepEnterValue:  {prompt: b.promptEditValue, handle: b.handleEditValue, freeText: true},
	}
	b.flows[dlgEventDelete] = flow{
		stepSelectSlot: {prompt: b.promptAdminSlot, handle: b.handleAdminSlot(stepConfirm)},
		stepConfirm:    {prompt: b.promptDeleteConfirm, handle: b.handleDeleteConfirm},
	}
	b.flows[dlgTaskCreate] = flow{
		stepSelectAssignee: {prompt: b.promptTaskAssignee, handle: b.handleTaskAssignee},
		stepEnterTitle:     {prompt: b.promptTaskTitle, handle: b.handleTaskTitle, freeText: true},
		stepEnterDesc:      {prompt: b.promptTaskDescription, handle: b.handleTaskDescription, freeText: true},
		stepSelectPriority: {prompt: b.promptTaskPriority, handle: b.handleTaskPriority},
		stepSelectReward:   {prompt: b.promptTaskReward, handle: b.handleTaskReward},
		stepEnterDueDate:   {prompt: b.promptTaskDueDate, handle: b.handleTaskDueDate},
	}
	b.flows[dlgTaskComplete] = flow{
		stepSelectTask: {prompt: b.promptTaskSelect, handle: b.handleTaskSelect},
	}
	b.flows[dlgTaskCancel] = flow{
		stepEnterReason: {prompt: b.promptCancelReason, handle: b.handleCancelReason, freeText: true},
	}
	b.flows[dlgVacation] = flow{
		stepStartDate: {prompt: b.promptVacationStart, handle: b.handleVacationStart},
		stepEndDate:   {prompt: b.promptVacationEnd, handle: b.handleVacationEnd},
		stepType:      {prompt: b.promptVacationType, handle: b.handleVacationType},
		stepReason:    {prompt: b.promptVacationReason, handle: b.handleVacationReason, freeText: true},
	}
	b.flows[dlgBroadcast] = flow{
		stepSelectTarget: {prompt: b.promptBroadcastTarget, handle: b.handleBroadcastTarget},
		stepSelectUser:   {prompt: b.promptBroadcastUser, handle: b.handleBroadcastUser},
		stepEnterText:    {prompt: b.promptBroadcastText, handle: b.handleBroadcastText, freeText: true},
		stepCollectMedia: {prompt: b.promptBroadcastMedia, handle: b.handleBroadcastMedia, photo: true},
	}
	b.flows[dlgInvoice] = flow{
		stepOrgName:    {prompt: b.askText("🏢 Название организации:", false), handle: b.handleInvoiceText(stepOrgName, stepOrgAddress), freeText: true},
		stepOrgAddress: {prompt: b.askText("📍 Адрес организации:", true), handle: b.handleInvoiceText(stepOrgAddress, stepWorkType), freeText: true},
		stepWorkType:   {prompt: b.askText("🛠 Вид работ:", true), handle: b.handleInvoiceText(stepWorkType, stepQuantity), freeText: true},
		stepQuantity:   {prompt: b.askText("🔢 Количество:", false), handle: b.handleInvoiceQuantity},
		stepUnitAmount: {prompt: b.askText("💵 Сумма за единицу (₽):", false), handle: b.handleInvoiceAmount},
		stepConfirm:    {prompt: b.promptInvoiceConfirm, handle: b.handleInvoiceConfirm},
	}
	b.flows[dlgContactCreate] = flow{
		stepCompany:     {prompt: b.askText("🏢 Название компании:", false), handle: b.handleContactField(stepCompany, stepContactName), freeText: true},
		stepContactName: {prompt: b.askText("👤 Имя контакта:", true), handle: b.handleContactField(stepContactName, stepPosition), freeText: true},
		stepPosition:    {prompt: b.askText("💼 Должность:", true), handle: b.handleContactField(stepPosition, stepEmail), freeText: true},
		stepEmail:       {prompt: b.askText("📧 E-mail:", true), handle: b.handleContactEmail},
		stepPhone:       {prompt: b.askText("📞 Телефон:", true), handle: b.handleContactField(stepPhone, stepTelegram), freeText: true},
		stepTelegram:    {prompt: b.askText("✈️ Telegram:", true), handle: b.handleContactField(stepTelegram, stepNotes), freeText: true},
		stepNotes:       {prompt: b.askText("📝 Заметки:", true), handle: b.handleContactNotes, freeText: true},
	}
	b.flows[dlgContactSearch] = flow{
		stepEnterQuery: {prompt: b.askText("🔍 Введи название компании (или его часть):", false), handle: b.handleContactQuery},
	}
	b.flows[dlgAchievement] = flow{
		stepEnterTitle:  {prompt: b.askText("🏆 Как называется достижение?", false), handle: b.handleAchievementTitle, freeText: true},
		stepEnterDesc:   {prompt: b.askText("📝 Опиши достижение:", true), handle: b.handleAchievementDescription, freeText: true},
		stepUploadPhoto: {prompt: b.promptAchievementPhoto, handle: b.handleAchievementPhoto, photo: true},
	}
	b.flows[dlgAchievementComment] = flow{
		stepEnterComment: {prompt: b.askText("💬 Напиши комментарий:", false), handle: b.handleAchievementComment, freeText: true},
	}
	b.flows[dlgStatusMessage] = flow{
		stepEnterText: {prompt: b.askText("✏️ Напиши сообщение статуса (до 100 символов):", false), handle: b.handleStatusMessage, freeText: true},
	}
}

// askText builds a prompt with an optional skip button.
func (b *Bot) askText(text string, skippable bool) handlerFunc {
	return func(ctx context.Context, r *Request) error {
		if skippable {
			return b.reply(ctx, r, text, Reply(Row(LabelSkip), Row(LabelBack)))
		}
		return b.reply(ctx, r, text, Reply(Row(LabelBack)))
	}
}

// input returns the trimmed text and whether the user skipped the step.
func input(r *Request) (string, bool) {
	text := strings.TrimSpace(r.Text)
	return text, text == LabelSkip
}

// complete ends the dialogue and answers with the main menu keyboard.
func (b *Bot) complete(ctx context.Context, r *Request, text string) error {
	if err := b.finish(ctx, r); err != nil {
		return err
	}
	b.nav.Reset(r.ChatID)
	return b.reply(ctx, r, text, b.rootKeyboard(ctx, r))
}

// offer stores the ids behind a numbered list so the answer is re-validated
// by id rather than by position in a list that may have changed.
func (b *Bot) offer(ctx context.Context, r *Request, ids []string) error {
	r.Dialogue.Set(keyChoices, strings.Join(ids, ","))
	return b.save(ctx, r)
}

func choose(r *Request, field string) (string, error) {
	raw := r.Dialogue.Get(keyChoices)
	if raw == "" {
		return "", &services.ValidationError{Field: field, Message: "Список пуст"}
	}
	ids := strings.Split(raw, ",")
	idx, err := services.ParseIndex(field, r.Text, len(ids))
	if err != nil {
		return "", err
	}
	return ids[idx], nil
}

// userList renders users as a numbered list and records their ids.
func (b *Bot) userList(ctx context.Context, r *Request, header string, users []models.User) error {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	ids := make([]string, 0, len(users))
	for i, u := range users {
		fmt.Fprintf(&sb, "%d. %s", i+1, u.DisplayName())
		if u.Username != "" && u.FullName != "" {
			fmt.Fprintf(&sb, " (@%s)", u.Username)
		}
		sb.WriteString("\n")
		ids = append(ids, strconv.FormatInt(u.TelegramID, 10))
	}
	sb.WriteString("\nВведи номер или @username:")
	if err := b.offer(ctx, r, ids); err != nil {
		return err
	}
	return b.reply(ctx, r, sb.String(), Reply(Row(LabelBack)))
}

// pickUser resolves a numbered answer or @username to a fresh user record.
func (b *Bot) pickUser(ctx context.Context, r *Request, field string) (*models.User, error) {
	text := strings.TrimSpace(r.Text)
	if strings.HasPrefix(text, "@") {
		return b.svc.Users.Resolve(ctx, field, text, nil, r.UserID)
	}
	raw := r.Dialogue.Get(keyChoices)
	var list []models.User
	if raw != "" {
		for _, s := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				continue
			}
			list = append(list, models.User{TelegramID: id})
		}
	}
	return b.svc.Users.Resolve(ctx, field, text, list, r.UserID)
}

func yesNo() *Keyboard {
	return Reply(Row(LabelYes, LabelNo), Row(LabelBack))
}
