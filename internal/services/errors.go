package services

import (
	"errors"

	"github.com/TheX6/partnerkin-super-bot/internal/session"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
)

var (
	ErrNoOpponent     = errors.New("no eligible opponent")
	ErrNotAdmin       = errors.New("admin rights required")
	ErrBadPassword    = errors.New("invalid admin password")
	ErrLoginLocked    = errors.New("too many admin login attempts")
	ErrWrongRole      = errors.New("action not available for this role")
	ErrSessionInvalid = errors.New("admin session invalid or expired")
	ErrNotGraduated   = errors.New("not enough completed tests")
	ErrNoRecipients   = errors.New("no recipients")
)

// ValidationError is bad user input. The bot reprompts the current step with Message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var preconditionMessages = []struct {
	err error
	msg string
}{
	{store.ErrInsufficientFunds, "❌ Недостаточно баллов."},
	{store.ErrInsufficientEnergy, "⚡ Недостаточно энергии. Отдохни и возвращайся!"},
	{store.ErrInsufficientDays, "❌ Недостаточно дней отпуска."},
	{store.ErrGiftCapExceeded, "❌ Превышен дневной лимит подарков."},
	{store.ErrAlreadyProcessed, "⚠️ Заявка уже обработана."},
	{store.ErrAlreadyBooked, "⚠️ Ты уже записан на это мероприятие."},
	{store.ErrCapacityExceeded, "❌ Свободных мест нет."},
	{store.ErrSlotInactive, "❌ Запись на мероприятие закрыта."},
	{store.ErrNotFound, "❌ Не найдено. Возможно, запись уже удалена."},
	{ErrNoOpponent, "😔 Нет подходящих соперников. Попробуй позже."},
	{ErrNotAdmin, "⛔ Доступ только для администраторов."},
	{ErrBadPassword, "❌ Неверный пароль."},
	{ErrLoginLocked, "🔒 Слишком много попыток входа. Попробуй позже."},
	{ErrWrongRole, "🚫 Этот раздел недоступен для твоей роли."},
	{ErrSessionInvalid, "🔒 Сессия администратора истекла. Войди снова через /admin."},
	{ErrNotGraduated, "📚 Сначала пройди все тесты."},
	{ErrNoRecipients, "😔 Нет получателей."},
	{session.ErrNoDialogue, "⚠️ Действие устарело. Начни заново из меню."},
}

// UserMessage maps a validation or precondition error to the text shown to
// the user. ok is false for internal errors, which get a generic reply.
func UserMessage(err error) (msg string, ok bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "❌ " + ve.Message, true
	}
	for _, pm := range preconditionMessages {
		if errors.Is(err, pm.err) {
			return pm.msg, true
		}
	}
	return "", false
}
