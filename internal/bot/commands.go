package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/services"
)

const helpText = `ℹ️ Команды:
/start — начать работу
/menu — главное меню
/app — открыть тапалку
/certificate_test — пример сертификата
/admin — админ-панель
/stats — статистика (для админов)
/reset_stats — сброс статистики (для админов)

Чтобы выйти из любого диалога, напиши «отмена» или «меню».`

func (b *Bot) registerCommands() {
	b.commands["/start"] = route{handle: b.showRoot}
	b.commands["/menu"] = route{handle: b.showRoot}
	b.commands["/cancel"] = route{handle: b.showRoot}
	b.commands["/help"] = route{handle: func(ctx context.Context, r *Request) error {
		return b.reply(ctx, r, helpText, nil)
	}}
	b.commands["/app"] = route{handle: b.openApp}
	b.commands["/certificate_test"] = route{handle: b.sampleCertificate}
	b.commands["/admin"] = route{handle: b.adminEntry}
	b.commands["/stats"] = route{handle: b.showStats, admin: true}
	b.commands["/reset_stats"] = route{handle: b.resetStats, secure: true}
}

func (b *Bot) command(ctx context.Context, r *Request, text string) error {
	name := strings.ToLower(strings.Fields(text)[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	rt, ok := b.commands[name]
	if !ok {
		return b.reply(ctx, r, "🤔 Неизвестная команда. Список команд: /help", nil)
	}
	if r.Dialogue != nil {
		if err := b.dialogues.Clear(ctx, r.UserID); err != nil {
			return err
		}
		r.Dialogue = nil
	}
	return b.run(ctx, r, rt)
}

func (b *Bot) openApp(ctx context.Context, r *Request) error {
	if b.webAppURL == "" {
		return b.reply(ctx, r, "🕹 Тапалка пока недоступна.", nil)
	}
	return b.reply(ctx, r, "🕹 Тапай и зарабатывай баллы!", Inline([]Button{{Text: "Открыть тапалку", URL: b.webAppURL}}))
}

func (b *Bot) sampleCertificate(ctx context.Context, r *Request) error {
	doc, err := b.svc.Courses.Certificate(ctx, r.User, true)
	if err != nil {
		return err
	}
	return b.out.SendDocument(ctx, r.ChatID, doc, "🎓 Пример сертификата")
}

// adminEntry opens the panel for an admin holding a live session and asks
// for the password otherwise.
func (b *Bot) adminEntry(ctx context.Context, r *Request) error {
	ok, err := b.svc.AdminAuth.IsAdmin(ctx, r.UserID)
	if err != nil {
		return err
	}
	if ok && b.svc.AdminAuth.VerifyActive(r.UserID) == nil {
		return b.showMenu(ctx, r, menuAdmin)
	}
	return b.begin(ctx, r, dlgAdminLogin, stepEnterPassword, nil)
}

func (b *Bot) showStats(ctx context.Context, r *Request) error {
	st, err := b.svc.Stats.Snapshot(ctx)
	if err != nil {
		return err
	}
	text := fmt.Sprintf(`📊 Статистика

👥 Пользователей: %d (зарегистрировано %d)
👶 Стажеров: %d
🧠 Сотрудников: %d
💰 Баллов в обороте: %d
📝 Тестов на проверке: %d
🏖 Заявок на отпуск: %d
📅 Активных мероприятий: %d
📋 Открытых задач: %d
🎁 Подарков: %d
⚔️ Битв: %d
🕹 Тапов: %d`,
		st.Users, st.RegisteredUsers, st.Interns, st.Veterans, st.TotalCoins,
		st.PendingSubmissions, st.PendingVacations, st.ActiveSlots, st.OpenTasks,
		st.Gifts, st.Battles, st.TotalClicks)
	return b.reply(ctx, r, text, nil)
}

func (b *Bot) resetStats(ctx context.Context, r *Request) error {
	if err := b.svc.Stats.Reset(ctx); err != nil {
		return err
	}
	return b.reply(ctx, r, "✅ Статистика тапалки сброшена, энергия восстановлена.", nil)
}

// admin login dialogue

func (b *Bot) promptPassword(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "🔐 Введи пароль администратора:", RemoveKeyboard())
}

func (b *Bot) handlePassword(ctx context.Context, r *Request) error {
	if r.MessageID != 0 {
		if err := b.out.DeleteMessage(ctx, r.ChatID, r.MessageID); err != nil {
			b.log.Warn("failed to delete password message", "chat_id", r.ChatID, "error", err)
		}
	}
	sess, err := b.svc.AdminAuth.Login(ctx, r.UserID, r.Username, strings.TrimSpace(r.Text))
	if errors.Is(err, services.ErrBadPassword) {
		return &services.ValidationError{Field: "password", Message: "Неверный пароль"}
	}
	if err != nil {
		return err
	}
	if err := b.finish(ctx, r); err != nil {
		return err
	}
	b.log.Info("admin logged in", "user_id", r.UserID, "expires_at", sess.ExpiresAt)
	if err := b.reply(ctx, r, fmt.Sprintf("✅ Доступ открыт до %s.", sess.ExpiresAt.Format("15:04")), nil); err != nil {
		return err
	}
	return b.showMenu(ctx, r, menuAdmin)
}

func (b *Bot) leaveAdmin(ctx context.Context, r *Request) error {
	if err := b.svc.AdminAuth.Logout(ctx, r.UserID); err != nil {
		return err
	}
	if err := b.reply(ctx, r, "🚪 Ты вышел из админки.", nil); err != nil {
		return err
	}
	return b.showRoot(ctx, r)
}
