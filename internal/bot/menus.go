package bot

import (
	"context"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
)

type menu struct {
	title string
	rows  func(b *Bot, ctx context.Context, r *Request) [][]string
}

var menus = map[string]menu{
	menuCourses: {title: "📚 Выбери тест, который ты прошел:", rows: func(b *Bot, _ context.Context, _ *Request) [][]string {
		var rows [][]string
		for _, c := range b.svc.Courses.Courses() {
			rows = append(rows, Row(c.Title))
		}
		return append(rows, Row(LabelBack))
	}},
	menuFun: {title: "🎮 Развлечения", rows: staticRows(
		Row(LabelPVP, LabelShop),
		Row(LabelGift, LabelTapper),
		Row(LabelBack),
	)},
	menuEvents: {title: "📅 Мероприятия", rows: staticRows(
		Row(LabelAllEvents),
		Row(LabelBook, LabelMyBookings),
		Row(LabelBack),
	)},
	menuTasks: {title: "📋 Задачи", rows: staticRows(
		Row(LabelNewTask, LabelCompleteTask),
		Row(LabelMyTasks, LabelIssuedTasks),
		Row(LabelBack),
	)},
	menuVacation: {title: "🏖 Отпуск", rows: staticRows(
		Row(LabelVacationRequest),
		Row(LabelVacationBalance, LabelMyVacations),
		Row(LabelBack),
	)},
	menuAchievements: {title: "🏆 Достижения", rows: staticRows(
		Row(LabelNewAchievement, LabelFeed),
		Row(LabelBack),
	)},
	menuContacts: {title: "📇 Контакты", rows: staticRows(
		Row(LabelFindContact, LabelAllContacts),
		Row(LabelBack),
	)},
	menuStatus: {title: "Выбери статус:", rows: staticRows(
		Row(LabelOnline, LabelAway),
		Row(LabelBusy, LabelOffline),
		Row(LabelStatusMessage),
		Row(LabelBack),
	)},
	menuAdmin: {title: "🔐 Админ-панель", rows: staticRows(
		Row(LabelBroadcast, LabelReviewTests),
		Row(LabelReviewVacations, LabelManageEvents),
		Row(LabelManageBalances, LabelAddContact),
		Row(LabelInvoice, LabelStats),
		Row(LabelUsers),
		Row(LabelLeaveAdmin),
		Row(LabelMainMenu),
	)},
	menuAdminEvents: {title: "📅 Управление мероприятиями", rows: staticRows(
		Row(LabelCreateEvent, LabelListEvents),
		Row(LabelEditEvent, LabelDeleteEvent),
		Row(LabelBack),
	)},
	menuAdminBalances: {title: "💰 Управление балансами", rows: staticRows(
		Row(LabelCredit, LabelDebit),
		Row(LabelBack),
	)},
}

func staticRows(rows ...[]string) func(*Bot, context.Context, *Request) [][]string {
	return func(*Bot, context.Context, *Request) [][]string { return rows }
}

// showMenu enters a submenu and renders it.
func (b *Bot) showMenu(ctx context.Context, r *Request, name string) error {
	m, ok := menus[name]
	if !ok {
		return b.showRoot(ctx, r)
	}
	b.nav.Push(r.ChatID, name)
	return b.reply(ctx, r, m.title, Reply(m.rows(b, ctx, r)...))
}

// showRoot resets navigation and renders the role's main menu.
func (b *Bot) showRoot(ctx context.Context, r *Request) error {
	b.nav.Reset(r.ChatID)
	text := "🏠 Главное меню"
	if u, err := b.svc.Users.Get(ctx, r.UserID); err == nil && !u.IsRegistered {
		text = "👋 Привет! Кто ты?"
	}
	return b.reply(ctx, r, text, b.rootKeyboard(ctx, r))
}

// back pops one menu level.
func (b *Bot) back(ctx context.Context, r *Request) error {
	prev := b.nav.Pop(r.ChatID)
	if prev == "" || prev == menuRoot {
		return b.showRoot(ctx, r)
	}
	m := menus[prev]
	return b.reply(ctx, r, m.title, Reply(m.rows(b, ctx, r)...))
}

func (b *Bot) rootKeyboard(ctx context.Context, r *Request) *Keyboard {
	u, err := b.svc.Users.Get(ctx, r.UserID)
	if err != nil {
		return nil
	}
	if !u.IsRegistered {
		return Reply(Row(LabelIntern, LabelVeteran))
	}

	var rows [][]string
	if u.Role == models.RoleVeteran {
		rows = [][]string{
			Row(LabelCabinet, LabelFun),
			Row(LabelEvents, LabelTasks),
			Row(LabelVacation, LabelAchievements),
			Row(LabelContacts, LabelStatus),
		}
	} else {
		rows = [][]string{
			Row(LabelCourses, LabelBalance),
			Row(LabelCabinet),
		}
		if ok, err := b.svc.Users.Graduated(ctx, r.UserID); err == nil && ok {
			rows = append(rows, Row(LabelGraduate))
		}
	}
	if ok, err := b.svc.AdminAuth.IsAdmin(ctx, r.UserID); err == nil && ok {
		rows = append(rows, Row(LabelAdminPanel))
	}
	return Reply(rows...)
}
