package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
)

func (b *Bot) menuRoute(name string) route {
	return route{handle: func(ctx context.Context, r *Request) error { return b.showMenu(ctx, r, name) }}
}

func (b *Bot) registerRoutes() {
	// registration
	b.on(LabelIntern, route{handle: b.chooseRole(models.RoleIntern)})
	b.on(LabelVeteran, route{handle: b.chooseRole(models.RoleVeteran)})

	// navigation
	b.on(LabelBack, route{handle: b.back})
	b.on(LabelMainMenu, route{handle: b.showRoot})

	// intern
	intern := func(label string, h handlerFunc) {
		b.on(label, route{handle: h, role: models.RoleIntern})
	}
	intern(LabelCourses, b.menuRoute(menuCourses).handle)
	for _, c := range b.svc.Courses.Courses() {
		intern(c.Title, b.startSubmission(c.Key))
	}
	intern(LabelGraduate, b.graduate)
	b.on(LabelBalance, route{handle: b.showBalance})
	b.on(LabelCabinet, route{handle: b.showCabinet})

	// veteran
	veteran := func(label string, h handlerFunc) {
		b.on(label, route{handle: h, role: models.RoleVeteran})
	}
	veteran(LabelFun, b.menuRoute(menuFun).handle)
	veteran(LabelPVP, b.fight)
	veteran(LabelShop, b.showShop)
	veteran(LabelGift, b.startGift)
	veteran(LabelTapper, b.openApp)

	veteran(LabelEvents, b.menuRoute(menuEvents).handle)
	veteran(LabelAllEvents, b.listEvents)
	veteran(LabelBook, b.startBooking)
	veteran(LabelMyBookings, b.myBookings)

	veteran(LabelTasks, b.menuRoute(menuTasks).handle)
	veteran(LabelNewTask, b.startTaskCreate)
	veteran(LabelMyTasks, b.myTasks)
	veteran(LabelIssuedTasks, b.issuedTasks)
	veteran(LabelCompleteTask, b.startTaskComplete)

	veteran(LabelVacation, b.menuRoute(menuVacation).handle)
	veteran(LabelVacationRequest, b.startVacation)
	veteran(LabelVacationBalance, b.vacationBalance)
	veteran(LabelMyVacations, b.myVacations)

	veteran(LabelAchievements, b.menuRoute(menuAchievements).handle)
	veteran(LabelNewAchievement, b.startAchievement)
	veteran(LabelFeed, b.showFeed)

	veteran(LabelContacts, b.menuRoute(menuContacts).handle)
	veteran(LabelFindContact, b.startContactSearch)
	veteran(LabelAllContacts, b.listContacts)

	veteran(LabelStatus, b.menuRoute(menuStatus).handle)
	veteran(LabelOnline, b.setPresence(models.PresenceOnline))
	veteran(LabelAway, b.setPresence(models.PresenceAway))
	veteran(LabelBusy, b.setPresence(models.PresenceBusy))
	veteran(LabelOffline, b.setPresence(models.PresenceOffline))
	veteran(LabelStatusMessage, b.startStatusMessage)

	// admin
	adminMenu := b.menuRoute(menuAdmin)
	adminMenu.admin = true
	b.on(LabelAdminPanel, adminMenu)
	b.on(LabelBroadcast, route{handle: b.startBroadcast, secure: true})
	b.on(LabelReviewTests, route{handle: b.reviewSubmissions, admin: true})
	b.on(LabelReviewVacations, route{handle: b.reviewVacations, admin: true})
	eventsMenu := b.menuRoute(menuAdminEvents)
	eventsMenu.admin = true
	b.on(LabelManageEvents, eventsMenu)
	b.on(LabelCreateEvent, route{handle: b.startEventCreate, admin: true})
	b.on(LabelEditEvent, route{handle: b.startEventEdit, admin: true})
	b.on(LabelDeleteEvent, route{handle: b.startEventDelete, admin: true})
	b.on(LabelListEvents, route{handle: b.listEvents, admin: true})
	balancesMenu := b.menuRoute(menuAdminBalances)
	balancesMenu.secure = true
	b.on(LabelManageBalances, balancesMenu)
	b.on(LabelCredit, route{handle: b.startBalance(opCredit), secure: true})
	b.on(LabelDebit, route{handle: b.startBalance(opDebit), secure: true})
	b.on(LabelAddContact, route{handle: b.startContactCreate, admin: true})
	b.on(LabelInvoice, route{handle: b.startInvoice, admin: true})
	b.on(LabelStats, route{handle: b.showStats, admin: true})
	b.on(LabelUsers, route{handle: b.listUsers, admin: true})
	b.on(LabelLeaveAdmin, route{handle: b.leaveAdmin, admin: true})
}

func (b *Bot) showBalance(ctx context.Context, r *Request) error {
	u, err := b.svc.Users.Get(ctx, r.UserID)
	if err != nil {
		return err
	}
	return b.reply(ctx, r, fmt.Sprintf("💰 Твой баланс: %d баллов\n⚡ Энергия: %d", u.PCoins, u.Energy), nil)
}

var roleTitles = map[string]string{
	models.RoleIntern:  "Стажер",
	models.RoleVeteran: "Сотрудник",
}

var presenceTitles = map[string]string{
	models.PresenceOnline:  LabelOnline,
	models.PresenceAway:    LabelAway,
	models.PresenceBusy:    LabelBusy,
	models.PresenceOffline: LabelOffline,
}

func (b *Bot) showCabinet(ctx context.Context, r *Request) error {
	p, err := b.svc.Users.Profile(ctx, r.UserID)
	if err != nil {
		return err
	}
	u := p.User
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 %s\n", u.DisplayName())
	fmt.Fprintf(&sb, "Роль: %s\n", roleTitles[u.Role])
	fmt.Fprintf(&sb, "Статус: %s", presenceTitles[u.Status])
	if u.StatusMessage != "" {
		fmt.Fprintf(&sb, " — %s", u.StatusMessage)
	}
	fmt.Fprintf(&sb, "\n💰 Баллы: %d\n⚡ Энергия: %d\n", u.PCoins, u.Energy)

	if u.Role == models.RoleIntern {
		sb.WriteString("\n📚 Пройденные тесты:\n")
		done := map[string]bool{}
		for _, pr := range p.Progress {
			if pr.Completed {
				done[pr.TestName] = true
			}
		}
		for _, c := range b.svc.Courses.Courses() {
			mark := "⬜"
			if done[c.Key] {
				mark = "✅"
			}
			fmt.Fprintf(&sb, "%s %s\n", mark, c.Title)
		}
	}
	if len(p.Bookings) > 0 {
		sb.WriteString("\n📅 Мои мероприятия:\n")
		for _, s := range p.Bookings {
			fmt.Fprintf(&sb, "• %s, %s %s\n", s.EventName, s.Date, s.Time)
		}
	}
	if p.OpenTasks > 0 {
		fmt.Fprintf(&sb, "\n📋 Открытых задач: %d\n", p.OpenTasks)
	}
	return b.reply(ctx, r, sb.String(), nil)
}

func (b *Bot) graduate(ctx context.Context, r *Request) error {
	if err := b.svc.Users.Graduate(ctx, r.UserID); err != nil {
		return err
	}
	u, err := b.svc.Users.Get(ctx, r.UserID)
	if err != nil {
		return err
	}
	if err := b.reply(ctx, r, "🎉 Поздравляем! Стажировка завершена, теперь ты в команде.", nil); err != nil {
		return err
	}
	doc, err := b.svc.Courses.Certificate(ctx, u, false)
	if err != nil {
		return err
	}
	if err := b.out.SendDocument(ctx, r.ChatID, doc, "🎓 Твой сертификат"); err != nil {
		return err
	}
	return b.showRoot(ctx, r)
}

func (b *Bot) setPresence(status string) handlerFunc {
	return func(ctx context.Context, r *Request) error {
		if err := b.svc.Users.SetPresence(ctx, r.UserID, status); err != nil {
			return err
		}
		return b.reply(ctx, r, "✅ Статус обновлен: "+presenceTitles[status], nil)
	}
}

func (b *Bot) listUsers(ctx context.Context, r *Request) error {
	users, err := b.svc.Users.All(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return b.reply(ctx, r, "Пользователей пока нет.", nil)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Пользователи (%d):\n", len(users))
	for i, u := range users {
		reg := ""
		if !u.IsRegistered {
			reg = " (не зарегистрирован)"
		}
		fmt.Fprintf(&sb, "%d. %s — %s, %d баллов%s\n", i+1, u.DisplayName(), roleTitles[u.Role], u.PCoins, reg)
	}
	return b.reply(ctx, r, sb.String(), nil)
}
