package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/config"
	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/render"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/session"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
)

type sent struct {
	chatID int64
	text   string
	photo  string
	kb     *Keyboard
}

type answer struct {
	id   string
	text string
}

type fakePresenter struct {
	mu      sync.Mutex
	msgs    []sent
	answers []answer
	docs    []string
	edits   int
	nextID  int
}

func (p *fakePresenter) Send(_ context.Context, chatID int64, text string, kb *Keyboard) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	p.msgs = append(p.msgs, sent{chatID: chatID, text: text, kb: kb})
	return p.nextID, nil
}

func (p *fakePresenter) SendPhoto(_ context.Context, chatID int64, fileID, caption string, kb *Keyboard) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	p.msgs = append(p.msgs, sent{chatID: chatID, text: caption, photo: fileID, kb: kb})
	return p.nextID, nil
}

func (p *fakePresenter) SendDocument(_ context.Context, _ int64, doc render.Document, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs = append(p.docs, doc.Name)
	return nil
}

func (p *fakePresenter) EditMessage(context.Context, int64, int, string, *Keyboard) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edits++
	return nil
}

func (p *fakePresenter) AnswerCallback(_ context.Context, id, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answers = append(p.answers, answer{id: id, text: text})
	return nil
}

func (p *fakePresenter) DeleteMessage(context.Context, int64, int) error { return nil }

// to returns every message delivered to chatID.
func (p *fakePresenter) to(chatID int64) []sent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []sent
	for _, m := range p.msgs {
		if m.chatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (p *fakePresenter) lastAnswer() answer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.answers) == 0 {
		return answer{}
	}
	return p.answers[len(p.answers)-1]
}

type harness struct {
	t   *testing.T
	st  *store.Memory
	svc *services.Services
	reg *session.Registry
	out *fakePresenter
	bot *Bot
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:           "test-secret",
		AdminPassword:       "Sup3r$ecret",
		AdminSessionTTL:     time.Hour,
		GiftMinAmount:       1,
		GiftDailyCap:        50,
		PVPStake:            10,
		PVPEnergyCost:       20,
		EnergyMax:           100,
		EnergyRegenPerHour:  10,
		VacationDaysPerYear: 28,
		GraduationCount:     4,
	}
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	st := store.NewMemory()
	svc, err := services.New(st, cfg, services.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	h := &harness{
		t:   t,
		st:  st,
		svc: svc,
		reg: session.NewRegistry(session.NewMemoryStore(), 3),
		out: &fakePresenter{},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.bot = New(svc, h.reg, session.NewNavigation(), h.out, WithLogger(log))
	return h
}

func (h *harness) event(userID int64, kind string) Event {
	return Event{
		UserID:   userID,
		ChatID:   userID,
		Username: fmt.Sprintf("user%d", userID),
		Kind:     kind,
	}
}

func (h *harness) text(userID int64, text string) {
	ev := h.event(userID, KindText)
	ev.Text = text
	h.bot.Handle(context.Background(), ev)
}

func (h *harness) photo(userID int64, fileID string) {
	ev := h.event(userID, KindPhoto)
	ev.PhotoFileID = fileID
	h.bot.Handle(context.Background(), ev)
}

func (h *harness) press(userID int64, data string) {
	ev := h.event(userID, KindCallback)
	ev.CallbackID = "cb-" + data
	ev.CallbackData = data
	ev.MessageID = 42
	h.bot.Handle(context.Background(), ev)
}

// user creates a registered user with the given role and balance.
func (h *harness) user(id int64, role string, coins int64) {
	h.t.Helper()
	ctx := context.Background()
	if _, _, err := h.svc.Users.Ensure(ctx, id, fmt.Sprintf("user%d", id), ""); err != nil {
		h.t.Fatalf("expected no error, got %v", err)
	}
	if err := h.svc.Users.ChooseRole(ctx, id, role); err != nil {
		h.t.Fatalf("expected no error, got %v", err)
	}
	if err := h.svc.Users.Register(ctx, id, "hello there"); err != nil {
		h.t.Fatalf("expected no error, got %v", err)
	}
	if coins > 0 {
		if _, err := h.svc.Balances.Add(ctx, id, coins); err != nil {
			h.t.Fatalf("expected no error, got %v", err)
		}
	}
}

func (h *harness) admin(id int64) {
	h.t.Helper()
	if err := h.st.GrantAdmin(context.Background(), id, fmt.Sprintf("user%d", id)); err != nil {
		h.t.Fatalf("expected no error, got %v", err)
	}
}

func (h *harness) dialogue(id int64) *session.Dialogue {
	h.t.Helper()
	d, err := h.reg.Active(context.Background(), id)
	if err != nil {
		h.t.Fatalf("expected no error, got %v", err)
	}
	return d
}

func (h *harness) coins(id int64) int64 {
	h.t.Helper()
	u, err := h.st.GetUser(context.Background(), id)
	if err != nil {
		h.t.Fatalf("expected user, got %v", err)
	}
	return u.PCoins
}

func (h *harness) last(chatID int64) sent {
	h.t.Helper()
	msgs := h.out.to(chatID)
	if len(msgs) == 0 {
		h.t.Fatalf("expected a message to %d", chatID)
	}
	return msgs[len(msgs)-1]
}

func (h *harness) saw(chatID int64, substr string) bool {
	for _, m := range h.out.to(chatID) {
		if strings.Contains(m.text, substr) {
			return true
		}
	}
	return false
}

func hasLabel(kb *Keyboard, label string) bool {
	if kb == nil {
		return false
	}
	for _, row := range kb.Reply {
		for _, l := range row {
			if l == label {
				return true
			}
		}
	}
	return false
}

func inlineData(kb *Keyboard, prefix string) string {
	if kb == nil {
		return ""
	}
	for _, row := range kb.Inline {
		for _, b := range row {
			if strings.HasPrefix(b.Data, prefix) {
				return b.Data
			}
		}
	}
	return ""
}

func TestEscapeWords(t *testing.T) {
	cases := map[string]bool{
		"отмена":           true,
		"Отмена!":          true,
		"🔙 Назад":          true,
		"🏠 Главное меню":   true,
		"хочу в меню":      true,
		"/cancel":          true,
		"CANCEL":           true,
		"менюшка":          false,
		"42":               false,
		"Анна, отдел HR":   false,
		"":                 false,
		"⏭ Пропустить":     false,
	}
	for in, want := range cases {
		if got := isEscape(in); got != want {
			t.Errorf("isEscape(%q) = %v, want %v", in, got, want)
		}
	}

	only := map[string]bool{
		"Отмена":                   true,
		"🔙 Назад":                  true,
		"назад, меню!":             true,
		"Обновили меню в столовой": false,
		"хочу в меню":              false,
		"":                         false,
		"🏠":                        false,
	}
	for in, want := range only {
		if got := isOnlyEscape(in); got != want {
			t.Errorf("isOnlyEscape(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRegistrationFlow(t *testing.T) {
	h := newHarness(t)

	h.text(7, "/start")
	first := h.last(7)
	if !hasLabel(first.kb, LabelIntern) || !hasLabel(first.kb, LabelVeteran) {
		t.Fatalf("expected role keyboard, got %+v", first.kb)
	}

	h.text(7, LabelIntern)
	if d := h.dialogue(7); d == nil || d.Kind != dlgRegistration {
		t.Fatalf("expected registration dialogue, got %+v", d)
	}

	h.text(7, "Анна, отдел продаж, пишу тексты")
	if d := h.dialogue(7); d != nil {
		t.Fatalf("expected dialogue to be cleared, got %+v", d)
	}
	u, err := h.st.GetUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected user, got %v", err)
	}
	if !u.IsRegistered || u.Role != models.RoleIntern {
		t.Fatalf("expected registered intern, got %+v", u)
	}
	if !hasLabel(h.last(7).kb, LabelCourses) {
		t.Fatalf("expected intern main menu, got %+v", h.last(7).kb)
	}
}

func TestRegistrationCaptureOutsideDialogue(t *testing.T) {
	h := newHarness(t)

	h.text(8, "hi")
	if u, _ := h.st.GetUser(context.Background(), 8); u.IsRegistered {
		t.Fatal("expected too short profile to be ignored")
	}

	h.text(8, "Борис, бухгалтерия")
	if u, _ := h.st.GetUser(context.Background(), 8); !u.IsRegistered {
		t.Fatal("expected free text to register the user")
	}
}

func TestEscapeClearsDialogue(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 50)
	h.user(2, models.RoleVeteran, 0)

	h.text(1, LabelGift)
	if d := h.dialogue(1); d == nil || d.Kind != dlgGift {
		t.Fatalf("expected gift dialogue, got %+v", d)
	}

	h.text(1, "Отмена")
	if d := h.dialogue(1); d != nil {
		t.Fatalf("expected dialogue to be cleared, got %+v", d)
	}
	if !h.saw(1, msgCancelled) {
		t.Fatal("expected cancellation message")
	}
	if !hasLabel(h.last(1).kb, LabelFun) {
		t.Fatal("expected main menu after escape")
	}
}

func TestEscapeWordOutsideDialogueIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)

	h.text(1, "отмена")
	if h.saw(1, msgCancelled) {
		t.Fatal("expected no cancellation without a dialogue")
	}
}

func TestSlashCommandClearsDialogue(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 50)
	h.user(2, models.RoleVeteran, 0)

	h.text(1, LabelGift)
	h.text(1, "/menu")
	if d := h.dialogue(1); d != nil {
		t.Fatalf("expected dialogue to be cleared, got %+v", d)
	}
	if h.last(1).text != "🏠 Главное меню" {
		t.Fatalf("expected main menu, got %q", h.last(1).text)
	}
}

func TestMenuLabelClearsDialogue(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 50)
	h.user(2, models.RoleVeteran, 0)

	h.text(1, LabelGift)
	h.text(1, "1")
	h.text(1, LabelEvents)
	if d := h.dialogue(1); d != nil {
		t.Fatalf("expected dialogue to be cleared, got %+v", d)
	}
	if !hasLabel(h.last(1).kb, LabelAllEvents) {
		t.Fatalf("expected events menu, got %+v", h.last(1).kb)
	}
}

func TestGiftFlow(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 50)
	h.user(2, models.RoleVeteran, 0)

	h.text(1, LabelGift)
	h.text(1, "1")
	if d := h.dialogue(1); d == nil || d.Step != stepEnterAmount {
		t.Fatalf("expected amount step, got %+v", d)
	}
	h.text(1, "30")
	h.text(1, LabelSkip)

	if got := h.coins(1); got != 20 {
		t.Fatalf("expected sender balance 20, got %d", got)
	}
	if got := h.coins(2); got != 30 {
		t.Fatalf("expected receiver balance 30, got %d", got)
	}
	if !h.saw(2, "подарил тебе 30 баллов") {
		t.Fatal("expected receiver to be notified")
	}
	if d := h.dialogue(1); d != nil {
		t.Fatalf("expected dialogue to be cleared, got %+v", d)
	}
}

func TestGiftRecipientByUsername(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 50)
	h.user(2, models.RoleVeteran, 0)
	h.user(3, models.RoleVeteran, 0)

	h.text(1, LabelGift)
	h.text(1, "@user3")
	h.text(1, "5")
	h.text(1, "спасибо!")

	if got := h.coins(3); got != 5 {
		t.Fatalf("expected 5 coins for @user3, got %d", got)
	}
	if !h.saw(3, "💌 спасибо!") {
		t.Fatal("expected gift message to be delivered")
	}
}

func TestRetryBudgetExhausted(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 50)
	h.user(2, models.RoleVeteran, 0)

	h.text(1, LabelGift)
	h.text(1, "1")
	h.text(1, "много")
	h.text(1, "-3")
	if d := h.dialogue(1); d == nil || d.Failures != 2 {
		t.Fatalf("expected two failures recorded, got %+v", d)
	}
	h.text(1, "abc")

	if d := h.dialogue(1); d != nil {
		t.Fatalf("expected dialogue to be dropped, got %+v", d)
	}
	if !h.saw(1, msgTooManyTries) {
		t.Fatal("expected retry budget message")
	}
	if got := h.coins(1); got != 50 {
		t.Fatalf("expected balance untouched, got %d", got)
	}
}

func TestPhotoOnTextStepRetries(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 50)
	h.user(2, models.RoleVeteran, 0)

	h.text(1, LabelGift)
	h.text(1, "1")
	h.photo(1, "file-1")

	d := h.dialogue(1)
	if d == nil || d.Step != stepEnterAmount || d.Failures != 1 {
		t.Fatalf("expected amount step with one failure, got %+v", d)
	}
	if !h.saw(1, msgExpectText) {
		t.Fatal("expected text hint")
	}
}

func TestAdminRouteRefused(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)

	h.text(1, LabelStats)
	if got := h.last(1).text; got != "⛔ Доступ только для администраторов." {
		t.Fatalf("expected refusal, got %q", got)
	}
}

func TestSecureRouteNeedsSession(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.user(2, models.RoleVeteran, 0)
	h.admin(1)

	h.text(1, LabelCredit)
	if !strings.Contains(h.last(1).text, "Сессия администратора") {
		t.Fatalf("expected session refusal, got %q", h.last(1).text)
	}

	h.text(1, "/admin")
	h.text(1, "wrong-password")
	if d := h.dialogue(1); d == nil || d.Kind != dlgAdminLogin {
		t.Fatalf("expected login dialogue to survive a bad password, got %+v", d)
	}
	h.text(1, "Sup3r$ecret")
	if !hasLabel(h.last(1).kb, LabelBroadcast) {
		t.Fatalf("expected admin menu, got %+v", h.last(1).kb)
	}

	h.text(1, LabelCredit)
	h.text(1, "1")
	h.text(1, "15")
	if got := h.coins(2); got != 15 {
		t.Fatalf("expected 15 credited, got %d", got)
	}
}

func TestSubmissionReview(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.admin(1)
	h.user(10, models.RoleIntern, 0)
	course := h.svc.Courses.Courses()[0]

	h.text(10, course.Title)
	h.text(10, "80")
	h.text(10, "вот результат")
	if !h.saw(10, msgExpectPhoto) {
		t.Fatal("expected photo hint")
	}
	h.photo(10, "screenshot-1")

	review := h.last(1)
	if review.photo != "screenshot-1" {
		t.Fatalf("expected admin to get the screenshot, got %+v", review)
	}
	data := inlineData(review.kb, "sub:approve:")
	if data == "" {
		t.Fatalf("expected approve button, got %+v", review.kb)
	}

	h.press(10, data)
	if got := h.out.lastAnswer().text; got != "⛔ Доступ только для администраторов." {
		t.Fatalf("expected non-admin press to be refused, got %q", got)
	}

	h.press(1, data)
	if got := h.out.lastAnswer().text; got != "Одобрено" {
		t.Fatalf("expected approval toast, got %q", got)
	}
	if got := h.coins(10); got != 80 {
		t.Fatalf("expected 80 coins, got %d", got)
	}

	h.press(1, data)
	if got := h.out.lastAnswer().text; got != "⚠️ Заявка уже обработана." {
		t.Fatalf("expected already processed toast, got %q", got)
	}
	if got := h.coins(10); got != 80 {
		t.Fatalf("expected no double credit, got %d", got)
	}
}

func TestSubmissionRejectionComment(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.admin(1)
	h.user(10, models.RoleIntern, 0)
	course := h.svc.Courses.Courses()[0]

	h.text(10, course.Title)
	h.text(10, "90")
	h.photo(10, "screenshot-1")
	data := inlineData(h.last(1).kb, "sub:reject:")

	h.press(1, data)
	if d := h.dialogue(1); d == nil || d.Kind != dlgReview {
		t.Fatalf("expected review comment dialogue, got %+v", d)
	}
	h.text(1, "нечитаемый скриншот")

	if !h.saw(10, "Причина: нечитаемый скриншот") {
		t.Fatal("expected intern to get the rejection reason")
	}
	if got := h.coins(10); got != 0 {
		t.Fatalf("expected no coins, got %d", got)
	}
}

func TestUnknownCallbackIsAnswered(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)

	h.press(1, "nope:123")
	if got := h.out.lastAnswer(); got.id != "cb-nope:123" || got.text != "" {
		t.Fatalf("expected empty answer, got %+v", got)
	}
}

func TestMalformedCallbackIDIsNotFound(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)

	h.press(1, "task:done:not-a-uuid")
	if got := h.out.lastAnswer().text; !strings.HasPrefix(got, "❌ Не найдено") {
		t.Fatalf("expected not found toast, got %q", got)
	}
}

func TestTaskDoneByButton(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.user(2, models.RoleVeteran, 0)

	task, err := h.svc.Tasks.Create(context.Background(), services.TaskDraft{
		CreatorID:  1,
		AssigneeID: 2,
		Title:      "Подготовить отчет",
		Priority:   models.PriorityHigh,
		Reward:     10,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	h.press(1, "task:done:"+task.ID.String())
	if got := h.out.lastAnswer().text; !strings.HasPrefix(got, "❌ Не найдено") {
		t.Fatalf("expected creator press to be refused, got %q", got)
	}

	h.press(2, "task:done:"+task.ID.String())
	if got := h.out.lastAnswer().text; got != "Готово!" {
		t.Fatalf("expected done toast, got %q", got)
	}
	if got := h.coins(2); got != 10 {
		t.Fatalf("expected reward paid, got %d", got)
	}
	if h.out.edits != 1 {
		t.Fatalf("expected task card to be edited once, got %d", h.out.edits)
	}
	if !h.saw(1, "Подготовить отчет") {
		t.Fatal("expected creator to be notified")
	}
}

func TestBookingByNumber(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)

	slot, err := h.svc.Events.Create(context.Background(), services.SlotDraft{
		Category:        services.EventCategories[0],
		Date:            "10.03.2026",
		Time:            "09:00",
		MaxParticipants: 1,
		PointsReward:    5,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	h.text(1, LabelBook)
	h.text(1, "1")
	booked, err := h.svc.Events.Bookings(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(booked) != 1 || booked[0].ID != slot.ID {
		t.Fatalf("expected one booking for the slot, got %+v", booked)
	}

	h.user(2, models.RoleVeteran, 0)
	h.text(2, LabelBook)
	h.text(2, "1")
	if got := h.last(2).text; got != "❌ Свободных мест нет." {
		t.Fatalf("expected capacity refusal, got %q", got)
	}
	if d := h.dialogue(2); d != nil {
		t.Fatalf("expected refusal to end the dialogue, got %+v", d)
	}
}

func TestBroadcastReachesEveryone(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.user(2, models.RoleVeteran, 0)
	h.user(3, models.RoleIntern, 0)
	h.admin(1)

	h.text(1, "/admin")
	h.text(1, "Sup3r$ecret")
	h.text(1, LabelBroadcast)
	h.text(1, LabelTargetAll)
	h.text(1, "Завтра субботник")
	h.photo(1, "poster-1")
	h.text(1, LabelDone)

	for _, id := range []int64{2, 3} {
		got := h.last(id)
		if got.photo != "poster-1" || got.text != "📢 Завтра субботник" {
			t.Fatalf("expected broadcast photo for %d, got %+v", id, got)
		}
	}
	if !h.saw(1, "Доставлено: 2") {
		t.Fatal("expected delivery report")
	}
}

func TestBroadcastTextKeepsEscapeWords(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.user(2, models.RoleVeteran, 0)
	h.admin(1)

	h.text(1, "/admin")
	h.text(1, "Sup3r$ecret")
	h.text(1, LabelBroadcast)
	h.text(1, LabelTargetAll)
	h.text(1, "Обновили меню в столовой")
	if d := h.dialogue(1); d == nil || d.Step != stepCollectMedia {
		t.Fatalf("expected media step, got %+v", d)
	}
	h.text(1, LabelDone)

	if got := h.last(2).text; got != "📢 Обновили меню в столовой" {
		t.Fatalf("expected broadcast to be delivered, got %q", got)
	}
}

func TestEscapeOnFreeTextStep(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.user(2, models.RoleVeteran, 0)
	h.admin(1)

	h.text(1, "/admin")
	h.text(1, "Sup3r$ecret")
	h.text(1, LabelBroadcast)
	h.text(1, LabelTargetAll)
	h.text(1, "Отмена")

	if d := h.dialogue(1); d != nil {
		t.Fatalf("expected dialogue to be cleared, got %+v", d)
	}
	if !h.saw(1, msgCancelled) {
		t.Fatal("expected cancellation message")
	}
	if len(h.out.to(2)) != 0 {
		t.Fatal("expected nothing to be delivered")
	}
}

func TestGiftMessageKeepsEscapeWords(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 50)
	h.user(2, models.RoleVeteran, 0)

	h.text(1, LabelGift)
	h.text(1, "1")
	h.text(1, "5")
	h.text(1, "спасибо, что вернул меню")

	if got := h.coins(2); got != 5 {
		t.Fatalf("expected gift to go through, got %d", got)
	}
	if !h.saw(2, "💌 спасибо, что вернул меню") {
		t.Fatal("expected gift message to be delivered")
	}
}

func TestRoleGatedRoutes(t *testing.T) {
	h := newHarness(t)
	h.user(10, models.RoleIntern, 50)
	h.user(1, models.RoleVeteran, 50)

	for _, label := range []string{LabelGift, LabelPVP, LabelTasks, LabelVacationRequest} {
		h.text(10, label)
		if got := h.last(10).text; got != "🚫 Этот раздел недоступен для твоей роли." {
			t.Fatalf("expected %q to be refused for an intern, got %q", label, got)
		}
		if d := h.dialogue(10); d != nil {
			t.Fatalf("expected no dialogue after %q, got %+v", label, d)
		}
	}
	if got := h.coins(10); got != 50 {
		t.Fatalf("expected balance untouched, got %d", got)
	}

	h.text(1, LabelCourses)
	if got := h.last(1).text; got != "🚫 Этот раздел недоступен для твоей роли." {
		t.Fatalf("expected courses to be refused for a veteran, got %q", got)
	}

	h.text(10, LabelBalance)
	if !h.saw(10, "Твой баланс: 50 баллов") {
		t.Fatal("expected balance to stay open to interns")
	}
}

func TestAdminLoginLockout(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.admin(1)

	h.text(1, "/admin")
	h.text(1, "guess-1")
	h.text(1, "guess-2")
	h.text(1, "/admin")
	h.text(1, "guess-3")
	h.text(1, "guess-4")
	h.text(1, "/admin")
	h.text(1, "guess-5")
	h.text(1, "Sup3r$ecret")

	if got := h.last(1).text; got != "🔒 Слишком много попыток входа. Попробуй позже." {
		t.Fatalf("expected lockout, got %q", got)
	}
	if d := h.dialogue(1); d != nil {
		t.Fatalf("expected login dialogue to end, got %+v", d)
	}
	h.text(1, LabelCredit)
	if !strings.Contains(h.last(1).text, "Сессия администратора") {
		t.Fatalf("expected no admin session, got %q", h.last(1).text)
	}
}

func TestVacationRequestFlow(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.admin(1)
	h.user(2, models.RoleVeteran, 0)

	h.text(2, LabelVacationRequest)
	h.text(2, "01.02.2026")
	if !h.saw(2, "Дата начала не может быть в прошлом") {
		t.Fatal("expected past start to be rejected")
	}
	h.text(2, "10.03.2026")
	if d := h.dialogue(2); d == nil || d.Step != stepEndDate || d.Failures != 0 {
		t.Fatalf("expected end step with a fresh budget, got %+v", d)
	}

	h.text(2, "05.03.2026")
	if !h.saw(2, "Дата окончания должна быть позже даты начала") {
		t.Fatal("expected end before start to be rejected")
	}
	h.text(2, "05.01.2027")
	if !h.saw(2, "Отпуск должен укладываться в один календарный год") {
		t.Fatal("expected cross-year range to be rejected")
	}
	h.text(2, "20.03.2026")
	h.text(2, "Круиз")
	if !h.saw(2, "Выбери тип отпуска кнопкой") {
		t.Fatal("expected unknown type to be rejected")
	}
	h.text(2, services.VacationTypes[0])
	h.text(2, LabelSkip)

	if !h.saw(2, "✅ Заявка отправлена на рассмотрение.") {
		t.Fatalf("expected confirmation, got %q", h.last(2).text)
	}
	if d := h.dialogue(2); d != nil {
		t.Fatalf("expected dialogue to be cleared, got %+v", d)
	}

	data := inlineData(h.last(1).kb, "vac:approve:")
	if data == "" {
		t.Fatalf("expected admin review buttons, got %+v", h.last(1).kb)
	}
	h.press(1, data)
	if got := h.out.lastAnswer().text; got != "Одобрено" {
		t.Fatalf("expected approval toast, got %q", got)
	}
	if !h.saw(2, "✅ Заявка на отпуск одобрена: 10.03.2026 – 20.03.2026 (11 дн.") {
		t.Fatal("expected requester to be notified")
	}
	bal, err := h.svc.Vacations.Balance(context.Background(), 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bal.UsedDays != 11 || bal.PendingDays != 0 || bal.RemainingDays != 17 {
		t.Fatalf("expected 11 used and 17 left, got %+v", bal)
	}
}

func TestEventCreateFlow(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.admin(1)

	h.text(1, LabelCreateEvent)
	h.text(1, "Шахматы")
	if !h.saw(1, "Выбери категорию кнопкой") {
		t.Fatal("expected unknown category to be rejected")
	}
	h.text(1, services.EventCategories[1])
	h.text(1, "Покерный вечер")
	h.text(1, "31.02.2026")
	if !h.saw(1, "Такой даты не существует") {
		t.Fatal("expected impossible date to be rejected")
	}
	h.text(1, "2026-03-20")
	if !h.saw(1, "Неверный формат даты. Используй ДД.ММ.ГГГГ") {
		t.Fatal("expected date format hint")
	}
	h.text(1, "20.03.2026")
	h.text(1, "7pm")
	if !h.saw(1, "Неверный формат времени. Используй ЧЧ:ММ") {
		t.Fatal("expected time format hint")
	}
	h.text(1, "25:61")
	if !h.saw(1, "Такого времени не существует") {
		t.Fatal("expected impossible time to be rejected")
	}
	h.text(1, "19:00")
	h.text(1, LabelSkip)
	h.text(1, "500")
	if !h.saw(1, "Число должно быть от 1 до 100") {
		t.Fatal("expected seat bound to be enforced")
	}
	h.text(1, "8")
	h.text(1, "15")

	if !strings.HasPrefix(h.last(1).text, "✅ Мероприятие создано:") {
		t.Fatalf("expected creation message, got %q", h.last(1).text)
	}
	slots, err := h.svc.Events.Active(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected one slot, got %d", len(slots))
	}
	s := slots[0]
	if s.EventName != "Покерный вечер" || s.Date != "20.03.2026" || s.Time != "19:00" || s.MaxParticipants != 8 || s.PointsReward != 15 {
		t.Fatalf("unexpected slot %+v", s)
	}
}

func TestEventCreateNeedsAdmin(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)

	h.text(1, LabelCreateEvent)
	if got := h.last(1).text; got != "⛔ Доступ только для администраторов." {
		t.Fatalf("expected refusal, got %q", got)
	}
	if d := h.dialogue(1); d != nil {
		t.Fatalf("expected no dialogue, got %+v", d)
	}
}

func (h *harness) slot(name string) *models.EventSlot {
	h.t.Helper()
	s, err := h.svc.Events.Create(context.Background(), services.SlotDraft{
		Category:        services.EventCategories[0],
		EventName:       name,
		Date:            "10.03.2026",
		Time:            "09:00",
		MaxParticipants: 5,
		PointsReward:    5,
	})
	if err != nil {
		h.t.Fatalf("expected no error, got %v", err)
	}
	return s
}

func TestEventEditFlow(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.admin(1)
	s := h.slot("Утренняя зарядка")

	h.text(1, LabelEditEvent)
	h.text(1, "7")
	if d := h.dialogue(1); d == nil || d.Failures != 1 {
		t.Fatalf("expected out of range slot to be rejected, got %+v", d)
	}
	h.text(1, "1")
	h.text(1, "Ориентир")
	if !h.saw(1, "Выбери поле кнопкой") {
		t.Fatal("expected unknown field to be rejected")
	}
	h.text(1, "Время")
	h.text(1, "25:61")
	if !h.saw(1, "Такого времени не существует") {
		t.Fatal("expected impossible time to be rejected")
	}
	h.text(1, "18:30")

	if !strings.HasPrefix(h.last(1).text, "✅ Мероприятие обновлено:") {
		t.Fatalf("expected update message, got %q", h.last(1).text)
	}
	got, err := h.svc.Events.Get(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Time != "18:30" || got.EventName != "Утренняя зарядка" {
		t.Fatalf("expected only the time to change, got %+v", got)
	}
}

func TestEventDeleteFlow(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.admin(1)
	s := h.slot("Корпоратив")

	h.text(1, LabelDeleteEvent)
	h.text(1, "1")
	h.text(1, "может быть")
	if !h.saw(1, "Ответь кнопкой «Да» или «Нет»") {
		t.Fatal("expected a yes or no reprompt")
	}
	h.text(1, LabelNo)
	if got := h.last(1).text; got != "Удаление отменено." {
		t.Fatalf("expected cancellation, got %q", got)
	}
	if _, err := h.svc.Events.Get(context.Background(), s.ID); err != nil {
		t.Fatalf("expected slot to survive, got %v", err)
	}

	h.text(1, LabelDeleteEvent)
	h.text(1, "1")
	h.text(1, LabelYes)
	if got := h.last(1).text; got != "✅ Мероприятие удалено." {
		t.Fatalf("expected deletion, got %q", got)
	}
	if _, err := h.svc.Events.Get(context.Background(), s.ID); err == nil {
		t.Fatal("expected slot to be gone")
	}
}

func TestInvoiceFlow(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.admin(1)

	h.text(1, LabelInvoice)
	h.text(1, LabelSkip)
	if !h.saw(1, "Укажи название организации") {
		t.Fatal("expected organisation name to be required")
	}
	h.text(1, "ООО Ромашка")
	h.text(1, "Москва, ул. Ленина, 1")
	h.text(1, LabelSkip)
	h.text(1, "0")
	if d := h.dialogue(1); d == nil || d.Step != stepQuantity || d.Failures != 1 {
		t.Fatalf("expected quantity reprompt, got %+v", d)
	}
	h.text(1, "3")
	h.text(1, "NaN")
	if !h.saw(1, "Нужно ввести положительное число") {
		t.Fatal("expected NaN to be rejected")
	}
	h.text(1, "1e308")
	if d := h.dialogue(1); d == nil || d.Step != stepUnitAmount || d.Failures != 2 {
		t.Fatalf("expected amount reprompt, got %+v", d)
	}
	h.text(1, "1500,50")

	if len(h.out.docs) != 1 || h.out.docs[0] != "invoice_preview.html" {
		t.Fatalf("expected preview document, got %v", h.out.docs)
	}
	if !strings.Contains(h.last(1).text, "Итого: 4501.50 ₽") {
		t.Fatalf("expected preview total, got %q", h.last(1).text)
	}
	h.text(1, "давай")
	if !h.saw(1, "Ответь кнопкой «Да» или «Нет»") {
		t.Fatal("expected a yes or no reprompt")
	}
	h.text(1, LabelYes)

	if got := h.last(1).text; got != "✅ Счет №1 выставлен на 4501.50 ₽." {
		t.Fatalf("expected issue message, got %q", got)
	}
	if len(h.out.docs) != 3 || h.out.docs[1] != "invoice_preview.html" || h.out.docs[2] != "invoice_1.html" {
		t.Fatalf("expected preview again on reprompt then the numbered document, got %v", h.out.docs)
	}
	invs, err := h.st.ListInvoices(context.Background(), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(invs) != 1 || invs[0].FileName != "invoice_1.html" || invs[0].CompanyName != "ООО Ромашка" {
		t.Fatalf("expected stored invoice with file name, got %+v", invs)
	}
}

func TestInvoiceDeclined(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.admin(1)

	h.text(1, LabelInvoice)
	h.text(1, "ИП Иванов")
	h.text(1, LabelSkip)
	h.text(1, LabelSkip)
	h.text(1, "1")
	h.text(1, "100")
	h.text(1, LabelNo)

	if got := h.last(1).text; got != "Счет не выставлен." {
		t.Fatalf("expected decline message, got %q", got)
	}
	invs, _ := h.st.ListInvoices(context.Background(), 0)
	if len(invs) != 0 {
		t.Fatalf("expected no invoice, got %+v", invs)
	}
	if len(h.out.docs) != 1 {
		t.Fatalf("expected only the preview, got %v", h.out.docs)
	}
}

func TestContactCreateAndSearch(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.admin(1)
	h.user(2, models.RoleVeteran, 0)

	h.text(1, LabelAddContact)
	h.text(1, LabelSkip)
	if !h.saw(1, "Название компании обязательно") {
		t.Fatal("expected company to be required")
	}
	h.text(1, "ООО Ромашка")
	h.text(1, "Ирина")
	h.text(1, LabelSkip)
	h.text(1, "irina@")
	if !h.saw(1, "Некорректный e-mail") {
		t.Fatal("expected bad e-mail to be rejected")
	}
	h.text(1, "irina@romashka.ru")
	h.text(1, "+7 900 000-00-00")
	h.text(1, "@irina")
	h.text(1, LabelSkip)

	card := h.last(1).text
	if !strings.HasPrefix(card, "✅ Контакт сохранен:") || !strings.Contains(card, "📧 irina@romashka.ru") || !strings.Contains(card, "✈️ @irina") {
		t.Fatalf("unexpected contact card %q", card)
	}

	h.text(2, LabelFindContact)
	h.text(2, "   ")
	if d := h.dialogue(2); d == nil || d.Failures != 1 {
		t.Fatalf("expected empty query to be rejected, got %+v", d)
	}
	h.text(2, "ромаш")
	if got := h.last(2).text; !strings.HasPrefix(got, "🔍 Найдено (1):") || !strings.Contains(got, "ООО Ромашка") {
		t.Fatalf("expected one match, got %q", got)
	}

	h.text(2, LabelFindContact)
	h.text(2, "Лютик")
	if got := h.last(2).text; got != "🔍 Ничего не найдено." {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestAchievementPublishFansOut(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.user(2, models.RoleVeteran, 0)
	h.user(3, models.RoleIntern, 0)

	h.text(1, LabelNewAchievement)
	h.text(1, "   ")
	if d := h.dialogue(1); d == nil || d.Failures != 1 {
		t.Fatalf("expected empty title to be rejected, got %+v", d)
	}
	h.text(1, "Закрыли квартал")
	h.text(1, "Без переработок")
	h.text(1, "вот фото")
	if !h.saw(1, msgExpectPhoto) {
		t.Fatal("expected photo hint")
	}
	h.photo(1, "team-photo")

	if got := h.last(1).text; got != "🎉 Достижение опубликовано! Его увидели 2 коллег." {
		t.Fatalf("expected publish report, got %q", got)
	}
	for _, id := range []int64{2, 3} {
		got := h.last(id)
		if got.photo != "team-photo" || !strings.Contains(got.text, "Закрыли квартал") {
			t.Fatalf("expected achievement for %d, got %+v", id, got)
		}
	}

	like := inlineData(h.last(2).kb, "ach:like:")
	if like == "" {
		t.Fatalf("expected like button, got %+v", h.last(2).kb)
	}
	h.press(2, like)
	if got := h.out.lastAnswer().text; got != "❤️" {
		t.Fatalf("expected like toast, got %q", got)
	}
	if !h.saw(1, "оценил твое достижение «Закрыли квартал»") {
		t.Fatal("expected author to be notified of the like")
	}
}

func TestTaskCreateFlow(t *testing.T) {
	h := newHarness(t)
	h.user(1, models.RoleVeteran, 0)
	h.user(2, models.RoleVeteran, 0)

	h.text(1, LabelNewTask)
	h.text(1, "9")
	if d := h.dialogue(1); d == nil || d.Step != stepSelectAssignee || d.Failures != 1 {
		t.Fatalf("expected assignee reprompt, got %+v", d)
	}
	h.text(1, "@user2")
	h.text(1, "Сверить акты")
	h.text(1, LabelSkip)
	h.text(1, "срочно")
	if !h.saw(1, "Выбери приоритет кнопкой") {
		t.Fatal("expected unknown priority to be rejected")
	}
	h.text(1, services.TaskPriorities[2].Label)
	h.text(1, "7")
	if !h.saw(1, "Выбери награду кнопкой") {
		t.Fatal("expected off-list reward to be rejected")
	}
	h.text(1, "10")
	h.text(1, "01.03.2026")
	if !h.saw(1, "Срок не может быть в прошлом") {
		t.Fatal("expected past due date to be rejected")
	}
	h.text(1, "15.03.2026")

	if !strings.HasPrefix(h.last(1).text, "✅ Задача «Сверить акты» поставлена") {
		t.Fatalf("expected creation message, got %q", h.last(1).text)
	}
	notice := h.last(2)
	if !strings.HasPrefix(notice.text, "📥 Новая задача от") || inlineData(notice.kb, "task:done:") == "" {
		t.Fatalf("expected assignee notice with buttons, got %+v", notice)
	}
	tasks, err := h.svc.Tasks.Assigned(context.Background(), 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Priority != models.PriorityHigh || task.RewardCoins != 10 || task.DueDate == nil || task.DueDate.Format(services.DateLayout) != "15.03.2026" {
		t.Fatalf("unexpected task %+v", task)
	}
}
