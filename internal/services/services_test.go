package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/config"
	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"github.com/golang-jwt/jwt/v5"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func testConfig() *config.Config {
	return &config.Config{
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
}

type fixture struct {
	st    *store.Memory
	svc   *Services
	clock *testClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{st: store.NewMemory(), clock: &testClock{t: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}}
	opts = append([]Option{WithClock(f.clock.now)}, opts...)
	svc, err := New(f.st, testConfig(), opts...)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) user(t *testing.T, id int64, username string, coins int64) *models.User {
	t.Helper()
	ctx := context.Background()
	if _, _, err := f.svc.Users.Ensure(ctx, id, username, username); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := f.svc.Users.Register(ctx, id, "hello there"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if coins > 0 {
		if _, err := f.svc.Balances.Add(ctx, id, coins); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	u, _ := f.st.GetUser(ctx, id)
	return u
}

func (f *fixture) coins(t *testing.T, id int64) int64 {
	t.Helper()
	u, err := f.st.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("expected user, got %v", err)
	}
	return u.PCoins
}

func TestGiftScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1, "alice", 50)
	f.user(t, 2, "bob", 0)

	gift, err := f.svc.Gifts.Send(ctx, 1, 2, 30, "thanks")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gift.Message != "thanks" {
		t.Fatalf("expected message kept, got %q", gift.Message)
	}
	if f.coins(t, 1) != 20 || f.coins(t, 2) != 30 {
		t.Fatalf("expected 20/30, got %d/%d", f.coins(t, 1), f.coins(t, 2))
	}

	left, _ := f.svc.Gifts.Remaining(ctx, 1)
	if left != 20 {
		t.Fatalf("expected 20 left today, got %d", left)
	}
	if _, err := f.svc.Gifts.ParseAmount(ctx, 1, "21"); !IsValidation(err) {
		t.Fatalf("expected validation error over remaining cap, got %v", err)
	}
	if _, err := f.svc.Gifts.Send(ctx, 1, 1, 5, ""); !IsValidation(err) {
		t.Fatalf("expected validation error for self gift, got %v", err)
	}
}

func TestResolveUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1, "alice", 0)
	f.user(t, 2, "bob", 0)
	list, _ := f.svc.Users.Others(ctx, 1)

	cases := []struct {
		name    string
		input   string
		want    int64
		invalid bool
	}{
		{"by index", "1", 2, false},
		{"by username", "@Bob", 2, false},
		{"self", "@alice", 0, true},
		{"out of range", "5", 0, true},
		{"unknown", "@nobody", 0, true},
		{"garbage", "abc", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := f.svc.Users.Resolve(ctx, "recipient", tc.input, list, 1)
			if tc.invalid {
				if !IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil || u.TelegramID != tc.want {
				t.Fatalf("expected user %d, got %+v %v", tc.want, u, err)
			}
		})
	}
}

func TestEventBookingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot, err := f.svc.Events.Create(ctx, SlotDraft{
		Category: EventCategories[0], Date: "05.03.2026", Time: "09:00",
		Location: "Офис", MaxParticipants: 2, PointsReward: 5,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if slot.EventName != EventCategories[0] {
		t.Fatalf("expected name to default to category, got %q", slot.EventName)
	}

	for _, id := range []int64{1, 2} {
		if _, err := f.svc.Events.Book(ctx, id, slot.ID); err != nil {
			t.Fatalf("user %d: expected no error, got %v", id, err)
		}
	}
	_, err = f.svc.Events.Book(ctx, 3, slot.ID)
	if !errors.Is(err, store.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if msg, ok := UserMessage(err); !ok || msg == "" {
		t.Fatal("expected a user-facing capacity message")
	}
	got, _ := f.svc.Events.Get(ctx, slot.ID)
	if got.CurrentParticipants != 2 {
		t.Fatalf("expected occupancy 2, got %d", got.CurrentParticipants)
	}
}

func TestCreateSlotValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := SlotDraft{Category: EventCategories[1], Date: "05.03.2026", Time: "09:00", MaxParticipants: 10, PointsReward: 5}

	cases := []struct {
		name string
		edit func(d *SlotDraft)
	}{
		{"bad date", func(d *SlotDraft) { d.Date = "2026-03-05" }},
		{"impossible date", func(d *SlotDraft) { d.Date = "31.02.2026" }},
		{"bad time", func(d *SlotDraft) { d.Time = "25:00" }},
		{"capacity zero", func(d *SlotDraft) { d.MaxParticipants = 0 }},
		{"reward too high", func(d *SlotDraft) { d.PointsReward = 101 }},
		{"unknown category", func(d *SlotDraft) { d.Category = "Бокс" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := base
			tc.edit(&d)
			if _, err := f.svc.Events.Create(ctx, d); !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestVacationScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, _ := f.svc.Vacations.ParseStart("01.06.2026")
	end, err := f.svc.Vacations.ParseEnd(start, "10.06.2026")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	req, bal, err := f.svc.Vacations.Request(ctx, VacationDraft{UserID: 1, Start: start, End: end, Type: "Ежегодный"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.DaysCount != 10 {
		t.Fatalf("expected 10 days, got %d", req.DaysCount)
	}
	if bal.TotalDays != 28 || bal.UsedDays != 0 || bal.PendingDays != 10 || bal.RemainingDays != 18 {
		t.Fatalf("expected {28,0,10,18}, got %+v", bal)
	}

	if _, err := f.svc.Vacations.Approve(ctx, req.ID, 99); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	bal, _ = f.svc.Vacations.Balance(ctx, 1)
	if bal.UsedDays != 10 || bal.PendingDays != 0 || bal.RemainingDays != 18 {
		t.Fatalf("expected {28,10,0,18}, got %+v", bal)
	}

	if _, err := f.svc.Vacations.Approve(ctx, req.ID, 99); !errors.Is(err, store.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	again, _ := f.svc.Vacations.Balance(ctx, 1)
	if again.UsedDays != bal.UsedDays || again.PendingDays != bal.PendingDays || again.RemainingDays != bal.RemainingDays {
		t.Fatalf("expected balance unchanged, got %+v", again)
	}
}

func TestVacationDateValidation(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Vacations.ParseStart("01.01.2026"); !IsValidation(err) {
		t.Fatalf("expected past start to be refused, got %v", err)
	}
	start, _ := f.svc.Vacations.ParseStart("10.06.2026")
	if _, err := f.svc.Vacations.ParseEnd(start, "10.06.2026"); !IsValidation(err) {
		t.Fatalf("expected end equal to start to be refused, got %v", err)
	}
	if _, err := f.svc.Vacations.ParseType("Декрет"); !IsValidation(err) {
		t.Fatalf("expected unknown type to be refused, got %v", err)
	}
}

func TestSubmissionRejectScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, 1, "intern", 0)

	sub, err := f.svc.Courses.Submit(ctx, u, "company", 85, "photo-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	rejected, err := f.svc.Courses.Reject(ctx, sub.ID, 99, "blurry screenshot")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rejected.Status != models.StatusRejected || rejected.ReviewComment != "blurry screenshot" {
		t.Fatalf("unexpected submission: %+v", rejected)
	}
	if f.coins(t, 1) != 0 {
		t.Fatalf("expected balance unchanged, got %d", f.coins(t, 1))
	}
	if progress, _ := f.st.ListProgress(ctx, 1); len(progress) != 0 {
		t.Fatalf("expected no progress rows, got %+v", progress)
	}

	again, err := f.svc.Courses.Submit(ctx, u, "company", 85, "photo-2")
	if err != nil {
		t.Fatalf("expected resubmission to be allowed, got %v", err)
	}
	if again.ID == sub.ID || again.Status != models.StatusPending {
		t.Fatalf("expected an independent pending submission, got %+v", again)
	}
}

func TestApproveGraduates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, 1, "intern", 0)

	var last *Approval
	for _, c := range f.svc.Courses.Courses() {
		sub, err := f.svc.Courses.Submit(ctx, u, c.Key, 10, "photo")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		last, err = f.svc.Courses.Approve(ctx, sub.ID, 99)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if last.Graduated != (last.Completed == 4) {
			t.Fatalf("unexpected graduation flag at %d completed", last.Completed)
		}
	}
	if !last.Graduated || f.coins(t, 1) != 40 {
		t.Fatalf("expected graduation with 40 coins, got %+v %d", last, f.coins(t, 1))
	}
	if _, err := f.svc.Courses.Approve(ctx, last.Submission.ID, 99); !errors.Is(err, store.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if err := f.svc.Users.Graduate(ctx, 1); err != nil {
		t.Fatalf("expected graduation to succeed, got %v", err)
	}
	got, _ := f.st.GetUser(ctx, 1)
	if got.Role != models.RoleVeteran {
		t.Fatalf("expected veteran, got %s", got.Role)
	}
	if _, err := f.svc.Courses.Certificate(ctx, got, false); err != nil {
		t.Fatalf("expected certificate, got %v", err)
	}
}

func TestPVPScenario(t *testing.T) {
	for _, won := range []bool{true, false} {
		t.Run(map[bool]string{true: "attacker wins", false: "attacker loses"}[won], func(t *testing.T) {
			f := newFixture(t, WithCoinFlip(func() bool { return won }), WithPicker(func(int) int { return 0 }))
			ctx := context.Background()
			f.user(t, 1, "attacker", 50)
			f.user(t, 2, "defender", 50)

			res, err := f.svc.PVP.Fight(ctx, 1)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if res.Opponent.TelegramID != 2 || res.Won != won {
				t.Fatalf("unexpected result: %+v", res)
			}
			a, d := f.coins(t, 1), f.coins(t, 2)
			if a+d != 100 {
				t.Fatalf("expected net-zero transfer, got %d+%d", a, d)
			}
			wantA := int64(40)
			if won {
				wantA = 60
			}
			if a != wantA {
				t.Fatalf("expected attacker %d, got %d", wantA, a)
			}
			attacker, _ := f.st.GetUser(ctx, 1)
			defender, _ := f.st.GetUser(ctx, 2)
			if attacker.Energy != 80 || defender.Energy != 100 {
				t.Fatalf("expected energy 80/100, got %d/%d", attacker.Energy, defender.Energy)
			}
			st, _ := f.st.Stats(ctx)
			if st.Battles != 1 {
				t.Fatalf("expected exactly one battle row, got %d", st.Battles)
			}
		})
	}
}

func TestPVPPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1, "poor", 5)
	f.user(t, 2, "rich", 50)

	if _, err := f.svc.PVP.Fight(ctx, 1); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := f.svc.PVP.Fight(ctx, 2); !errors.Is(err, ErrNoOpponent) {
		t.Fatalf("expected ErrNoOpponent when nobody can cover the stake, got %v", err)
	}
}

func TestShopBuy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1, "buyer", 60)

	_, balance, err := f.svc.Shop.Buy(ctx, 1, "merch")
	if err != nil || balance != 10 {
		t.Fatalf("expected balance 10, got %d %v", balance, err)
	}
	if _, _, err := f.svc.Shop.Buy(ctx, 1, "coffee"); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, _, err := f.svc.Shop.Buy(ctx, 1, "yacht"); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1, "boss", 0)
	f.user(t, 2, "worker", 0)

	if _, err := f.svc.Tasks.ParseReward("7"); !IsValidation(err) {
		t.Fatalf("expected reward outside the set to be refused, got %v", err)
	}
	task, err := f.svc.Tasks.Create(ctx, TaskDraft{CreatorID: 1, AssigneeID: 2, Title: "Отчет", Priority: models.PriorityHigh, Reward: 20})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := f.svc.Tasks.Complete(ctx, task.ID, 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := f.svc.Tasks.Complete(ctx, task.ID, 2); !errors.Is(err, store.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if f.coins(t, 2) != 20 {
		t.Fatalf("expected reward paid once, got %d", f.coins(t, 2))
	}
}

func TestContactEmailValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Contacts.ValidateEmail("not-an-email"); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Contacts.Create(ctx, 1, ContactDraft{CompanyName: "Acme", Email: "bad"}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Contacts.Create(ctx, 1, ContactDraft{CompanyName: "Acme Corp", Email: "a@acme.io"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	found, _ := f.svc.Contacts.Search(ctx, "acme")
	if len(found) != 1 {
		t.Fatalf("expected case-insensitive match, got %d", len(found))
	}
}

func TestInvoiceIssue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := InvoiceDraft{CompanyName: "Acme", OrgAddress: "Moscow", WorkType: "Dev", Quantity: 3, UnitAmount: 0.1}

	if draft.Total() != 0.3 {
		t.Fatalf("expected 0.3, got %v", draft.Total())
	}
	inv, doc, err := f.svc.Invoices.Issue(ctx, 1, draft)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if inv.InvoiceNumber != 1 || doc.Name != "invoice_1.html" {
		t.Fatalf("unexpected invoice %d %s", inv.InvoiceNumber, doc.Name)
	}
	stored, err := f.st.ListInvoices(ctx, 1)
	if err != nil || len(stored) != 1 {
		t.Fatalf("expected one stored invoice, got %v (%v)", stored, err)
	}
	if stored[0].FileName != doc.Name {
		t.Fatalf("expected stored file name %q, got %q", doc.Name, stored[0].FileName)
	}
	if _, err := f.svc.Invoices.ParseQuantity("0"); !IsValidation(err) {
		t.Fatalf("expected quantity 0 to be refused, got %v", err)
	}
}

func TestInvoiceAmountMustBeFinite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, raw := range []string{"-5", "0", "NaN", "nan", "Inf", "-Inf", "+Inf", "1e308", "100000000.01", "abc"} {
		if _, err := f.svc.Invoices.ParseUnitAmount(raw); !IsValidation(err) {
			t.Fatalf("expected %q to be refused, got %v", raw, err)
		}
	}
	if v, err := f.svc.Invoices.ParseUnitAmount("1500,50"); err != nil || v != 1500.5 {
		t.Fatalf("expected 1500.5, got %v (%v)", v, err)
	}

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e308} {
		draft := InvoiceDraft{CompanyName: "Acme", Quantity: 1, UnitAmount: amount}
		if _, _, err := f.svc.Invoices.Issue(ctx, 1, draft); !IsValidation(err) {
			t.Fatalf("expected amount %v to be refused, got %v", amount, err)
		}
	}
	if stored, _ := f.st.ListInvoices(ctx, 0); len(stored) != 0 {
		t.Fatalf("expected no invoices, got %d", len(stored))
	}
}

func TestBroadcastFanoutCountsFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report := f.svc.Broadcaster.Fanout(ctx, []int64{1, 2, 3, 4}, func(_ context.Context, id int64) error {
		if id%2 == 0 {
			return errors.New("blocked")
		}
		return nil
	})
	if report.Sent != 2 || report.Failed != 2 {
		t.Fatalf("expected 2 sent and 2 failed, got %+v", report)
	}
	if err := f.svc.Broadcaster.Record(ctx, 9, TargetAll, "hi", nil, report); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestBroadcastRecipients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1, "admin", 0)
	f.user(t, 2, "intern", 0)
	f.user(t, 3, "vet", 0)
	_ = f.svc.Users.ChooseRole(ctx, 3, models.RoleVeteran)

	all, _ := f.svc.Broadcaster.Recipients(ctx, TargetAll, 1, 0)
	vets, _ := f.svc.Broadcaster.Recipients(ctx, TargetVeterans, 1, 0)
	if len(all) != 2 || len(vets) != 1 || vets[0] != 3 {
		t.Fatalf("unexpected recipients: all=%v vets=%v", all, vets)
	}
}

func TestAdminSessionNeedsBothChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := f.svc.AdminAuth

	if _, err := auth.Login(ctx, 1, "root", "wrong"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword, got %v", err)
	}
	sess, err := auth.Login(ctx, 1, "root", "Sup3r$ecret")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok, _ := auth.IsAdmin(ctx, 1); !ok {
		t.Fatal("expected login to grant admin")
	}
	if err := auth.Verify(1, sess.Token); err != nil {
		t.Fatalf("expected valid session, got %v", err)
	}

	t.Run("token without registry entry", func(t *testing.T) {
		auth.mu.Lock()
		saved := auth.sessions[1]
		delete(auth.sessions, 1)
		auth.mu.Unlock()
		defer func() {
			auth.mu.Lock()
			auth.sessions[1] = saved
			auth.mu.Unlock()
		}()
		if err := auth.Verify(1, sess.Token); !errors.Is(err, ErrSessionInvalid) {
			t.Fatalf("expected ErrSessionInvalid, got %v", err)
		}
	})

	t.Run("registry entry with undecodable token", func(t *testing.T) {
		forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(f.clock.t.Add(time.Hour)),
		}).SignedString([]byte("other-secret"))
		auth.mu.Lock()
		saved := auth.sessions[1]
		auth.sessions[1] = adminSession{ID: saved.ID, Token: forged, ExpiresAt: saved.ExpiresAt}
		auth.mu.Unlock()
		defer func() {
			auth.mu.Lock()
			auth.sessions[1] = saved
			auth.mu.Unlock()
		}()
		if err := auth.Verify(1, forged); !errors.Is(err, ErrSessionInvalid) {
			t.Fatalf("expected ErrSessionInvalid, got %v", err)
		}
	})

	t.Run("other user's token", func(t *testing.T) {
		if err := auth.Verify(2, sess.Token); !errors.Is(err, ErrSessionInvalid) {
			t.Fatalf("expected ErrSessionInvalid, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		f.clock.t = f.clock.t.Add(2 * time.Hour)
		if err := auth.VerifyActive(1); !errors.Is(err, ErrSessionInvalid) {
			t.Fatalf("expected ErrSessionInvalid, got %v", err)
		}
		if n := auth.Sweep(); n != 0 {
			t.Fatalf("expected expired session already dropped by Verify, got %d", n)
		}
	})
}

func TestAdminPersonalPasswordWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.AdminAuth.SetPassword(ctx, 5, "Personal#1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := f.svc.AdminAuth.Login(ctx, 5, "", "Sup3r$ecret"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected fallback password to be ignored, got %v", err)
	}
	if _, err := f.svc.AdminAuth.Login(ctx, 5, "", "Personal#1"); err != nil {
		t.Fatalf("expected personal password to work, got %v", err)
	}
}

func TestAdminLoginLockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < defaultLoginLimit; i++ {
		if _, err := f.svc.AdminAuth.Login(ctx, 1, "", "wrong"); !errors.Is(err, ErrBadPassword) {
			t.Fatalf("attempt %d: expected ErrBadPassword, got %v", i+1, err)
		}
	}
	if _, err := f.svc.AdminAuth.Login(ctx, 1, "", "Sup3r$ecret"); !errors.Is(err, ErrLoginLocked) {
		t.Fatalf("expected the right password to be refused while locked, got %v", err)
	}
	if ok, _ := f.svc.AdminAuth.IsAdmin(ctx, 1); ok {
		t.Fatal("expected no grant while locked")
	}
	if _, err := f.svc.AdminAuth.Login(ctx, 2, "", "Sup3r$ecret"); err != nil {
		t.Fatalf("expected other users unaffected, got %v", err)
	}

	f.clock.t = f.clock.t.Add(defaultLoginWindow)
	if _, err := f.svc.AdminAuth.Login(ctx, 1, "", "Sup3r$ecret"); err != nil {
		t.Fatalf("expected login after the window, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	if _, ok := UserMessage(errors.New("db down")); ok {
		t.Fatal("expected internal errors to have no user message")
	}
	msg, ok := UserMessage(invalid("amount", "Нужно ввести целое число"))
	if !ok || msg != "❌ Нужно ввести целое число" {
		t.Fatalf("unexpected message %q", msg)
	}
}
