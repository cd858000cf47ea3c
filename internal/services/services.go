// Package services implements the domain operations of the bot. Each
// operation validates its input, performs one atomic store call and returns
// a typed result. Validation failures are *ValidationError values; refused
// preconditions surface as store sentinels.
package services

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/config"
	"github.com/TheX6/partnerkin-super-bot/internal/ratelimit"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
)

type deps struct {
	store store.Store
	cfg   *config.Config
	now   func() time.Time
	coin  func() bool
	pick  func(n int) int
	log   *slog.Logger

	logins ratelimit.Limiter
}

type Option func(*deps)

func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

// WithCoinFlip replaces the PVP outcome source.
func WithCoinFlip(coin func() bool) Option {
	return func(d *deps) { d.coin = coin }
}

// WithPicker replaces the PVP opponent chooser.
func WithPicker(pick func(n int) int) Option {
	return func(d *deps) { d.pick = pick }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *deps) { d.log = l }
}

// WithLoginLimiter caps admin password attempts per user.
func WithLoginLimiter(l ratelimit.Limiter) Option {
	return func(d *deps) { d.logins = l }
}

// Services groups every domain service.
type Services struct {
	Users        *UserService
	Gifts        *GiftService
	PVP          *PVPService
	Shop         *ShopService
	Courses      *CourseService
	Events       *EventService
	Tasks        *TaskService
	Vacations    *VacationService
	Achievements *AchievementService
	Contacts     *ContactService
	Invoices     *InvoiceService
	Balances     *BalanceService
	Broadcaster  *Broadcaster
	AdminAuth    *AdminAuth
	Clicker      *ClickerService
	Stats        *StatsService
}

func New(st store.Store, cfg *config.Config, opts ...Option) (*Services, error) {
	d := &deps{
		store: st,
		cfg:   cfg,
		now:   time.Now,
		coin:  func() bool { return rand.IntN(2) == 0 },
		pick:  rand.IntN,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logins == nil {
		d.logins = defaultLoginLimiter(cfg, d.now)
	}

	auth, err := newAdminAuth(d)
	if err != nil {
		return nil, err
	}

	return &Services{
		Users:        &UserService{d},
		Gifts:        &GiftService{d},
		PVP:          &PVPService{d},
		Shop:         &ShopService{d},
		Courses:      &CourseService{d},
		Events:       &EventService{d},
		Tasks:        &TaskService{d},
		Vacations:    &VacationService{d},
		Achievements: &AchievementService{d},
		Contacts:     &ContactService{d},
		Invoices:     &InvoiceService{d},
		Balances:     &BalanceService{d},
		Broadcaster:  &Broadcaster{deps: d, limit: 10},
		AdminAuth:    auth,
		Clicker:      &ClickerService{d},
		Stats:        &StatsService{d},
	}, nil
}

const (
	defaultLoginLimit  = 5
	defaultLoginWindow = 15 * time.Minute
)

func defaultLoginLimiter(cfg *config.Config, now func() time.Time) *ratelimit.Memory {
	limit, window := cfg.AdminLoginLimit, cfg.AdminLoginWindow
	if limit <= 0 {
		limit = defaultLoginLimit
	}
	if window <= 0 {
		window = defaultLoginWindow
	}
	return ratelimit.NewMemory(limit, window).WithClock(now)
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
