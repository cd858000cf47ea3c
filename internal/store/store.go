// Package store holds the persistence contracts of the bot and their two
// implementations: Gorm for PostgreSQL and Memory for local runs and tests.
// Every money, capacity and status transition is a single atomic operation
// here; callers never read-then-write across two calls.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrInsufficientFunds  = errors.New("insufficient coins")
	ErrInsufficientEnergy = errors.New("insufficient energy")
	ErrInsufficientDays   = errors.New("insufficient vacation days")
	ErrGiftCapExceeded    = errors.New("daily gift cap exceeded")
	ErrAlreadyProcessed   = errors.New("already processed")
	ErrAlreadyBooked      = errors.New("slot already booked by user")
	ErrCapacityExceeded   = errors.New("slot is full")
	ErrSlotInactive       = errors.New("slot is not active")
)

// UserFilter narrows ListUsers.
type UserFilter struct {
	Role           string
	RegisteredOnly bool
	ExcludeID      int64
	MinCoins       int64
}

type Users interface {
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	// EnsureUser creates the user on first contact and refreshes names and
	// last activity otherwise. created reports whether a row was inserted.
	EnsureUser(ctx context.Context, telegramID int64, username, fullName string, defaultEnergy int, at time.Time) (user *models.User, created bool, err error)
	SetRole(ctx context.Context, telegramID int64, role string) error
	CompleteRegistration(ctx context.Context, telegramID int64, profile string) error
	SetPresence(ctx context.Context, telegramID int64, status string) error
	SetStatusMessage(ctx context.Context, telegramID int64, message string) error
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	CreditCoins(ctx context.Context, telegramID int64, amount int64) (int64, error)
	// DebitCoins subtracts amount only if the balance covers it.
	DebitCoins(ctx context.Context, telegramID int64, amount int64) (int64, error)
}

type Admins interface {
	IsAdmin(ctx context.Context, telegramID int64) (bool, error)
	GrantAdmin(ctx context.Context, telegramID int64, username string) error
	RevokeAdmin(ctx context.Context, telegramID int64) error
	ListAdmins(ctx context.Context) ([]models.AdminGrant, error)
	GetAdminPasswordHash(ctx context.Context, telegramID int64) (string, error)
	SetAdminPasswordHash(ctx context.Context, telegramID int64, hash string) error
}

type Gifts interface {
	// CreateGift debits the sender, credits the receiver and records the gift
	// in one step, refusing when the sender's gifts since dayStart plus this
	// one would exceed dailyCap.
	CreateGift(ctx context.Context, gift *models.Gift, dailyCap int64, dayStart time.Time) error
	GiftedSince(ctx context.Context, senderID int64, since time.Time) (int64, error)
}

type Battles interface {
	// RecordBattle spends the attacker's energy, moves the stake from loser
	// to winner and stores the battle row.
	RecordBattle(ctx context.Context, battle *models.Battle, energyCost int) error
}

type Shop interface {
	Purchase(ctx context.Context, purchase *models.Purchase) error
}

type Courses interface {
	CreateSubmission(ctx context.Context, sub *models.TestSubmission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*models.TestSubmission, error)
	ListSubmissions(ctx context.Context, status string) ([]models.TestSubmission, error)
	ApproveSubmission(ctx context.Context, id uuid.UUID, reviewerID int64, at time.Time) (*models.TestSubmission, error)
	RejectSubmission(ctx context.Context, id uuid.UUID, reviewerID int64, comment string, at time.Time) (*models.TestSubmission, error)
	ListProgress(ctx context.Context, userID int64) ([]models.InternProgress, error)
}

type Events interface {
	CreateSlot(ctx context.Context, slot *models.EventSlot) error
	GetSlot(ctx context.Context, id uuid.UUID) (*models.EventSlot, error)
	ListActiveSlots(ctx context.Context) ([]models.EventSlot, error)
	UpdateSlot(ctx context.Context, id uuid.UUID, field string, value interface{}) error
	DeleteSlot(ctx context.Context, id uuid.UUID) error
	BookSlot(ctx context.Context, userID int64, slotID uuid.UUID, at time.Time) (*models.EventSlot, error)
	ListUserBookings(ctx context.Context, userID int64) ([]models.EventSlot, error)
	CountBookings(ctx context.Context, slotID uuid.UUID) (int, error)
}

type Tasks interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListAssignedTasks(ctx context.Context, assigneeID int64, status string) ([]models.Task, error)
	ListCreatedTasks(ctx context.Context, creatorID int64) ([]models.Task, error)
	CompleteTask(ctx context.Context, id uuid.UUID, assigneeID int64, at time.Time) (*models.Task, error)
	PostponeTask(ctx context.Context, id uuid.UUID, assigneeID int64, until time.Time) (*models.Task, error)
	CancelTask(ctx context.Context, id uuid.UUID, actorID int64, reason string) (*models.Task, error)
}

type Vacations interface {
	EnsureVacationBalance(ctx context.Context, userID int64, year, totalDays int) (*models.VacationBalance, error)
	CreateVacationRequest(ctx context.Context, req *models.VacationRequest, totalDays int) (*models.VacationBalance, error)
	GetVacationRequest(ctx context.Context, id uuid.UUID) (*models.VacationRequest, error)
	ListVacationRequests(ctx context.Context, userID int64, status string) ([]models.VacationRequest, error)
	ApproveVacation(ctx context.Context, id uuid.UUID, reviewerID int64, comment string, at time.Time) (*models.VacationRequest, error)
	RejectVacation(ctx context.Context, id uuid.UUID, reviewerID int64, comment string, at time.Time) (*models.VacationRequest, error)
}

type Achievements interface {
	CreateAchievement(ctx context.Context, a *models.Achievement) error
	GetAchievement(ctx context.Context, id uuid.UUID) (*models.Achievement, error)
	ListAchievements(ctx context.Context, limit int) ([]models.Achievement, error)
	// LikeAchievement reports false when the user already liked it.
	LikeAchievement(ctx context.Context, achievementID uuid.UUID, userID int64, at time.Time) (bool, error)
	CountLikes(ctx context.Context, achievementID uuid.UUID) (int, error)
	AddAchievementComment(ctx context.Context, c *models.AchievementComment) error
}

type Contacts interface {
	CreateContact(ctx context.Context, c *models.CompanyContact) error
	SearchContacts(ctx context.Context, companySubstring string, limit int) ([]models.CompanyContact, error)
	ListContacts(ctx context.Context, limit int) ([]models.CompanyContact, error)
}

type Invoices interface {
	// CreateInvoice assigns the next invoice number and inserts the row.
	// fileName, when set, names the rendered document for that number.
	CreateInvoice(ctx context.Context, inv *models.Invoice, fileName func(number int) string) error
	ListInvoices(ctx context.Context, limit int) ([]models.Invoice, error)
}

type Broadcasts interface {
	CreateBroadcast(ctx context.Context, b *models.Broadcast) error
}

type Clicker interface {
	// Tap spends one energy point for one coin.
	Tap(ctx context.Context, telegramID int64, at time.Time) (*models.User, error)
	RestoreEnergy(ctx context.Context, amount, max int) (int64, error)
}

// Stats is an aggregate snapshot for the admin panel.
type Stats struct {
	Users              int64
	RegisteredUsers    int64
	Interns            int64
	Veterans           int64
	TotalCoins         int64
	PendingSubmissions int64
	PendingVacations   int64
	ActiveSlots        int64
	OpenTasks          int64
	Gifts              int64
	Battles            int64
	TotalClicks        int64
}

type StatsStore interface {
	Stats(ctx context.Context) (*Stats, error)
	// ResetStats refills energy and clears clicker and energy history.
	ResetStats(ctx context.Context, energyMax int) error
}

// Store is the full persistence surface used by the bot.
type Store interface {
	Users
	Admins
	Gifts
	Battles
	Shop
	Courses
	Events
	Tasks
	Vacations
	Achievements
	Contacts
	Invoices
	Broadcasts
	Clicker
	StatsStore
}

// Editable event slot columns for UpdateSlot.
var SlotFields = map[string]bool{
	"event_name":       true,
	"category":         true,
	"date":             true,
	"time":             true,
	"location":         true,
	"max_participants": true,
	"points_reward":    true,
	"status":           true,
}
