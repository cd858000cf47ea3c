package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/google/uuid"
)

// Memory is an in-process Store. A single mutex serializes every operation,
// which gives each method the same all-or-nothing behavior as a database
// transaction in the Gorm implementation.
type Memory struct {
	mu sync.Mutex

	users       map[int64]*models.User
	admins      map[int64]models.AdminGrant
	adminHashes map[int64]string

	gifts      []models.Gift
	battles    []models.Battle
	purchases  []models.Purchase
	energyLogs []models.EnergyLog
	clicks     map[int64]*models.ClickerStat

	submissions []*models.TestSubmission
	progress    []*models.InternProgress

	slots    []*models.EventSlot
	bookings []models.EventBooking

	tasks []*models.Task

	balances  []*models.VacationBalance
	vacations []*models.VacationRequest

	achievements []*models.Achievement
	likes        []models.AchievementLike
	comments     []models.AchievementComment

	contacts   []models.CompanyContact
	invoices   []models.Invoice
	broadcasts []models.Broadcast
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:       make(map[int64]*models.User),
		admins:      make(map[int64]models.AdminGrant),
		adminHashes: make(map[int64]string),
		clicks:      make(map[int64]*models.ClickerStat),
	}
}

func stamp(id *uuid.UUID, createdAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now()
	}
}

// --- users ---

func (m *Memory) GetUser(_ context.Context, telegramID int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	username = strings.TrimPrefix(username, "@")
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) EnsureUser(_ context.Context, telegramID int64, username, fullName string, defaultEnergy int, at time.Time) (*models.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[telegramID]; ok {
		if username != "" {
			u.Username = username
		}
		if fullName != "" && !u.IsRegistered {
			u.FullName = fullName
		}
		u.LastActivity = at
		u.UpdatedAt = at
		cp := *u
		return &cp, false, nil
	}
	u := &models.User{
		ID:           uuid.New(),
		TelegramID:   telegramID,
		Username:     username,
		FullName:     fullName,
		Role:         models.RoleIntern,
		Energy:       defaultEnergy,
		Status:       models.PresenceOffline,
		LastActivity: at,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	m.users[telegramID] = u
	cp := *u
	return &cp, true, nil
}

func (m *Memory) withUser(telegramID int64, fn func(u *models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	if !ok {
		return ErrNotFound
	}
	fn(u)
	return nil
}

func (m *Memory) SetRole(_ context.Context, telegramID int64, role string) error {
	return m.withUser(telegramID, func(u *models.User) { u.Role = role })
}

func (m *Memory) CompleteRegistration(_ context.Context, telegramID int64, profile string) error {
	return m.withUser(telegramID, func(u *models.User) {
		u.Profile = profile
		u.IsRegistered = true
	})
}

func (m *Memory) SetPresence(_ context.Context, telegramID int64, status string) error {
	return m.withUser(telegramID, func(u *models.User) { u.Status = status })
}

func (m *Memory) SetStatusMessage(_ context.Context, telegramID int64, message string) error {
	return m.withUser(telegramID, func(u *models.User) { u.StatusMessage = message })
}

func (m *Memory) ListUsers(_ context.Context, f UserFilter) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.RegisteredOnly && !u.IsRegistered {
			continue
		}
		if f.ExcludeID != 0 && u.TelegramID == f.ExcludeID {
			continue
		}
		if u.PCoins < f.MinCoins {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out, nil
}

func (m *Memory) CreditCoins(_ context.Context, telegramID int64, amount int64) (int64, error) {
	var balance int64
	err := m.withUser(telegramID, func(u *models.User) {
		u.PCoins += amount
		balance = u.PCoins
	})
	return balance, err
}

func (m *Memory) DebitCoins(_ context.Context, telegramID int64, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	if !ok {
		return 0, ErrNotFound
	}
	if u.PCoins < amount {
		return u.PCoins, ErrInsufficientFunds
	}
	u.PCoins -= amount
	return u.PCoins, nil
}

// --- admins ---

func (m *Memory) IsAdmin(_ context.Context, telegramID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.admins[telegramID]
	return ok, nil
}

func (m *Memory) GrantAdmin(_ context.Context, telegramID int64, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.admins[telegramID]
	if !ok {
		g = models.AdminGrant{ID: uuid.New(), TelegramID: telegramID, CreatedAt: time.Now()}
	}
	g.Username = username
	m.admins[telegramID] = g
	return nil
}

func (m *Memory) RevokeAdmin(_ context.Context, telegramID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.admins, telegramID)
	return nil
}

func (m *Memory) ListAdmins(_ context.Context) ([]models.AdminGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AdminGrant, 0, len(m.admins))
	for _, g := range m.admins {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out, nil
}

func (m *Memory) GetAdminPasswordHash(_ context.Context, telegramID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.adminHashes[telegramID]
	if !ok {
		return "", ErrNotFound
	}
	return h, nil
}

func (m *Memory) SetAdminPasswordHash(_ context.Context, telegramID int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminHashes[telegramID] = hash
	return nil
}

// --- gifts, battles, shop ---

func (m *Memory) giftedSinceLocked(senderID int64, since time.Time) int64 {
	var total int64
	for _, g := range m.gifts {
		if g.SenderID == senderID && !g.CreatedAt.Before(since) {
			total += g.Amount
		}
	}
	return total
}

func (m *Memory) CreateGift(_ context.Context, gift *models.Gift, dailyCap int64, dayStart time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sender, ok := m.users[gift.SenderID]
	if !ok {
		return ErrNotFound
	}
	receiver, ok := m.users[gift.ReceiverID]
	if !ok {
		return ErrNotFound
	}
	if m.giftedSinceLocked(gift.SenderID, dayStart)+gift.Amount > dailyCap {
		return ErrGiftCapExceeded
	}
	if sender.PCoins < gift.Amount {
		return ErrInsufficientFunds
	}
	sender.PCoins -= gift.Amount
	receiver.PCoins += gift.Amount
	stamp(&gift.ID, &gift.CreatedAt)
	m.gifts = append(m.gifts, *gift)
	return nil
}

func (m *Memory) GiftedSince(_ context.Context, senderID int64, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.giftedSinceLocked(senderID, since), nil
}

func (m *Memory) RecordBattle(_ context.Context, b *models.Battle, energyCost int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	attacker, ok := m.users[b.AttackerID]
	if !ok {
		return ErrNotFound
	}
	defender, ok := m.users[b.DefenderID]
	if !ok {
		return ErrNotFound
	}
	winner, loser := attacker, defender
	if b.WinnerID == b.DefenderID {
		winner, loser = defender, attacker
	}
	if attacker.Energy < energyCost {
		return ErrInsufficientEnergy
	}
	if loser.PCoins < b.PointsWon {
		return ErrInsufficientFunds
	}
	attacker.Energy -= energyCost
	loser.PCoins -= b.PointsWon
	winner.PCoins += b.PointsWon
	stamp(&b.ID, &b.CreatedAt)
	m.battles = append(m.battles, *b)
	m.energyLogs = append(m.energyLogs, models.EnergyLog{
		ID: uuid.New(), UserID: b.AttackerID, Action: "pvp", Delta: -energyCost, CreatedAt: b.CreatedAt,
	})
	return nil
}

func (m *Memory) Purchase(_ context.Context, p *models.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[p.UserID]
	if !ok {
		return ErrNotFound
	}
	if u.PCoins < p.Price {
		return ErrInsufficientFunds
	}
	u.PCoins -= p.Price
	stamp(&p.ID, &p.CreatedAt)
	m.purchases = append(m.purchases, *p)
	return nil
}

// --- courses ---

func (m *Memory) CreateSubmission(_ context.Context, sub *models.TestSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&sub.ID, &sub.CreatedAt)
	if sub.Status == "" {
		sub.Status = models.StatusPending
	}
	cp := *sub
	m.submissions = append(m.submissions, &cp)
	return nil
}

func (m *Memory) findSubmission(id uuid.UUID) *models.TestSubmission {
	for _, s := range m.submissions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (m *Memory) GetSubmission(_ context.Context, id uuid.UUID) (*models.TestSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findSubmission(id)
	if s == nil {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) ListSubmissions(_ context.Context, status string) ([]models.TestSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TestSubmission
	for _, s := range m.submissions {
		if status == "" || s.Status == status {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *Memory) reviewSubmission(id uuid.UUID, status string, reviewerID int64, comment string, at time.Time) (*models.TestSubmission, error) {
	s := m.findSubmission(id)
	if s == nil {
		return nil, ErrNotFound
	}
	if s.Status != models.StatusPending {
		return nil, ErrAlreadyProcessed
	}
	s.Status = status
	s.ReviewerID = &reviewerID
	s.ReviewComment = comment
	s.ReviewedAt = &at
	return s, nil
}

func (m *Memory) ApproveSubmission(_ context.Context, id uuid.UUID, reviewerID int64, at time.Time) (*models.TestSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findSubmission(id)
	if s != nil && s.Status == models.StatusPending {
		if _, ok := m.users[s.UserID]; !ok {
			return nil, ErrNotFound
		}
	}
	s, err := m.reviewSubmission(id, models.StatusApproved, reviewerID, "", at)
	if err != nil {
		return nil, err
	}
	m.users[s.UserID].PCoins += s.PointsClaimed

	var row *models.InternProgress
	for _, p := range m.progress {
		if p.UserID == s.UserID && p.TestName == s.TestName {
			row = p
			break
		}
	}
	if row == nil {
		row = &models.InternProgress{ID: uuid.New(), UserID: s.UserID, TestName: s.TestName}
		m.progress = append(m.progress, row)
	}
	row.Completed = true
	row.PointsEarned += s.PointsClaimed
	row.CompletedAt = at

	cp := *s
	return &cp, nil
}

func (m *Memory) RejectSubmission(_ context.Context, id uuid.UUID, reviewerID int64, comment string, at time.Time) (*models.TestSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.reviewSubmission(id, models.StatusRejected, reviewerID, comment, at)
	if err != nil {
		return nil, err
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) ListProgress(_ context.Context, userID int64) ([]models.InternProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.InternProgress
	for _, p := range m.progress {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// --- events ---

func (m *Memory) CreateSlot(_ context.Context, slot *models.EventSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&slot.ID, &slot.CreatedAt)
	if slot.Status == "" {
		slot.Status = models.SlotActive
	}
	cp := *slot
	m.slots = append(m.slots, &cp)
	return nil
}

func (m *Memory) findSlot(id uuid.UUID) *models.EventSlot {
	for _, s := range m.slots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (m *Memory) GetSlot(_ context.Context, id uuid.UUID) (*models.EventSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findSlot(id)
	if s == nil {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) ListActiveSlots(_ context.Context) ([]models.EventSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EventSlot
	for _, s := range m.slots {
		if s.Status == models.SlotActive {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return slotKey(out[i]) < slotKey(out[j]) })
	return out, nil
}

// slotKey orders DD.MM.YYYY HH:MM chronologically.
func slotKey(s models.EventSlot) string {
	if len(s.Date) == 10 {
		return s.Date[6:] + s.Date[3:5] + s.Date[:2] + s.Time
	}
	return s.Date + s.Time
}

func (m *Memory) UpdateSlot(_ context.Context, id uuid.UUID, field string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findSlot(id)
	if s == nil {
		return ErrNotFound
	}
	switch field {
	case "event_name":
		s.EventName, _ = value.(string)
	case "category":
		s.Category, _ = value.(string)
	case "date":
		s.Date, _ = value.(string)
	case "time":
		s.Time, _ = value.(string)
	case "location":
		s.Location, _ = value.(string)
	case "max_participants":
		n, _ := value.(int)
		if n < s.CurrentParticipants {
			return ErrCapacityExceeded
		}
		s.MaxParticipants = n
	case "points_reward":
		s.PointsReward, _ = value.(int64)
	case "status":
		s.Status, _ = value.(string)
	default:
		return ErrNotFound
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) DeleteSlot(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, s := range m.slots {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	m.slots = append(m.slots[:idx], m.slots[idx+1:]...)
	kept := m.bookings[:0]
	for _, b := range m.bookings {
		if b.SlotID != id {
			kept = append(kept, b)
		}
	}
	m.bookings = kept
	return nil
}

func (m *Memory) BookSlot(_ context.Context, userID int64, slotID uuid.UUID, at time.Time) (*models.EventSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findSlot(slotID)
	if s == nil {
		return nil, ErrNotFound
	}
	for _, b := range m.bookings {
		if b.UserID == userID && b.SlotID == slotID {
			return nil, ErrAlreadyBooked
		}
	}
	if s.Status != models.SlotActive {
		return nil, ErrSlotInactive
	}
	if s.CurrentParticipants >= s.MaxParticipants {
		return nil, ErrCapacityExceeded
	}
	s.CurrentParticipants++
	m.bookings = append(m.bookings, models.EventBooking{ID: uuid.New(), UserID: userID, SlotID: slotID, CreatedAt: at})
	cp := *s
	return &cp, nil
}

func (m *Memory) ListUserBookings(_ context.Context, userID int64) ([]models.EventSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EventSlot
	for _, b := range m.bookings {
		if b.UserID != userID {
			continue
		}
		if s := m.findSlot(b.SlotID); s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *Memory) CountBookings(_ context.Context, slotID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bookings {
		if b.SlotID == slotID {
			n++
		}
	}
	return n, nil
}

// --- tasks ---

func (m *Memory) CreateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&t.ID, &t.CreatedAt)
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	cp := *t
	m.tasks = append(m.tasks, &cp)
	return nil
}

func (m *Memory) findTask(id uuid.UUID) *models.Task {
	for _, t := range m.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (m *Memory) GetTask(_ context.Context, id uuid.UUID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.findTask(id)
	if t == nil {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) ListAssignedTasks(_ context.Context, assigneeID int64, status string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Task
	for _, t := range m.tasks {
		if t.AssigneeID == assigneeID && (status == "" || t.Status == status) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *Memory) ListCreatedTasks(_ context.Context, creatorID int64) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Task
	for _, t := range m.tasks {
		if t.CreatorID == creatorID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *Memory) pendingTask(id uuid.UUID) (*models.Task, error) {
	t := m.findTask(id)
	if t == nil {
		return nil, ErrNotFound
	}
	if t.Status != models.TaskPending {
		return nil, ErrAlreadyProcessed
	}
	return t, nil
}

func (m *Memory) CompleteTask(_ context.Context, id uuid.UUID, assigneeID int64, at time.Time) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.pendingTask(id)
	if err != nil {
		return nil, err
	}
	if t.AssigneeID != assigneeID {
		return nil, ErrNotFound
	}
	t.Status = models.TaskCompleted
	t.CompletedAt = &at
	if u, ok := m.users[assigneeID]; ok && t.RewardCoins > 0 {
		u.PCoins += t.RewardCoins
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) PostponeTask(_ context.Context, id uuid.UUID, assigneeID int64, until time.Time) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.pendingTask(id)
	if err != nil {
		return nil, err
	}
	if t.AssigneeID != assigneeID {
		return nil, ErrNotFound
	}
	t.Status = models.TaskPostponed
	t.PostponedUntil = &until
	cp := *t
	return &cp, nil
}

func (m *Memory) CancelTask(_ context.Context, id uuid.UUID, actorID int64, reason string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.pendingTask(id)
	if err != nil {
		return nil, err
	}
	if t.AssigneeID != actorID && t.CreatorID != actorID {
		return nil, ErrNotFound
	}
	t.Status = models.TaskCancelled
	t.CancelledReason = reason
	cp := *t
	return &cp, nil
}

// --- vacations ---

func (m *Memory) balanceLocked(userID int64, year, totalDays int) *models.VacationBalance {
	for _, b := range m.balances {
		if b.UserID == userID && b.Year == year {
			return b
		}
	}
	b := &models.VacationBalance{
		ID: uuid.New(), UserID: userID, Year: year,
		TotalDays: totalDays, RemainingDays: totalDays, UpdatedAt: time.Now(),
	}
	m.balances = append(m.balances, b)
	return b
}

func (m *Memory) EnsureVacationBalance(_ context.Context, userID int64, year, totalDays int) (*models.VacationBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.balanceLocked(userID, year, totalDays)
	return &cp, nil
}

func (m *Memory) CreateVacationRequest(_ context.Context, req *models.VacationRequest, totalDays int) (*models.VacationBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.balanceLocked(req.UserID, req.Year, totalDays)
	if b.RemainingDays < req.DaysCount {
		cp := *b
		return &cp, ErrInsufficientDays
	}
	b.RemainingDays -= req.DaysCount
	b.PendingDays += req.DaysCount
	stamp(&req.ID, &req.CreatedAt)
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	rc := *req
	m.vacations = append(m.vacations, &rc)
	cp := *b
	return &cp, nil
}

func (m *Memory) findVacation(id uuid.UUID) *models.VacationRequest {
	for _, v := range m.vacations {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func (m *Memory) GetVacationRequest(_ context.Context, id uuid.UUID) (*models.VacationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.findVacation(id)
	if v == nil {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *Memory) ListVacationRequests(_ context.Context, userID int64, status string) ([]models.VacationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.VacationRequest
	for _, v := range m.vacations {
		if (userID == 0 || v.UserID == userID) && (status == "" || v.Status == status) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *Memory) reviewVacation(id uuid.UUID, approve bool, reviewerID int64, comment string, at time.Time) (*models.VacationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.findVacation(id)
	if v == nil {
		return nil, ErrNotFound
	}
	if v.Status != models.StatusPending {
		return nil, ErrAlreadyProcessed
	}
	b := m.balanceLocked(v.UserID, v.Year, 0)
	if b.PendingDays < v.DaysCount {
		return nil, ErrInsufficientDays
	}
	b.PendingDays -= v.DaysCount
	if approve {
		b.UsedDays += v.DaysCount
		v.Status = models.StatusApproved
	} else {
		b.RemainingDays += v.DaysCount
		v.Status = models.StatusRejected
	}
	v.ReviewerID = &reviewerID
	v.ReviewerComment = comment
	v.ReviewedAt = &at
	cp := *v
	return &cp, nil
}

func (m *Memory) ApproveVacation(_ context.Context, id uuid.UUID, reviewerID int64, comment string, at time.Time) (*models.VacationRequest, error) {
	return m.reviewVacation(id, true, reviewerID, comment, at)
}

func (m *Memory) RejectVacation(_ context.Context, id uuid.UUID, reviewerID int64, comment string, at time.Time) (*models.VacationRequest, error) {
	return m.reviewVacation(id, false, reviewerID, comment, at)
}

// --- achievements ---

func (m *Memory) CreateAchievement(_ context.Context, a *models.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&a.ID, &a.CreatedAt)
	cp := *a
	m.achievements = append(m.achievements, &cp)
	return nil
}

func (m *Memory) GetAchievement(_ context.Context, id uuid.UUID) (*models.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.achievements {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListAchievements(_ context.Context, limit int) ([]models.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Achievement, 0, len(m.achievements))
	for i := len(m.achievements) - 1; i >= 0; i-- {
		out = append(out, *m.achievements[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) LikeAchievement(_ context.Context, achievementID uuid.UUID, userID int64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, a := range m.achievements {
		if a.ID == achievementID {
			found = true
			break
		}
	}
	if !found {
		return false, ErrNotFound
	}
	for _, l := range m.likes {
		if l.AchievementID == achievementID && l.UserID == userID {
			return false, nil
		}
	}
	m.likes = append(m.likes, models.AchievementLike{ID: uuid.New(), AchievementID: achievementID, UserID: userID, CreatedAt: at})
	return true, nil
}

func (m *Memory) CountLikes(_ context.Context, achievementID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.likes {
		if l.AchievementID == achievementID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) AddAchievementComment(_ context.Context, c *models.AchievementComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&c.ID, &c.CreatedAt)
	m.comments = append(m.comments, *c)
	return nil
}

// --- contacts, invoices, broadcasts ---

func (m *Memory) CreateContact(_ context.Context, c *models.CompanyContact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&c.ID, &c.CreatedAt)
	m.contacts = append(m.contacts, *c)
	return nil
}

func (m *Memory) SearchContacts(_ context.Context, q string, limit int) ([]models.CompanyContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q = strings.ToLower(q)
	var out []models.CompanyContact
	for _, c := range m.contacts {
		if strings.Contains(strings.ToLower(c.CompanyName), q) {
			out = append(out, c)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) ListContacts(_ context.Context, limit int) ([]models.CompanyContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CompanyContact, 0, len(m.contacts))
	out = append(out, m.contacts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompanyName < out[j].CompanyName })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CreateInvoice(_ context.Context, inv *models.Invoice, fileName func(number int) string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := 1
	for _, i := range m.invoices {
		if i.InvoiceNumber >= next {
			next = i.InvoiceNumber + 1
		}
	}
	inv.InvoiceNumber = next
	if fileName != nil {
		inv.FileName = fileName(next)
	}
	stamp(&inv.ID, &inv.CreatedAt)
	m.invoices = append(m.invoices, *inv)
	return nil
}

func (m *Memory) ListInvoices(_ context.Context, limit int) ([]models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Invoice
	for i := len(m.invoices) - 1; i >= 0; i-- {
		out = append(out, m.invoices[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) CreateBroadcast(_ context.Context, b *models.Broadcast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&b.ID, &b.CreatedAt)
	m.broadcasts = append(m.broadcasts, *b)
	return nil
}

// --- clicker, stats ---

func (m *Memory) Tap(_ context.Context, telegramID int64, at time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	if !ok {
		return nil, ErrNotFound
	}
	if u.Energy <= 0 {
		return nil, ErrInsufficientEnergy
	}
	u.Energy--
	u.PCoins++
	c, ok := m.clicks[telegramID]
	if !ok {
		c = &models.ClickerStat{UserID: telegramID}
		m.clicks[telegramID] = c
	}
	c.TotalClicks++
	c.LastClick = at
	cp := *u
	return &cp, nil
}

func (m *Memory) RestoreEnergy(_ context.Context, amount, max int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Energy >= max {
			continue
		}
		u.Energy += amount
		if u.Energy > max {
			u.Energy = max
		}
		n++
	}
	return n, nil
}

func (m *Memory) Stats(_ context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &Stats{Users: int64(len(m.users)), Gifts: int64(len(m.gifts)), Battles: int64(len(m.battles))}
	for _, u := range m.users {
		if u.IsRegistered {
			st.RegisteredUsers++
		}
		switch u.Role {
		case models.RoleIntern:
			st.Interns++
		case models.RoleVeteran:
			st.Veterans++
		}
		st.TotalCoins += u.PCoins
	}
	for _, s := range m.submissions {
		if s.Status == models.StatusPending {
			st.PendingSubmissions++
		}
	}
	for _, v := range m.vacations {
		if v.Status == models.StatusPending {
			st.PendingVacations++
		}
	}
	for _, s := range m.slots {
		if s.Status == models.SlotActive {
			st.ActiveSlots++
		}
	}
	for _, t := range m.tasks {
		if t.Status == models.TaskPending {
			st.OpenTasks++
		}
	}
	for _, c := range m.clicks {
		st.TotalClicks += c.TotalClicks
	}
	return st, nil
}

func (m *Memory) ResetStats(_ context.Context, energyMax int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		u.Energy = energyMax
	}
	m.clicks = make(map[int64]*models.ClickerStat)
	m.energyLogs = nil
	return nil
}
