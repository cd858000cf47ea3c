package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceNumberAttempts = 3

// Gorm is the PostgreSQL Store.
type Gorm struct {
	db *gorm.DB
}

var _ Store = (*Gorm)(nil)

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// lockUsers row-locks the given users in ascending id order.
func lockUsers(tx *gorm.DB, ids ...int64) (map[int64]*models.User, error) {
	var rows []models.User
	if err := forUpdate(tx).Where("telegram_id IN ?", ids).Order("telegram_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]*models.User, len(rows))
	for i := range rows {
		out[rows[i].TelegramID] = &rows[i]
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, ErrNotFound
		}
	}
	return out, nil
}

func addCoins(tx *gorm.DB, telegramID, delta int64) error {
	return tx.Model(&models.User{}).Scopes(ForUser("telegram_id", telegramID)).
		Update("p_coins", gorm.Expr("p_coins + ?", delta)).Error
}

// --- users ---

func (g *Gorm) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	if err := g.db.WithContext(ctx).Scopes(ForUser("telegram_id", telegramID)).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (g *Gorm) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	username = strings.TrimPrefix(username, "@")
	if err := g.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (g *Gorm) EnsureUser(ctx context.Context, telegramID int64, username, fullName string, defaultEnergy int, at time.Time) (*models.User, bool, error) {
	db := g.db.WithContext(ctx)
	u := models.User{
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
	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "telegram_id"}}, DoNothing: true}).Create(&u)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return &u, true, nil
	}

	updates := map[string]interface{}{"last_activity": at}
	if username != "" {
		updates["username"] = username
	}
	if err := db.Model(&models.User{}).Scopes(ForUser("telegram_id", telegramID)).Updates(updates).Error; err != nil {
		return nil, false, fmt.Errorf("failed to touch user: %w", err)
	}
	if fullName != "" {
		if err := db.Model(&models.User{}).Where("telegram_id = ? AND is_registered = false", telegramID).Update("full_name", fullName).Error; err != nil {
			return nil, false, fmt.Errorf("failed to update full name: %w", err)
		}
	}
	existing, err := g.GetUser(ctx, telegramID)
	return existing, false, err
}

func (g *Gorm) updateUser(ctx context.Context, telegramID int64, updates map[string]interface{}) error {
	res := g.db.WithContext(ctx).Model(&models.User{}).Scopes(ForUser("telegram_id", telegramID)).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) SetRole(ctx context.Context, telegramID int64, role string) error {
	return g.updateUser(ctx, telegramID, map[string]interface{}{"role": role})
}

func (g *Gorm) CompleteRegistration(ctx context.Context, telegramID int64, profile string) error {
	return g.updateUser(ctx, telegramID, map[string]interface{}{"profile": profile, "is_registered": true})
}

func (g *Gorm) SetPresence(ctx context.Context, telegramID int64, status string) error {
	return g.updateUser(ctx, telegramID, map[string]interface{}{"status": status})
}

func (g *Gorm) SetStatusMessage(ctx context.Context, telegramID int64, message string) error {
	return g.updateUser(ctx, telegramID, map[string]interface{}{"status_message": message})
}

func (g *Gorm) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	q := g.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.RegisteredOnly {
		q = q.Where("is_registered = true")
	}
	if f.ExcludeID != 0 {
		q = q.Where("telegram_id <> ?", f.ExcludeID)
	}
	if f.MinCoins > 0 {
		q = q.Where("p_coins >= ?", f.MinCoins)
	}
	var users []models.User
	if err := q.Order("telegram_id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (g *Gorm) CreditCoins(ctx context.Context, telegramID int64, amount int64) (int64, error) {
	var balance int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := lockUsers(tx, telegramID)
		if err != nil {
			return err
		}
		if err := addCoins(tx, telegramID, amount); err != nil {
			return err
		}
		balance = users[telegramID].PCoins + amount
		return nil
	})
	return balance, err
}

func (g *Gorm) DebitCoins(ctx context.Context, telegramID int64, amount int64) (int64, error) {
	var balance int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := lockUsers(tx, telegramID)
		if err != nil {
			return err
		}
		balance = users[telegramID].PCoins
		if balance < amount {
			return ErrInsufficientFunds
		}
		if err := addCoins(tx, telegramID, -amount); err != nil {
			return err
		}
		balance -= amount
		return nil
	})
	return balance, err
}

// --- admins ---

func (g *Gorm) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&models.AdminGrant{}).Scopes(ForUser("telegram_id", telegramID)).Count(&n).Error
	return n > 0, err
}

func (g *Gorm) GrantAdmin(ctx context.Context, telegramID int64, username string) error {
	grant := models.AdminGrant{ID: uuid.New(), TelegramID: telegramID, Username: username}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username"}),
	}).Create(&grant).Error
}

func (g *Gorm) RevokeAdmin(ctx context.Context, telegramID int64) error {
	return g.db.WithContext(ctx).Scopes(ForUser("telegram_id", telegramID)).Delete(&models.AdminGrant{}).Error
}

func (g *Gorm) ListAdmins(ctx context.Context) ([]models.AdminGrant, error) {
	var grants []models.AdminGrant
	err := g.db.WithContext(ctx).Order("telegram_id").Find(&grants).Error
	return grants, err
}

func (g *Gorm) GetAdminPasswordHash(ctx context.Context, telegramID int64) (string, error) {
	var row models.AdminPassword
	if err := g.db.WithContext(ctx).Scopes(ForUser("telegram_id", telegramID)).First(&row).Error; err != nil {
		return "", notFound(err)
	}
	return row.PasswordHash, nil
}

func (g *Gorm) SetAdminPasswordHash(ctx context.Context, telegramID int64, hash string) error {
	row := models.AdminPassword{TelegramID: telegramID, PasswordHash: hash}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
	}).Create(&row).Error
}

// --- gifts, battles, shop ---

func giftedSince(tx *gorm.DB, senderID int64, since time.Time) (int64, error) {
	var total int64
	err := tx.Model(&models.Gift{}).
		Where("sender_id = ? AND created_at >= ?", senderID, since).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

func (g *Gorm) CreateGift(ctx context.Context, gift *models.Gift, dailyCap int64, dayStart time.Time) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := lockUsers(tx, gift.SenderID, gift.ReceiverID)
		if err != nil {
			return err
		}
		sent, err := giftedSince(tx, gift.SenderID, dayStart)
		if err != nil {
			return err
		}
		if sent+gift.Amount > dailyCap {
			return ErrGiftCapExceeded
		}
		if users[gift.SenderID].PCoins < gift.Amount {
			return ErrInsufficientFunds
		}
		if err := addCoins(tx, gift.SenderID, -gift.Amount); err != nil {
			return err
		}
		if err := addCoins(tx, gift.ReceiverID, gift.Amount); err != nil {
			return err
		}
		return tx.Create(gift).Error
	})
}

func (g *Gorm) GiftedSince(ctx context.Context, senderID int64, since time.Time) (int64, error) {
	return giftedSince(g.db.WithContext(ctx), senderID, since)
}

func (g *Gorm) RecordBattle(ctx context.Context, b *models.Battle, energyCost int) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := lockUsers(tx, b.AttackerID, b.DefenderID)
		if err != nil {
			return err
		}
		loserID := b.DefenderID
		if b.WinnerID == b.DefenderID {
			loserID = b.AttackerID
		}
		if users[b.AttackerID].Energy < energyCost {
			return ErrInsufficientEnergy
		}
		if users[loserID].PCoins < b.PointsWon {
			return ErrInsufficientFunds
		}
		if err := tx.Model(&models.User{}).Scopes(ForUser("telegram_id", b.AttackerID)).
			Update("energy", gorm.Expr("energy - ?", energyCost)).Error; err != nil {
			return err
		}
		if err := addCoins(tx, loserID, -b.PointsWon); err != nil {
			return err
		}
		if err := addCoins(tx, b.WinnerID, b.PointsWon); err != nil {
			return err
		}
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		return tx.Create(&models.EnergyLog{UserID: b.AttackerID, Action: "pvp", Delta: -energyCost}).Error
	})
}

func (g *Gorm) Purchase(ctx context.Context, p *models.Purchase) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("telegram_id = ? AND p_coins >= ?", p.UserID, p.Price).
			Update("p_coins", gorm.Expr("p_coins - ?", p.Price))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.User{}).Scopes(ForUser("telegram_id", p.UserID)).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrInsufficientFunds
		}
		return tx.Create(p).Error
	})
}

// --- courses ---

func (g *Gorm) CreateSubmission(ctx context.Context, sub *models.TestSubmission) error {
	if sub.Status == "" {
		sub.Status = models.StatusPending
	}
	return g.db.WithContext(ctx).Create(sub).Error
}

func (g *Gorm) GetSubmission(ctx context.Context, id uuid.UUID) (*models.TestSubmission, error) {
	var s models.TestSubmission
	if err := g.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (g *Gorm) ListSubmissions(ctx context.Context, status string) ([]models.TestSubmission, error) {
	var subs []models.TestSubmission
	err := g.db.WithContext(ctx).Scopes(WithStatus(status)).Order("created_at").Find(&subs).Error
	return subs, err
}

// reviewSubmission moves a pending submission to status under a row lock.
func reviewSubmission(tx *gorm.DB, id uuid.UUID, status string, reviewerID int64, comment string, at time.Time) (*models.TestSubmission, error) {
	var s models.TestSubmission
	if err := forUpdate(tx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	if s.Status != models.StatusPending {
		return nil, ErrAlreadyProcessed
	}
	s.Status = status
	s.ReviewerID = &reviewerID
	s.ReviewComment = comment
	s.ReviewedAt = &at
	if err := tx.Model(&s).Updates(map[string]interface{}{
		"status":         status,
		"reviewer_id":    reviewerID,
		"review_comment": comment,
		"reviewed_at":    at,
	}).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (g *Gorm) ApproveSubmission(ctx context.Context, id uuid.UUID, reviewerID int64, at time.Time) (*models.TestSubmission, error) {
	var out *models.TestSubmission
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := reviewSubmission(tx, id, models.StatusApproved, reviewerID, "", at)
		if err != nil {
			return err
		}
		if _, err := lockUsers(tx, s.UserID); err != nil {
			return err
		}
		if err := addCoins(tx, s.UserID, s.PointsClaimed); err != nil {
			return err
		}
		progress := models.InternProgress{
			UserID:       s.UserID,
			TestName:     s.TestName,
			Completed:    true,
			PointsEarned: s.PointsClaimed,
			CompletedAt:  at,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "test_name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"completed":     true,
				"points_earned": gorm.Expr("intern_progresses.points_earned + ?", s.PointsClaimed),
				"completed_at":  at,
			}),
		}).Create(&progress).Error; err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

func (g *Gorm) RejectSubmission(ctx context.Context, id uuid.UUID, reviewerID int64, comment string, at time.Time) (*models.TestSubmission, error) {
	var out *models.TestSubmission
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := reviewSubmission(tx, id, models.StatusRejected, reviewerID, comment, at)
		out = s
		return err
	})
	return out, err
}

func (g *Gorm) ListProgress(ctx context.Context, userID int64) ([]models.InternProgress, error) {
	var rows []models.InternProgress
	err := g.db.WithContext(ctx).Scopes(ForUser("user_id", userID)).Order("test_name").Find(&rows).Error
	return rows, err
}

// --- events ---

func (g *Gorm) CreateSlot(ctx context.Context, slot *models.EventSlot) error {
	if slot.Status == "" {
		slot.Status = models.SlotActive
	}
	return g.db.WithContext(ctx).Create(slot).Error
}

func (g *Gorm) GetSlot(ctx context.Context, id uuid.UUID) (*models.EventSlot, error) {
	var s models.EventSlot
	if err := g.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (g *Gorm) ListActiveSlots(ctx context.Context) ([]models.EventSlot, error) {
	var slots []models.EventSlot
	err := g.db.WithContext(ctx).Scopes(WithStatus(models.SlotActive)).
		Order("to_date(date, 'DD.MM.YYYY'), time").Find(&slots).Error
	return slots, err
}

func (g *Gorm) UpdateSlot(ctx context.Context, id uuid.UUID, field string, value interface{}) error {
	if !SlotFields[field] {
		return ErrNotFound
	}
	q := g.db.WithContext(ctx).Model(&models.EventSlot{}).Where("id = ?", id)
	if field == "max_participants" {
		q = q.Where("current_participants <= ?", value)
	}
	res := q.Update(field, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if field == "max_participants" {
			if _, err := g.GetSlot(ctx, id); err == nil {
				return ErrCapacityExceeded
			}
		}
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("slot_id = ?", id).Delete(&models.EventBooking{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.EventSlot{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (g *Gorm) BookSlot(ctx context.Context, userID int64, slotID uuid.UUID, at time.Time) (*models.EventSlot, error) {
	var slot models.EventSlot
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&slot, "id = ?", slotID).Error; err != nil {
			return notFound(err)
		}
		var existing int64
		if err := tx.Model(&models.EventBooking{}).
			Where("user_id = ? AND slot_id = ?", userID, slotID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyBooked
		}
		if slot.Status != models.SlotActive {
			return ErrSlotInactive
		}
		if slot.CurrentParticipants >= slot.MaxParticipants {
			return ErrCapacityExceeded
		}
		booking := models.EventBooking{UserID: userID, SlotID: slotID, CreatedAt: at}
		if err := tx.Create(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyBooked
			}
			return err
		}
		slot.CurrentParticipants++
		return tx.Model(&slot).Update("current_participants", gorm.Expr("current_participants + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (g *Gorm) ListUserBookings(ctx context.Context, userID int64) ([]models.EventSlot, error) {
	var slots []models.EventSlot
	err := g.db.WithContext(ctx).
		Joins("JOIN event_bookings ON event_bookings.slot_id = event_slots.id").
		Where("event_bookings.user_id = ?", userID).
		Order("event_bookings.created_at").
		Find(&slots).Error
	return slots, err
}

func (g *Gorm) CountBookings(ctx context.Context, slotID uuid.UUID) (int, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&models.EventBooking{}).Where("slot_id = ?", slotID).Count(&n).Error
	return int(n), err
}

// --- tasks ---

func (g *Gorm) CreateTask(ctx context.Context, t *models.Task) error {
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	return g.db.WithContext(ctx).Create(t).Error
}

func (g *Gorm) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	if err := g.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (g *Gorm) ListAssignedTasks(ctx context.Context, assigneeID int64, status string) ([]models.Task, error) {
	var tasks []models.Task
	err := g.db.WithContext(ctx).Scopes(ForUser("assignee_id", assigneeID), WithStatus(status)).
		Order("created_at").Find(&tasks).Error
	return tasks, err
}

func (g *Gorm) ListCreatedTasks(ctx context.Context, creatorID int64) ([]models.Task, error) {
	var tasks []models.Task
	err := g.db.WithContext(ctx).Scopes(ForUser("creator_id", creatorID)).Order("created_at").Find(&tasks).Error
	return tasks, err
}

// transitionTask locks a pending task, checks the actor and applies updates.
func (g *Gorm) transitionTask(ctx context.Context, id uuid.UUID, allowed func(*models.Task) bool, apply func(tx *gorm.DB, t *models.Task) error) (*models.Task, error) {
	var t models.Task
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&t, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if t.Status != models.TaskPending {
			return ErrAlreadyProcessed
		}
		if !allowed(&t) {
			return ErrNotFound
		}
		return apply(tx, &t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (g *Gorm) CompleteTask(ctx context.Context, id uuid.UUID, assigneeID int64, at time.Time) (*models.Task, error) {
	return g.transitionTask(ctx, id,
		func(t *models.Task) bool { return t.AssigneeID == assigneeID },
		func(tx *gorm.DB, t *models.Task) error {
			t.Status = models.TaskCompleted
			t.CompletedAt = &at
			if err := tx.Model(t).Updates(map[string]interface{}{"status": t.Status, "completed_at": at}).Error; err != nil {
				return err
			}
			if t.RewardCoins > 0 {
				return addCoins(tx, assigneeID, t.RewardCoins)
			}
			return nil
		})
}

func (g *Gorm) PostponeTask(ctx context.Context, id uuid.UUID, assigneeID int64, until time.Time) (*models.Task, error) {
	return g.transitionTask(ctx, id,
		func(t *models.Task) bool { return t.AssigneeID == assigneeID },
		func(tx *gorm.DB, t *models.Task) error {
			t.Status = models.TaskPostponed
			t.PostponedUntil = &until
			return tx.Model(t).Updates(map[string]interface{}{"status": t.Status, "postponed_until": until}).Error
		})
}

func (g *Gorm) CancelTask(ctx context.Context, id uuid.UUID, actorID int64, reason string) (*models.Task, error) {
	return g.transitionTask(ctx, id,
		func(t *models.Task) bool { return t.AssigneeID == actorID || t.CreatorID == actorID },
		func(tx *gorm.DB, t *models.Task) error {
			t.Status = models.TaskCancelled
			t.CancelledReason = reason
			return tx.Model(t).Updates(map[string]interface{}{"status": t.Status, "cancelled_reason": reason}).Error
		})
}

// --- vacations ---

// lockBalance creates the (user, year) balance if missing and row-locks it.
func lockBalance(tx *gorm.DB, userID int64, year, totalDays int) (*models.VacationBalance, error) {
	seed := models.VacationBalance{UserID: userID, Year: year, TotalDays: totalDays, RemainingDays: totalDays}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "year"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return nil, err
	}
	var b models.VacationBalance
	if err := forUpdate(tx).Where("user_id = ? AND year = ?", userID, year).First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func saveBalance(tx *gorm.DB, b *models.VacationBalance) error {
	return tx.Model(b).Updates(map[string]interface{}{
		"used_days":      b.UsedDays,
		"pending_days":   b.PendingDays,
		"remaining_days": b.RemainingDays,
	}).Error
}

func (g *Gorm) EnsureVacationBalance(ctx context.Context, userID int64, year, totalDays int) (*models.VacationBalance, error) {
	var b *models.VacationBalance
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		b, err = lockBalance(tx, userID, year, totalDays)
		return err
	})
	return b, err
}

func (g *Gorm) CreateVacationRequest(ctx context.Context, req *models.VacationRequest, totalDays int) (*models.VacationBalance, error) {
	var b *models.VacationBalance
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		b, err = lockBalance(tx, req.UserID, req.Year, totalDays)
		if err != nil {
			return err
		}
		if b.RemainingDays < req.DaysCount {
			return ErrInsufficientDays
		}
		b.RemainingDays -= req.DaysCount
		b.PendingDays += req.DaysCount
		if err := saveBalance(tx, b); err != nil {
			return err
		}
		if req.Status == "" {
			req.Status = models.StatusPending
		}
		return tx.Create(req).Error
	})
	return b, err
}

func (g *Gorm) GetVacationRequest(ctx context.Context, id uuid.UUID) (*models.VacationRequest, error) {
	var v models.VacationRequest
	if err := g.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (g *Gorm) ListVacationRequests(ctx context.Context, userID int64, status string) ([]models.VacationRequest, error) {
	q := g.db.WithContext(ctx).Scopes(WithStatus(status))
	if userID != 0 {
		q = q.Scopes(ForUser("user_id", userID))
	}
	var reqs []models.VacationRequest
	err := q.Order("created_at").Find(&reqs).Error
	return reqs, err
}

func (g *Gorm) reviewVacation(ctx context.Context, id uuid.UUID, approve bool, reviewerID int64, comment string, at time.Time) (*models.VacationRequest, error) {
	var v models.VacationRequest
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&v, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if v.Status != models.StatusPending {
			return ErrAlreadyProcessed
		}
		b, err := lockBalance(tx, v.UserID, v.Year, 0)
		if err != nil {
			return err
		}
		if b.PendingDays < v.DaysCount {
			return ErrInsufficientDays
		}
		b.PendingDays -= v.DaysCount
		v.Status = models.StatusRejected
		if approve {
			b.UsedDays += v.DaysCount
			v.Status = models.StatusApproved
		} else {
			b.RemainingDays += v.DaysCount
		}
		if err := saveBalance(tx, b); err != nil {
			return err
		}
		v.ReviewerID = &reviewerID
		v.ReviewerComment = comment
		v.ReviewedAt = &at
		return tx.Model(&v).Updates(map[string]interface{}{
			"status":           v.Status,
			"reviewer_id":      reviewerID,
			"reviewer_comment": comment,
			"reviewed_at":      at,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (g *Gorm) ApproveVacation(ctx context.Context, id uuid.UUID, reviewerID int64, comment string, at time.Time) (*models.VacationRequest, error) {
	return g.reviewVacation(ctx, id, true, reviewerID, comment, at)
}

func (g *Gorm) RejectVacation(ctx context.Context, id uuid.UUID, reviewerID int64, comment string, at time.Time) (*models.VacationRequest, error) {
	return g.reviewVacation(ctx, id, false, reviewerID, comment, at)
}

// --- achievements ---

func (g *Gorm) CreateAchievement(ctx context.Context, a *models.Achievement) error {
	return g.db.WithContext(ctx).Create(a).Error
}

func (g *Gorm) GetAchievement(ctx context.Context, id uuid.UUID) (*models.Achievement, error) {
	var a models.Achievement
	if err := g.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (g *Gorm) ListAchievements(ctx context.Context, limit int) ([]models.Achievement, error) {
	var out []models.Achievement
	err := g.db.WithContext(ctx).Scopes(Newest(limit)).Find(&out).Error
	return out, err
}

func (g *Gorm) LikeAchievement(ctx context.Context, achievementID uuid.UUID, userID int64, at time.Time) (bool, error) {
	if _, err := g.GetAchievement(ctx, achievementID); err != nil {
		return false, err
	}
	like := models.AchievementLike{AchievementID: achievementID, UserID: userID, CreatedAt: at}
	res := g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (g *Gorm) CountLikes(ctx context.Context, achievementID uuid.UUID) (int, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&models.AchievementLike{}).Where("achievement_id = ?", achievementID).Count(&n).Error
	return int(n), err
}

func (g *Gorm) AddAchievementComment(ctx context.Context, c *models.AchievementComment) error {
	return g.db.WithContext(ctx).Create(c).Error
}

// --- contacts, invoices, broadcasts ---

func (g *Gorm) CreateContact(ctx context.Context, c *models.CompanyContact) error {
	return g.db.WithContext(ctx).Create(c).Error
}

func (g *Gorm) SearchContacts(ctx context.Context, q string, limit int) ([]models.CompanyContact, error) {
	var out []models.CompanyContact
	query := g.db.WithContext(ctx).Scopes(Containing("company_name", q)).Order("company_name")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&out).Error
	return out, err
}

func (g *Gorm) ListContacts(ctx context.Context, limit int) ([]models.CompanyContact, error) {
	var out []models.CompanyContact
	query := g.db.WithContext(ctx).Order("company_name")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&out).Error
	return out, err
}

func (g *Gorm) CreateInvoice(ctx context.Context, inv *models.Invoice, fileName func(number int) string) error {
	var err error
	for attempt := 0; attempt < invoiceNumberAttempts; attempt++ {
		err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last int
			if err := tx.Model(&models.Invoice{}).Select("COALESCE(MAX(invoice_number), 0)").Scan(&last).Error; err != nil {
				return err
			}
			inv.ID = uuid.Nil
			inv.InvoiceNumber = last + 1
			if fileName != nil {
				inv.FileName = fileName(inv.InvoiceNumber)
			}
			return tx.Create(inv).Error
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return fmt.Errorf("failed to allocate invoice number: %w", err)
}

func (g *Gorm) ListInvoices(ctx context.Context, limit int) ([]models.Invoice, error) {
	var out []models.Invoice
	err := g.db.WithContext(ctx).Scopes(Newest(limit)).Find(&out).Error
	return out, err
}

func (g *Gorm) CreateBroadcast(ctx context.Context, b *models.Broadcast) error {
	return g.db.WithContext(ctx).Create(b).Error
}

// --- clicker, stats ---

func (g *Gorm) Tap(ctx context.Context, telegramID int64, at time.Time) (*models.User, error) {
	var u models.User
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("telegram_id = ? AND energy > 0", telegramID).Updates(map[string]interface{}{
			"energy":  gorm.Expr("energy - 1"),
			"p_coins": gorm.Expr("p_coins + 1"),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Scopes(ForUser("telegram_id", telegramID)).First(&u).Error; err != nil {
				return notFound(err)
			}
			return ErrInsufficientEnergy
		}
		stat := models.ClickerStat{UserID: telegramID, TotalClicks: 1, LastClick: at}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_clicks": gorm.Expr("clicker_stats.total_clicks + 1"),
				"last_click":   at,
			}),
		}).Create(&stat).Error; err != nil {
			return err
		}
		return tx.Scopes(ForUser("telegram_id", telegramID)).First(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (g *Gorm) RestoreEnergy(ctx context.Context, amount, max int) (int64, error) {
	res := g.db.WithContext(ctx).Model(&models.User{}).
		Where("energy < ?", max).
		Update("energy", gorm.Expr("LEAST(energy + ?, ?)", amount, max))
	return res.RowsAffected, res.Error
}

func (g *Gorm) Stats(ctx context.Context) (*Stats, error) {
	db := g.db.WithContext(ctx)
	st := &Stats{}
	counts := []struct {
		dst   *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&st.Users, &models.User{}, "", nil},
		{&st.RegisteredUsers, &models.User{}, "is_registered = true", nil},
		{&st.Interns, &models.User{}, "role = ?", []interface{}{models.RoleIntern}},
		{&st.Veterans, &models.User{}, "role = ?", []interface{}{models.RoleVeteran}},
		{&st.PendingSubmissions, &models.TestSubmission{}, "status = ?", []interface{}{models.StatusPending}},
		{&st.PendingVacations, &models.VacationRequest{}, "status = ?", []interface{}{models.StatusPending}},
		{&st.ActiveSlots, &models.EventSlot{}, "status = ?", []interface{}{models.SlotActive}},
		{&st.OpenTasks, &models.Task{}, "status = ?", []interface{}{models.TaskPending}},
		{&st.Gifts, &models.Gift{}, "", nil},
		{&st.Battles, &models.Battle{}, "", nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Model(&models.User{}).Select("COALESCE(SUM(p_coins), 0)").Scan(&st.TotalCoins).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ClickerStat{}).Select("COALESCE(SUM(total_clicks), 0)").Scan(&st.TotalClicks).Error; err != nil {
		return nil, err
	}
	return st, nil
}

func (g *Gorm) ResetStats(ctx context.Context, energyMax int) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("energy <> ?", energyMax).Update("energy", energyMax).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.ClickerStat{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.EnergyLog{}).Error
	})
}
