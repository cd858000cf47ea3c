package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
)

type GiftService struct{ *deps }

// Remaining is how much the sender may still gift today.
func (s *GiftService) Remaining(ctx context.Context, senderID int64) (int64, error) {
	sent, err := s.store.GiftedSince(ctx, senderID, dayStart(s.now()))
	if err != nil {
		return 0, err
	}
	left := s.cfg.GiftDailyCap - sent
	if left < 0 {
		left = 0
	}
	return left, nil
}

// ParseAmount validates a gift amount against the minimum and today's
// remaining cap.
func (s *GiftService) ParseAmount(ctx context.Context, senderID int64, raw string) (int64, error) {
	left, err := s.Remaining(ctx, senderID)
	if err != nil {
		return 0, err
	}
	if left < s.cfg.GiftMinAmount {
		return 0, store.ErrGiftCapExceeded
	}
	return ParseInt("amount", raw, s.cfg.GiftMinAmount, left)
}

// Send moves amount coins from sender to receiver and records the gift.
func (s *GiftService) Send(ctx context.Context, senderID, receiverID, amount int64, message string) (*models.Gift, error) {
	if senderID == receiverID {
		return nil, invalid("recipient", "Нельзя подарить баллы самому себе")
	}
	if amount < s.cfg.GiftMinAmount {
		return nil, invalid("amount", fmt.Sprintf("Минимальная сумма подарка: %d", s.cfg.GiftMinAmount))
	}
	now := s.now()
	gift := &models.Gift{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		Message:    strings.TrimSpace(message),
		CreatedAt:  now,
	}
	if err := s.store.CreateGift(ctx, gift, s.cfg.GiftDailyCap, dayStart(now)); err != nil {
		return nil, err
	}
	return gift, nil
}

type PVPService struct{ *deps }

type BattleResult struct {
	Battle   *models.Battle
	Opponent *models.User
	Won      bool
}

// Fight picks a random stake-eligible opponent and flips a coin. The attacker
// pays energy whatever the outcome.
func (s *PVPService) Fight(ctx context.Context, attackerID int64) (*BattleResult, error) {
	attacker, err := s.store.GetUser(ctx, attackerID)
	if err != nil {
		return nil, err
	}
	if attacker.Energy < s.cfg.PVPEnergyCost {
		return nil, store.ErrInsufficientEnergy
	}
	if attacker.PCoins < s.cfg.PVPStake {
		return nil, store.ErrInsufficientFunds
	}

	candidates, err := s.store.ListUsers(ctx, store.UserFilter{
		RegisteredOnly: true,
		ExcludeID:      attackerID,
		MinCoins:       s.cfg.PVPStake,
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoOpponent
	}
	opponent := candidates[s.pick(len(candidates))]

	won := s.coin()
	battle := &models.Battle{
		AttackerID: attackerID,
		DefenderID: opponent.TelegramID,
		WinnerID:   opponent.TelegramID,
		PointsWon:  s.cfg.PVPStake,
		CreatedAt:  s.now(),
	}
	if won {
		battle.WinnerID = attackerID
	}
	if err := s.store.RecordBattle(ctx, battle, s.cfg.PVPEnergyCost); err != nil {
		return nil, err
	}
	return &BattleResult{Battle: battle, Opponent: &opponent, Won: won}, nil
}

type ShopItem struct {
	Key   string
	Title string
	Price int64
}

var catalog = []ShopItem{
	{Key: "merch", Title: "👕 Мерч компании", Price: 50},
	{Key: "coffee", Title: "☕ Кофе", Price: 20},
	{Key: "day_off", Title: "🏝 Выходной день", Price: 200},
	{Key: "lunch", Title: "🍱 Обед за счет компании", Price: 100},
}

type ShopService struct{ *deps }

func (s *ShopService) Catalog() []ShopItem {
	return catalog
}

func (s *ShopService) Item(key string) (ShopItem, bool) {
	for _, it := range catalog {
		if it.Key == key {
			return it, true
		}
	}
	return ShopItem{}, false
}

// Buy debits the price and records the purchase. It returns the new balance.
func (s *ShopService) Buy(ctx context.Context, userID int64, key string) (*models.Purchase, int64, error) {
	item, ok := s.Item(key)
	if !ok {
		return nil, 0, invalid("item", "Такого товара нет")
	}
	p := &models.Purchase{UserID: userID, ItemName: item.Key, Price: item.Price, CreatedAt: s.now()}
	if err := s.store.Purchase(ctx, p); err != nil {
		return nil, 0, err
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return p, 0, err
	}
	return p, u.PCoins, nil
}

type BalanceService struct{ *deps }

func (s *BalanceService) ParseAmount(raw string) (int64, error) {
	return ParseInt("amount", raw, 1, 1_000_000)
}

func (s *BalanceService) Add(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, invalid("amount", "Сумма должна быть положительной")
	}
	return s.store.CreditCoins(ctx, userID, amount)
}

// Deduct re-checks the balance at the moment of the debit.
func (s *BalanceService) Deduct(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, invalid("amount", "Сумма должна быть положительной")
	}
	return s.store.DebitCoins(ctx, userID, amount)
}

type ClickerService struct{ *deps }

func (s *ClickerService) Tap(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.Tap(ctx, userID, s.now())
}

// RegenerateEnergy restores the hourly energy amount for everyone below max.
func (s *ClickerService) RegenerateEnergy(ctx context.Context) (int64, error) {
	return s.store.RestoreEnergy(ctx, s.cfg.EnergyRegenPerHour, s.cfg.EnergyMax)
}

type StatsService struct{ *deps }

func (s *StatsService) Snapshot(ctx context.Context) (*store.Stats, error) {
	return s.store.Stats(ctx)
}

func (s *StatsService) Reset(ctx context.Context) error {
	return s.store.ResetStats(ctx, s.cfg.EnergyMax)
}
