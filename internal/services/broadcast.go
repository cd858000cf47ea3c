package services

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/TheX6/partnerkin-super-bot/internal/models"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const (
	TargetAll      = "all"
	TargetInterns  = "interns"
	TargetVeterans = "veterans"
	TargetUser     = "user"
)

// Report is the outcome of one fan-out.
type Report struct {
	Sent   int
	Failed int
}

// DeliverFunc sends one message to one chat.
type DeliverFunc func(ctx context.Context, chatID int64) error

type Broadcaster struct {
	*deps
	limit int
}

// Recipients resolves a broadcast target to chat ids, excluding the sender.
func (b *Broadcaster) Recipients(ctx context.Context, target string, senderID, userID int64) ([]int64, error) {
	filter := store.UserFilter{RegisteredOnly: true, ExcludeID: senderID}
	switch target {
	case TargetAll:
	case TargetInterns:
		filter.Role = models.RoleIntern
	case TargetVeterans:
		filter.Role = models.RoleVeteran
	case TargetUser:
		if userID == 0 {
			return nil, invalid("user", "Не выбран получатель")
		}
		return []int64{userID}, nil
	default:
		return nil, invalid("target", "Выбери получателей кнопкой")
	}
	users, err := b.store.ListUsers(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.TelegramID)
	}
	return ids, nil
}

// Fanout delivers to every recipient concurrently and waits for all of them.
// Individual failures are logged and counted, never retried.
func (b *Broadcaster) Fanout(ctx context.Context, recipients []int64, deliver DeliverFunc) Report {
	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)
	for _, id := range recipients {
		g.Go(func() error {
			if err := deliver(gctx, id); err != nil {
				failed.Add(1)
				b.log.Warn("delivery failed", "chat_id", id, "error", err)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return Report{Sent: int(sent.Load()), Failed: int(failed.Load())}
}

// Record stores the delivery report of an admin mailing.
func (b *Broadcaster) Record(ctx context.Context, adminID int64, target, text string, photos []string, r Report) error {
	if photos == nil {
		photos = []string{}
	}
	raw, err := json.Marshal(photos)
	if err != nil {
		return err
	}
	return b.store.CreateBroadcast(ctx, &models.Broadcast{
		AdminID:   adminID,
		Target:    target,
		Text:      text,
		Photos:    datatypes.JSON(raw),
		Sent:      r.Sent,
		Failed:    r.Failed,
		CreatedAt: b.now(),
	})
}
