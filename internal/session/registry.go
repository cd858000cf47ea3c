package session

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Registry is the single entry point for dialogue state. It owns the clock so
// that UpdatedAt is always set on write.
type Registry struct {
	store  Store
	budget int
	now    func() time.Time
}

func NewRegistry(store Store, retryBudget int) *Registry {
	return &Registry{store: store, budget: retryBudget, now: time.Now}
}

// WithClock replaces the time source.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Start replaces any dialogue the user has with a fresh one at step.
func (r *Registry) Start(ctx context.Context, userID, chatID int64, kind, step string) (*Dialogue, error) {
	now := r.now()
	d := &Dialogue{
		UserID:    userID,
		ChatID:    chatID,
		Kind:      kind,
		Step:      step,
		Values:    make(map[string]string),
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.Put(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Active returns the user's dialogue, or nil when there is none.
func (r *Registry) Active(ctx context.Context, userID int64) (*Dialogue, error) {
	d, err := r.store.Get(ctx, userID)
	if errors.Is(err, ErrNoDialogue) {
		return nil, nil
	}
	return d, err
}

// Save writes d back and touches UpdatedAt.
func (r *Registry) Save(ctx context.Context, d *Dialogue) error {
	d.UpdatedAt = r.now()
	return r.store.Put(ctx, d)
}

// Fail counts one invalid input. It reports true once the retry budget is
// spent, in which case the dialogue has already been cleared.
func (r *Registry) Fail(ctx context.Context, d *Dialogue) (bool, error) {
	d.Failures++
	if r.budget > 0 && d.Failures >= r.budget {
		return true, r.store.Delete(ctx, d.UserID)
	}
	return false, r.Save(ctx, d)
}

func (r *Registry) Clear(ctx context.Context, userID int64) error {
	return r.store.Delete(ctx, userID)
}

func (r *Registry) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}

// Sweep drops dialogues idle for longer than maxIdle.
func (r *Registry) Sweep(ctx context.Context, maxIdle time.Duration) (int, error) {
	return r.store.Sweep(ctx, r.now().Add(-maxIdle))
}

// StartSweeper runs Sweep every interval until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := r.Sweep(ctx, maxIdle)
				if err != nil {
					slog.Error("dialogue sweep failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("dialogue sweep completed", "removed", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
