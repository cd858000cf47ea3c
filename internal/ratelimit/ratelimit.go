// Package ratelimit caps the number of inbound events a user may send per
// fixed window.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter reports whether one more event from userID is allowed.
type Limiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}

// Redis counts events with INCR and starts the window with EXPIRE on the
// first hit, so the count is shared by every bot replica.
type Redis struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedis(client *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{client: client, prefix: "ratelimit:", limit: limit, window: window}
}

// WithPrefix namespaces the counters so several limiters can share one redis.
func (l *Redis) WithPrefix(prefix string) *Redis {
	l.prefix = prefix
	return l
}

func (l *Redis) Allow(ctx context.Context, userID int64) (bool, error) {
	key := l.prefix + strconv.FormatInt(userID, 10)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate window: %w", err)
		}
	}
	return count <= int64(l.limit), nil
}

type window struct {
	count int
	reset time.Time
}

// Memory is the single-process limiter.
type Memory struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[int64]*window
}

func NewMemory(limit int, w time.Duration) *Memory {
	return &Memory{limit: limit, window: w, now: time.Now, windows: make(map[int64]*window)}
}

// WithClock replaces the time source; used by tests.
func (l *Memory) WithClock(now func() time.Time) *Memory {
	l.now = now
	return l
}

func (l *Memory) Allow(_ context.Context, userID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	w, ok := l.windows[userID]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(l.window)}
		l.windows[userID] = w
	}
	w.count++
	return w.count <= l.limit, nil
}

// Sweep drops expired windows.
func (l *Memory) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for id, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval until ctx is done.
func (l *Memory) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}
