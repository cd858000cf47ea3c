package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/bot"
	"github.com/TheX6/partnerkin-super-bot/internal/ratelimit"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	ErrPoolClosed  = errors.New("worker pool closed")
	ErrQueueFull   = errors.New("user queue full")
	ErrRateLimited = errors.New("rate limited")
)

// HandleFunc processes one event. It must not panic.
type HandleFunc func(ctx context.Context, ev bot.Event)

type worker struct {
	jobs chan bot.Event
}

// Pool runs events of one user strictly in order on that user's worker while
// different users proceed concurrently. A worker exits once it has been idle.
type Pool struct {
	handle    HandleFunc
	limiter   ratelimit.Limiter
	log       *slog.Logger
	queueSize int
	idle      time.Duration
	timeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	workers map[int64]*worker
	closed  bool
	wg      sync.WaitGroup
}

type PoolOption func(*Pool)

func WithLimiter(l ratelimit.Limiter) PoolOption {
	return func(p *Pool) { p.limiter = l }
}

func WithPoolLogger(l *slog.Logger) PoolOption {
	return func(p *Pool) { p.log = l }
}

func WithQueueSize(n int) PoolOption {
	return func(p *Pool) { p.queueSize = n }
}

func WithIdleTimeout(d time.Duration) PoolOption {
	return func(p *Pool) { p.idle = d }
}

// WithHandleTimeout bounds the handling of a single event.
func WithHandleTimeout(d time.Duration) PoolOption {
	return func(p *Pool) { p.timeout = d }
}

func NewPool(handle HandleFunc, opts ...PoolOption) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		handle:    handle,
		log:       slog.Default(),
		queueSize: 16,
		idle:      time.Minute,
		timeout:   30 * time.Second,
		ctx:       ctx,
		cancel:    cancel,
		workers:   make(map[int64]*worker),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit queues ev on its user's worker.
func (p *Pool) Submit(ctx context.Context, ev bot.Event) error {
	if p.limiter != nil {
		ok, err := p.limiter.Allow(ctx, ev.UserID)
		if err != nil {
			p.log.Warn("rate limiter unavailable", "user_id", ev.UserID, "error", err)
		} else if !ok {
			return ErrRateLimited
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	w, ok := p.workers[ev.UserID]
	if !ok {
		w = &worker{jobs: make(chan bot.Event, p.queueSize)}
		p.workers[ev.UserID] = w
		p.wg.Add(1)
		go p.run(ev.UserID, w)
	}
	select {
	case w.jobs <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitUpdate normalizes and queues a raw update. Dropped updates are logged.
func (p *Pool) SubmitUpdate(ctx context.Context, u tgbotapi.Update) {
	ev, ok := Normalize(u)
	if !ok {
		return
	}
	if err := p.Submit(ctx, ev); err != nil {
		p.log.Warn("update dropped", "update_id", u.UpdateID, "user_id", ev.UserID, "error", err)
	}
}

func (p *Pool) run(userID int64, w *worker) {
	defer p.wg.Done()
	timer := time.NewTimer(p.idle)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-w.jobs:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
			p.handle(ctx, ev)
			cancel()
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.idle)
		case <-timer.C:
			p.mu.Lock()
			if len(w.jobs) == 0 && p.workers[userID] == w {
				delete(p.workers, userID)
				p.mu.Unlock()
				return
			}
			p.mu.Unlock()
			timer.Reset(p.idle)
		}
	}
}

// Workers is the number of live user workers.
func (p *Pool) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// Close stops accepting events and waits for queued ones to finish or ctx to
// expire, whichever comes first. In-flight handlers are cancelled on expiry.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		for id, w := range p.workers {
			close(w.jobs)
			delete(p.workers, id)
		}
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}
