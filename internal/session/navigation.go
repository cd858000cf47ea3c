package session

import (
	"context"
	"sync"
	"time"
)

type breadcrumbs struct {
	menus   []string
	touched time.Time
}

// Navigation keeps a breadcrumb stack of menu names per chat.
type Navigation struct {
	mu     sync.Mutex
	stacks map[int64]*breadcrumbs
	now    func() time.Time
}

func NewNavigation() *Navigation {
	return &Navigation{stacks: make(map[int64]*breadcrumbs), now: time.Now}
}

// WithClock replaces the time source.
func (n *Navigation) WithClock(now func() time.Time) *Navigation {
	n.now = now
	return n
}

// Push enters menu unless it is already on top.
func (n *Navigation) Push(chatID int64, menu string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.stacks[chatID]
	if !ok {
		b = &breadcrumbs{}
		n.stacks[chatID] = b
	}
	b.touched = n.now()
	if len(b.menus) > 0 && b.menus[len(b.menus)-1] == menu {
		return
	}
	b.menus = append(b.menus, menu)
}

// Pop leaves the current menu and returns the one below it, or "" at the root.
// A chat whose stack empties is forgotten.
func (n *Navigation) Pop(chatID int64) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.stacks[chatID]
	if !ok {
		return ""
	}
	if len(b.menus) > 0 {
		b.menus = b.menus[:len(b.menus)-1]
	}
	if len(b.menus) == 0 {
		delete(n.stacks, chatID)
		return ""
	}
	b.touched = n.now()
	return b.menus[len(b.menus)-1]
}

func (n *Navigation) Current(chatID int64) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.stacks[chatID]
	if !ok || len(b.menus) == 0 {
		return ""
	}
	return b.menus[len(b.menus)-1]
}

func (n *Navigation) Reset(chatID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.stacks, chatID)
}

// Len reports how many chats have a breadcrumb stack.
func (n *Navigation) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stacks)
}

// Sweep forgets stacks untouched for longer than maxIdle.
func (n *Navigation) Sweep(maxIdle time.Duration) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := n.now().Add(-maxIdle)
	removed := 0
	for chatID, b := range n.stacks {
		if b.touched.Before(cutoff) {
			delete(n.stacks, chatID)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
func (n *Navigation) StartSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n.Sweep(maxIdle)
			case <-ctx.Done():
				return
			}
		}
	}()
}
