// Package session keeps per-user dialogue state and per-chat navigation
// breadcrumbs between events.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNoDialogue is returned by backends when the user has no active dialogue.
var ErrNoDialogue = errors.New("no active dialogue")

// Dialogue is one in-progress multi-step flow. A user has at most one.
type Dialogue struct {
	UserID    int64             `json:"user_id"`
	ChatID    int64             `json:"chat_id"`
	Kind      string            `json:"kind"`
	Step      string            `json:"step"`
	Values    map[string]string `json:"values"`
	Photos    []string          `json:"photos,omitempty"`
	Failures  int               `json:"failures"`
	StartedAt time.Time         `json:"started_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Get returns a collected value or "".
func (d *Dialogue) Get(key string) string {
	if d.Values == nil {
		return ""
	}
	return d.Values[key]
}

// Set stores a collected value.
func (d *Dialogue) Set(key, value string) {
	if d.Values == nil {
		d.Values = make(map[string]string)
	}
	d.Values[key] = value
}

// Advance moves to the next step and resets the failure counter.
func (d *Dialogue) Advance(step string) {
	d.Step = step
	d.Failures = 0
}

func (d *Dialogue) clone() *Dialogue {
	cp := *d
	if d.Values != nil {
		cp.Values = make(map[string]string, len(d.Values))
		for k, v := range d.Values {
			cp.Values[k] = v
		}
	}
	if d.Photos != nil {
		cp.Photos = append([]string(nil), d.Photos...)
	}
	return &cp
}

// Store persists dialogues keyed by user id.
type Store interface {
	Get(ctx context.Context, userID int64) (*Dialogue, error)
	Put(ctx context.Context, d *Dialogue) error
	Delete(ctx context.Context, userID int64) error
	// Sweep removes dialogues not updated since olderThan and returns how many.
	Sweep(ctx context.Context, olderThan time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}
