package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps dialogues in a map. Values are copied on the way in and out.
type MemoryStore struct {
	mu        sync.RWMutex
	dialogues map[int64]*Dialogue
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{dialogues: make(map[int64]*Dialogue)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (*Dialogue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dialogues[userID]
	if !ok {
		return nil, ErrNoDialogue
	}
	return d.clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, d *Dialogue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogues[d.UserID] = d.clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dialogues, userID)
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, d := range s.dialogues {
		if d.UpdatedAt.Before(olderThan) {
			delete(s.dialogues, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dialogues), nil
}
