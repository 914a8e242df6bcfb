// Package memory provides an in-memory Store for tests and ephemeral runs.
package memory

import (
	"context"
	"sync"

	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/event"
	"github.com/respectgame/engine/internal/storage"
)

// Store keeps the aggregate and journal in process memory. Contents are
// lost on restart.
type Store struct {
	mu     sync.Mutex
	state  *domain.GameState
	events []event.Event
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Load implements storage.Store.
func (s *Store) Load(ctx context.Context) (*domain.GameState, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return nil, 0, nil
	}
	var lastSeq uint64
	if n := len(s.events); n > 0 {
		lastSeq = s.events[n-1].Seq
	}
	return s.state.DeepCopy(), lastSeq, nil
}

// Save implements storage.Store.
func (s *Store) Save(ctx context.Context, state *domain.GameState, events []event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state.DeepCopy()
	s.events = append(s.events, events...)
	return nil
}

// Events implements storage.Store.
func (s *Store) Events(ctx context.Context, after uint64, limit int) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []event.Event
	for _, ev := range s.events {
		if ev.Seq <= after {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	return nil
}

var _ storage.Store = (*Store)(nil)
