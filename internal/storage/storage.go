// Package storage defines how the engine persists its aggregate and its
// event journal.
package storage

import (
	"context"

	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/event"
)

// Store persists the game aggregate alongside its event journal.
//
// Save must write the state snapshot and append the events atomically; a
// snapshot without its events, or events without their snapshot, would
// leave mirrors and the engine disagreeing after a crash.
type Store interface {
	// Load returns the persisted aggregate and the sequence number of the
	// last journaled event. A store with no saved state returns (nil, 0, nil).
	Load(ctx context.Context) (*domain.GameState, uint64, error)

	// Save atomically replaces the state snapshot and appends events. The
	// events arrive already sequenced by the caller.
	Save(ctx context.Context, state *domain.GameState, events []event.Event) error

	// Events returns journaled events with sequence numbers greater than
	// after, oldest first, up to limit. A limit of 0 means no limit.
	Events(ctx context.Context, after uint64, limit int) ([]event.Event, error)

	Close() error
}
