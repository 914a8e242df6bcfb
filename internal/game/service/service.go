// Package service orchestrates the engine: it owns the aggregate, applies
// operations under a single-writer lock, persists state and events
// atomically, and publishes events to subscribers.
//
// Every mutation follows the same shape: validate against the live
// aggregate, apply to a deep copy, persist the copy and its events in one
// store transaction, then swap the copy in and publish. A failed persist
// leaves the live aggregate untouched.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperr "github.com/respectgame/engine/internal/errors"
	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/event"
	"github.com/respectgame/engine/internal/game/governance"
	"github.com/respectgame/engine/internal/random"
	"github.com/respectgame/engine/internal/storage"
)

const tracerName = "github.com/respectgame/engine/internal/game/service"

// Config wires the service's collaborators. Store is required; the rest
// default to production implementations.
type Config struct {
	Store storage.Store

	// Executor dispatches passed execute-transactions proposals. Optional;
	// without one, execute-transactions proposals cannot be created.
	Executor governance.Executor

	// Owner identifies the administrative caller allowed to update
	// parameters. Used only when the store holds no state yet.
	Owner string

	// Params seeds a fresh state. Ignored when the store holds state.
	Params domain.Params

	// Now is the clock seam. Defaults to time.Now.
	Now func() time.Time

	// NewSeed feeds the grouping shuffle. Defaults to random.NewSeed.
	NewSeed func() (int64, error)

	Logger zerolog.Logger
}

// Service is the engine facade. Safe for concurrent use.
type Service struct {
	mu    sync.Mutex
	state *domain.GameState

	store    storage.Store
	executor governance.Executor

	// executing tracks proposals whose executor dispatch is in flight, so
	// a concurrent retry cannot send the same transactions twice.
	executing map[uint64]bool

	nextSeq uint64

	now     func() time.Time
	newSeed func() (int64, error)

	subMu sync.Mutex
	subs  map[int]chan event.Event
	subID int

	log    zerolog.Logger
	tracer trace.Tracer
}

// New loads persisted state from the store, or initializes a fresh game
// when the store is empty.
func New(ctx context.Context, cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, apperr.New(apperr.CodeInvalidParams, "store is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewSeed == nil {
		cfg.NewSeed = random.NewSeed
	}

	state, lastSeq, err := cfg.Store.Load(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "load game state", err)
	}
	if state == nil {
		params := cfg.Params
		if params.GroupSize == 0 {
			params = domain.DefaultParams()
		}
		if err := params.Validate(); err != nil {
			return nil, err
		}
		state = domain.NewGameState(cfg.Owner, params, cfg.Now())
	}

	s := &Service{
		state:     state,
		store:     cfg.Store,
		executor:  cfg.Executor,
		executing: make(map[uint64]bool),
		nextSeq:   lastSeq + 1,
		now:       cfg.Now,
		newSeed:   cfg.NewSeed,
		subs:      make(map[int]chan event.Event),
		log:       cfg.Logger.With().Str("component", "game-service").Logger(),
		tracer:    otel.Tracer(tracerName),
	}

	if state.Halted {
		s.log.Error().Msg("loaded a halted game state; only reads will succeed")
	}
	return s, nil
}

// Subscribe registers an event channel with the given buffer. Events that
// do not fit a subscriber's buffer are dropped for that subscriber; the
// journal remains the source of truth.
func (s *Service) Subscribe(buffer int) (<-chan event.Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan event.Event, buffer)

	s.subMu.Lock()
	id := s.subID
	s.subID++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *Service) publish(events []event.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ev := range events {
		for _, ch := range s.subs {
			select {
			case ch <- ev:
			default:
				s.log.Warn().Str("type", string(ev.Type)).Msg("subscriber buffer full, event dropped")
			}
		}
	}
}

// mutation names an operation and whether it may run while a stage
// transition is parked mid-batch.
type mutation struct {
	op                string
	allowDuringSwitch bool
	allowWhenHalted   bool
}

// apply runs fn against a deep copy of the aggregate, persists the copy
// together with fn's events, swaps it in, and publishes. fn returning an
// error aborts with no visible effect.
func (s *Service) apply(ctx context.Context, m mutation, fn func(st *domain.GameState, now time.Time) ([]event.Event, error)) error {
	ctx, span := s.tracer.Start(ctx, "game."+m.op)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Halted && !m.allowWhenHalted {
		return apperr.New(apperr.CodeStateCorrupted, "engine is halted")
	}
	if s.state.Switch.InProgress && !m.allowDuringSwitch {
		return apperr.New(apperr.CodeSwitchInProgress, "stage transition in progress")
	}

	now := s.now().UTC()
	cp := s.state.DeepCopy()

	events, opErr := fn(cp, now)
	// Two failure modes still demand persistence: a corruption halt and an
	// expired-proposal flip. Everything else is a pure rejection.
	if opErr != nil &&
		!apperr.IsCode(opErr, apperr.CodeStateCorrupted) &&
		!apperr.IsCode(opErr, apperr.CodeProposalExpired) {
		return opErr
	}

	for i := range events {
		events[i].Seq = s.nextSeq + uint64(i)
	}

	if err := s.store.Save(ctx, cp, events); err != nil {
		s.log.Error().Err(err).Str("op", m.op).Msg("persist failed, state unchanged")
		return apperr.Wrap(apperr.CodeUnknown, "persist game state", err)
	}

	s.nextSeq += uint64(len(events))
	s.state = cp
	s.publish(events)

	if opErr != nil {
		return opErr
	}
	s.log.Debug().Str("op", m.op).Int("events", len(events)).Msg("operation applied")
	return nil
}
