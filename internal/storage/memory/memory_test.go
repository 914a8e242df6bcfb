package memory

import (
	"context"
	"testing"
	"time"

	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/event"
)

func TestLoadEmpty(t *testing.T) {
	s := New()
	state, seq, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state != nil || seq != 0 {
		t.Fatalf("expected empty store, got %v %d", state, seq)
	}
}

func TestSaveIsolatesState(t *testing.T) {
	s := New()
	ctx := context.Background()

	state := domain.NewGameState("owner", domain.DefaultParams(), time.Unix(0, 0))
	ev := event.New(event.TypeMemberJoined, 1, time.Unix(0, 0), nil)
	ev.Seq = 1
	if err := s.Save(ctx, state, []event.Event{ev}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the saved-in state must not leak into the store.
	state.Owner = "mutated"

	loaded, seq, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Owner != "owner" {
		t.Fatal("store must hold its own copy of the state")
	}
	if seq != 1 {
		t.Fatalf("expected last seq 1, got %d", seq)
	}

	// And mutating the loaded copy must not leak back.
	loaded.Owner = "mutated-again"
	reloaded, _, _ := s.Load(ctx)
	if reloaded.Owner != "owner" {
		t.Fatal("load must return an independent copy")
	}
}

func TestEventsAfterAndLimit(t *testing.T) {
	s := New()
	ctx := context.Background()
	state := domain.NewGameState("owner", domain.DefaultParams(), time.Unix(0, 0))

	var events []event.Event
	for i := uint64(1); i <= 4; i++ {
		ev := event.New(event.TypeProposalVoted, 1, time.Unix(0, 0), nil)
		ev.Seq = i
		events = append(events, ev)
	}
	if err := s.Save(ctx, state, events); err != nil {
		t.Fatalf("save: %v", err)
	}

	page, err := s.Events(ctx, 1, 2)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 2 || page[1].Seq != 3 {
		t.Fatalf("unexpected page: %+v", page)
	}
}
