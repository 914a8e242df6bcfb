package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/respectgame/engine/internal/game/domain"
	"github.com/respectgame/engine/internal/game/event"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "engine.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleState() *domain.GameState {
	s := domain.NewGameState("owner", domain.DefaultParams(), time.Unix(1000, 0).UTC())
	s.Members["a"] = &domain.Member{ID: "a", Name: "Alice", Approved: true}
	s.Members["a"].History.Push(210000, s.Params.PeriodsForAverage)
	s.JoinOrder = []string{"a"}
	s.NextJoinSeq = 1
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadEmptyStore(t *testing.T) {
	store := openStore(t)

	state, lastSeq, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state != nil || lastSeq != 0 {
		t.Fatalf("expected empty store, got state=%v seq=%d", state, lastSeq)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	saved := sampleState()
	events := []event.Event{
		event.New(event.TypeMemberJoined, 1, time.Unix(1000, 0), event.MemberJoinedPayload{MemberID: "a", Name: "Alice"}),
	}
	events[0].Seq = 1

	if err := store.Save(ctx, saved, events); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, lastSeq, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lastSeq != 1 {
		t.Fatalf("expected last seq 1, got %d", lastSeq)
	}
	if loaded.Owner != "owner" || loaded.Round.Number != 1 {
		t.Fatalf("unexpected state: owner=%q round=%d", loaded.Owner, loaded.Round.Number)
	}
	m := loaded.Members["a"]
	if m == nil || m.AverageRespect() != 210000 {
		t.Fatalf("member history did not survive the round trip: %+v", m)
	}
}

func TestSaveReplacesSnapshot(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := sampleState()
	if err := store.Save(ctx, first, nil); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := first.DeepCopy()
	second.Round.Number = 7
	if err := store.Save(ctx, second, nil); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, _, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Round.Number != 7 {
		t.Fatalf("expected latest snapshot, got round %d", loaded.Round.Number)
	}
}

func TestEventsPagination(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	state := sampleState()
	var events []event.Event
	for i := uint64(1); i <= 5; i++ {
		ev := event.New(event.TypeContributionSubmitted, 1, time.Unix(int64(1000+i), 0), event.ContributionSubmittedPayload{MemberID: "a"})
		ev.Seq = i
		events = append(events, ev)
	}
	if err := store.Save(ctx, state, events); err != nil {
		t.Fatalf("save: %v", err)
	}

	page, err := store.Events(ctx, 2, 2)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 3 || page[1].Seq != 4 {
		t.Fatalf("unexpected page: %+v", page)
	}

	rest, err := store.Events(ctx, 4, 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(rest) != 1 || rest[0].Seq != 5 {
		t.Fatalf("unexpected tail: %+v", rest)
	}

	raw, ok := rest[0].Payload.(json.RawMessage)
	if !ok {
		t.Fatalf("expected raw JSON payload, got %T", rest[0].Payload)
	}
	var payload event.ContributionSubmittedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.MemberID != "a" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestSaveEventSeqConflict(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	ev := event.New(event.TypeMemberJoined, 1, time.Unix(0, 0), nil)
	ev.Seq = 1
	if err := store.Save(ctx, sampleState(), []event.Event{ev}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Re-appending the same sequence number must fail the whole save.
	if err := store.Save(ctx, sampleState(), []event.Event{ev}); err == nil {
		t.Fatal("expected duplicate seq to fail")
	}
}
