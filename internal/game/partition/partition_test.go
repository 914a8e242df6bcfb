package partition

import (
	"fmt"
	"testing"

	apperr "github.com/respectgame/engine/internal/errors"
	"github.com/respectgame/engine/internal/random"
)

func TestValidate(t *testing.T) {
	if err := Validate(5, 5); err != nil {
		t.Fatalf("exactly one group must validate: %v", err)
	}
	if err := Validate(4, 5); !apperr.IsCode(err, apperr.CodeNotEnoughMembers) {
		t.Fatalf("expected %s, got %v", apperr.CodeNotEnoughMembers, err)
	}
	if err := Validate(10, 1); !apperr.IsCode(err, apperr.CodeInvalidParams) {
		t.Fatalf("expected %s, got %v", apperr.CodeInvalidParams, err)
	}
}

func memberIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%03d", i)
	}
	return ids
}

// splitAll drives Batch to completion with a large batch size.
func splitAll(t *testing.T, shuffled []string, groupSize int) [][]string {
	t.Helper()
	var groups [][]string
	cursor := 0
	total := GroupedTotal(len(shuffled), groupSize)
	for cursor < total {
		batch, next := Batch(shuffled, cursor, len(shuffled), groupSize)
		if next <= cursor {
			t.Fatal("batch made no progress")
		}
		groups = append(groups, batch...)
		cursor = next
	}
	return groups
}

func TestBatchBuildsExactGroups(t *testing.T) {
	groups := splitAll(t, memberIDs(500), 5)
	if len(groups) != 100 {
		t.Fatalf("expected 100 groups, got %d", len(groups))
	}
	for i, g := range groups {
		if len(g) != 5 {
			t.Fatalf("group %d has %d members, expected 5", i, len(g))
		}
	}
	if excluded := Excluded(memberIDs(500), 5); excluded != nil {
		t.Fatalf("expected no excluded members, got %v", excluded)
	}
}

func TestBatchExcludesRemainder(t *testing.T) {
	ids := memberIDs(103)
	groups := splitAll(t, ids, 5)
	if len(groups) != 20 {
		t.Fatalf("expected 20 full groups, got %d", len(groups))
	}

	excluded := Excluded(ids, 5)
	if len(excluded) != 3 {
		t.Fatalf("expected 3 excluded members, got %d", len(excluded))
	}

	seen := make(map[string]bool)
	for _, g := range groups {
		for _, id := range g {
			if seen[id] {
				t.Fatalf("member %s appears in more than one group", id)
			}
			seen[id] = true
		}
	}
	for _, id := range excluded {
		if seen[id] {
			t.Fatalf("excluded member %s also appears in a group", id)
		}
	}
}

func TestBatchRespectsBatchSize(t *testing.T) {
	ids := memberIDs(500)

	groups, cursor := Batch(ids, 0, 400, 5)
	if len(groups) != 80 || cursor != 400 {
		t.Fatalf("first batch: expected 80 groups and cursor 400, got %d and %d", len(groups), cursor)
	}

	groups, cursor = Batch(ids, cursor, 400, 5)
	if len(groups) != 20 || cursor != 500 {
		t.Fatalf("second batch: expected 20 groups and cursor 500, got %d and %d", len(groups), cursor)
	}
}

func TestBatchAlwaysMakesProgress(t *testing.T) {
	// Batch size below the group size still emits one group per call.
	groups, cursor := Batch(memberIDs(10), 0, 1, 5)
	if len(groups) != 1 || cursor != 5 {
		t.Fatalf("expected one group and cursor 5, got %d and %d", len(groups), cursor)
	}
}

func TestGroupedTotal(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{500, 5, 500},
		{103, 5, 100},
		{4, 5, 0},
		{0, 5, 0},
		{10, 0, 0},
	}
	for _, tc := range tests {
		if got := GroupedTotal(tc.n, tc.size); got != tc.want {
			t.Fatalf("GroupedTotal(%d, %d): expected %d, got %d", tc.n, tc.size, tc.want, got)
		}
	}
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	ids := memberIDs(50)

	first := Shuffle(ids, random.NewPerm(42))
	second := Shuffle(ids, random.NewPerm(42))
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("same seed must produce the same shuffle")
		}
	}

	other := Shuffle(ids, random.NewPerm(43))
	same := true
	for i := range first {
		if first[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds should produce different shuffles")
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	ids := memberIDs(10)
	Shuffle(ids, random.NewPerm(7))
	for i, id := range ids {
		if id != fmt.Sprintf("m%03d", i) {
			t.Fatal("input slice was mutated")
		}
	}
}
