// Package partition shards a shuffled contributor list into fixed-size
// peer groups. Groups are always exactly groupSize members; a remainder
// that cannot fill a final group sits the round out.
package partition

import (
	"strconv"

	apperr "github.com/respectgame/engine/internal/errors"
	"github.com/respectgame/engine/internal/random"
)

// Validate reports whether n contributors can fill at least one group.
func Validate(n, groupSize int) error {
	if groupSize < 2 {
		return apperr.New(apperr.CodeInvalidParams, "group size must be at least 2")
	}
	if n < groupSize {
		return apperr.WithMetadata(apperr.CodeNotEnoughMembers,
			"not enough contributors to form a group",
			map[string]string{
				"have": strconv.Itoa(n),
				"need": strconv.Itoa(groupSize),
			})
	}
	return nil
}

// Shuffle returns members reordered by the supplied permutation source.
// The input slice is not modified.
func Shuffle(members []string, perm random.Perm) []string {
	shuffled := make([]string, len(members))
	for i, j := range perm(len(members)) {
		shuffled[i] = members[j]
	}
	return shuffled
}

// GroupedTotal is how many members of a shuffled list end up in groups:
// the largest multiple of groupSize that fits. Zero means the list cannot
// fill a single group.
func GroupedTotal(n, groupSize int) int {
	if groupSize < 1 {
		return 0
	}
	return (n / groupSize) * groupSize
}

// Batch cuts the next batch of groups from shuffled, starting at cursor.
// It emits whole groups until either the grouped total is reached or
// adding another group would exceed batchSize members, and returns the
// advanced cursor. At least one group is emitted per call so progress is
// guaranteed even with a batch size below the group size. Callers loop
// until the cursor reaches GroupedTotal(len(shuffled), groupSize).
//
// Each emitted group is a fresh slice, safe to retain.
func Batch(shuffled []string, cursor, batchSize, groupSize int) (groups [][]string, next int) {
	total := GroupedTotal(len(shuffled), groupSize)
	placed := 0
	for cursor < total && (placed == 0 || placed+groupSize <= batchSize) {
		group := make([]string, groupSize)
		copy(group, shuffled[cursor:cursor+groupSize])
		groups = append(groups, group)
		cursor += groupSize
		placed += groupSize
	}
	return groups, cursor
}

// Excluded returns the remainder members who did not fill a final group.
// The result is a fresh slice.
func Excluded(shuffled []string, groupSize int) []string {
	total := GroupedTotal(len(shuffled), groupSize)
	rest := shuffled[total:]
	if len(rest) == 0 {
		return nil
	}
	out := make([]string, len(rest))
	copy(out, rest)
	return out
}
