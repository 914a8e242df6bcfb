// Package random provides seed generation and the pseudo-random permutations
// used for peer-group partitioning.
//
// Seeds come from crypto/rand, but the permutation stream itself is a plain
// math/rand generator: grouping randomness is explicitly weak and
// non-cryptographic. It spreads members across groups; it is not a security
// mechanism.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Perm is a source of pseudo-random permutations. Callers inject it so tests
// can fix the shuffle.
type Perm func(n int) []int

// NewPerm returns a Perm backed by a math/rand generator with the given seed.
func NewPerm(seed int64) Perm {
	rng := mrand.New(mrand.NewSource(seed))
	return rng.Perm
}
