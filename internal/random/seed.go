// Package random provides the RNG capability threaded through the selection
// engine and the seed helpers used to make generation replayable.
//
// Every engine call receives its own RNG. Nothing in this repository reads
// from the package-level math/rand source.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// RNG is the randomness capability required by the engine.
//
// *math/rand.Rand satisfies it.
type RNG interface {
	// Float64 returns a number in [0.0,1.0).
	Float64() float64
	// Intn returns a number in [0,n). It panics if n <= 0.
	Intn(n int) int
}

// MaxSeed bounds drawn seeds so they survive JSON numbers intact.
const MaxSeed = 1<<53 - 1

// NewSeed generates a random seed in [1, MaxSeed] using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])%MaxSeed) + 1, nil
}

// New returns a generator seeded with seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewSeeded returns a generator and the seed it was built from. A zero seed
// is replaced by a fresh crypto seed so callers can report it for replay.
func NewSeeded(seed int64) (*rand.Rand, int64, error) {
	if seed == 0 {
		fresh, err := NewSeed()
		if err != nil {
			return nil, 0, err
		}
		seed = fresh
	}
	return New(seed), seed, nil
}

// OrLocal returns rng, or a freshly seeded local generator when rng is nil.
func OrLocal(rng RNG) RNG {
	if rng != nil {
		return rng
	}
	r, _, err := NewSeeded(0)
	if err != nil {
		// crypto/rand is unavailable; a fixed seed still terminates.
		return New(1)
	}
	return r
}
