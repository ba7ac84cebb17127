// Package weighted implements proportional random selection over weighted
// candidates.
package weighted

import (
	"math"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random"
)

// Candidate pairs a value with its selection weight.
type Candidate[T any] struct {
	Value  T
	Weight float64
}

// Eligible reports whether w can take part in a weighted draw.
func Eligible(w float64) bool {
	return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

// Pick returns one value chosen with probability proportional to its weight.
//
// Candidates with non-finite or non-positive weights are ignored. The second
// return value is false when no candidate is eligible or the eligible total
// is not positive. Floating-point residue after the cumulative walk resolves
// to the last eligible candidate.
func Pick[T any](candidates []Candidate[T], rng random.RNG) (T, bool) {
	idx := PickIndex(candidates, rng)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return candidates[idx].Value, true
}

// PickIndex is Pick returning the index into candidates, or -1.
func PickIndex[T any](candidates []Candidate[T], rng random.RNG) int {
	total := 0.0
	last := -1
	for i, c := range candidates {
		if !Eligible(c.Weight) {
			continue
		}
		total += c.Weight
		last = i
	}
	if last < 0 || !(total > 0) || math.IsInf(total, 0) {
		return -1
	}

	roll := random.OrLocal(rng).Float64() * total
	for i, c := range candidates {
		if !Eligible(c.Weight) {
			continue
		}
		roll -= c.Weight
		if roll < 0 {
			return i
		}
	}
	return last
}
