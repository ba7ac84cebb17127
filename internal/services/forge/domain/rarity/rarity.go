// Package rarity defines the five canonical rarity buckets and the resolver
// that picks one bucket per draw.
package rarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/weighted"
)

// Rarity is a canonical rarity bucket.
type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Rare      Rarity = "rare"
	VeryRare  Rarity = "veryRare"
	Legendary Rarity = "legendary"
)

// Order lists the buckets in their fixed iteration order. The order only
// makes draws reproducible; it does not rank the buckets.
func Order() []Rarity {
	return []Rarity{Common, Uncommon, Rare, VeryRare, Legendary}
}

// Valid reports whether r is one of the canonical buckets.
func (r Rarity) Valid() bool {
	switch r {
	case Common, Uncommon, Rare, VeryRare, Legendary:
		return true
	default:
		return false
	}
}

// Normalize maps free-form rarity text onto a canonical bucket.
// Unrecognized or empty text maps to Common.
// A Caser is stateful, so each call folds with its own.
func Normalize(text string) Rarity {
	key := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, cases.Fold().String(text))

	switch key {
	case "common":
		return Common
	case "uncommon":
		return Uncommon
	case "rare":
		return Rare
	case "veryrare":
		return VeryRare
	case "legendary":
		return Legendary
	default:
		return Common
	}
}

// Weights holds one relative weight per bucket.
type Weights struct {
	Common    float64 `json:"common" yaml:"common"`
	Uncommon  float64 `json:"uncommon" yaml:"uncommon"`
	Rare      float64 `json:"rare" yaml:"rare"`
	VeryRare  float64 `json:"very_rare" yaml:"very_rare"`
	Legendary float64 `json:"legendary" yaml:"legendary"`
}

// DefaultWeights returns the standard distribution.
func DefaultWeights() Weights {
	return Weights{Common: 60, Uncommon: 25, Rare: 10, VeryRare: 4, Legendary: 1}
}

// Get returns the weight for r. Unknown buckets read the common weight.
func (w Weights) Get(r Rarity) float64 {
	switch r {
	case Uncommon:
		return w.Uncommon
	case Rare:
		return w.Rare
	case VeryRare:
		return w.VeryRare
	case Legendary:
		return w.Legendary
	default:
		return w.Common
	}
}

// IsZero reports whether no bucket carries weight.
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// Resolver picks a rarity bucket for one draw.
type Resolver interface {
	Resolve(weights Weights, available map[Rarity]bool, rng random.RNG) (Rarity, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(weights Weights, available map[Rarity]bool, rng random.RNG) (Rarity, bool)

// Resolve calls f.
func (f ResolverFunc) Resolve(weights Weights, available map[Rarity]bool, rng random.RNG) (Rarity, bool) {
	return f(weights, available, rng)
}

// Standard is the default resolver backed by Pick.
var Standard Resolver = ResolverFunc(Pick)

// Pick selects one bucket among those with positive weight that are present
// in available. It returns false when no bucket qualifies.
func Pick(weights Weights, available map[Rarity]bool, rng random.RNG) (Rarity, bool) {
	pool := make([]weighted.Candidate[Rarity], 0, 5)
	for _, r := range Order() {
		w := weights.Get(r)
		if !weighted.Eligible(w) || !available[r] {
			continue
		}
		pool = append(pool, weighted.Candidate[Rarity]{Value: r, Weight: w})
	}
	return weighted.Pick(pool, rng)
}
