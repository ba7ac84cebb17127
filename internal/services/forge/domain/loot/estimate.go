// Package loot suggests encounter-scaled treasure: a currency amount plus a
// handful of catalog items drawn by rarity.
package loot

import (
	"math"
	"strings"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random"
)

// MaxDifficulty is the highest supported challenge rating.
const MaxDifficulty = 30

// Target selects the size of the treasure.
type Target string

const (
	Pocket Target = "pocket"
	Horde  Target = "horde"
)

// ParseTarget maps text onto a Target; anything but "horde" is a pocket.
func ParseTarget(text string) Target {
	if strings.EqualFold(strings.TrimSpace(text), string(Horde)) {
		return Horde
	}
	return Pocket
}

// Scarcity describes how rich the surrounding economy is.
type Scarcity string

const (
	Abundant Scarcity = "abundant"
	Normal   Scarcity = "normal"
	Scarce   Scarcity = "scarce"
)

// ParseScarcity maps text onto a Scarcity; unknown text is Normal.
func ParseScarcity(text string) Scarcity {
	switch Scarcity(strings.ToLower(strings.TrimSpace(text))) {
	case Abundant:
		return Abundant
	case Scarce:
		return Scarce
	default:
		return Normal
	}
}

// ScarcityTable holds the multiplier applied per scarcity level.
type ScarcityTable struct {
	Abundant float64 `json:"abundant" yaml:"abundant"`
	Normal   float64 `json:"normal" yaml:"normal"`
	Scarce   float64 `json:"scarce" yaml:"scarce"`
}

// DefaultScarcityTable returns the standard multipliers.
func DefaultScarcityTable() ScarcityTable {
	return ScarcityTable{Abundant: 1.25, Normal: 1.00, Scarce: 0.75}
}

// Multiplier returns the multiplier for s. Invalid entries fall back to the
// default table.
func (t ScarcityTable) Multiplier(s Scarcity) float64 {
	def := DefaultScarcityTable()
	pick := func(v, fallback float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fallback
		}
		return v
	}
	switch s {
	case Abundant:
		return pick(t.Abundant, def.Abundant)
	case Scarce:
		return pick(t.Scarce, def.Scarce)
	default:
		return pick(t.Normal, def.Normal)
	}
}

// ClampDifficulty clamps cr into [0, MaxDifficulty]. NaN maps to 0.
func ClampDifficulty(cr float64) float64 {
	switch {
	case math.IsNaN(cr), cr < 0:
		return 0
	case cr > MaxDifficulty:
		return MaxDifficulty
	default:
		return cr
	}
}

type currencyCurve struct {
	base, linear, quadratic float64
	varianceLow, varianceHi float64
}

func curve(target Target) currencyCurve {
	if target == Horde {
		return currencyCurve{base: 60, linear: 24, quadratic: 3.2, varianceLow: 0.80, varianceHi: 1.30}
	}
	return currencyCurve{base: 10, linear: 8, quadratic: 0.6, varianceLow: 0.85, varianceHi: 1.20}
}

// BaseCurrency is the currency baseline before scarcity, gold multiplier and
// variance. It is non-decreasing in cr.
func BaseCurrency(cr float64, target Target) float64 {
	cr = ClampDifficulty(cr)
	c := curve(target)
	return c.base + c.linear*cr + c.quadratic*cr*cr
}

// Currency returns the final rounded currency amount.
func Currency(cr float64, target Target, scarcity, goldMultiplier float64, rng random.RNG) int {
	c := curve(target)
	variance := c.varianceLow + random.OrLocal(rng).Float64()*(c.varianceHi-c.varianceLow)
	amount := math.Round(BaseCurrency(cr, target) * scarcity * clampGold(goldMultiplier) * variance)
	if math.IsNaN(amount) || amount < 0 {
		return 0
	}
	return int(amount)
}

// DrawCount returns how many independent item draws to attempt.
// Pocket treasure can legitimately yield zero draws.
func DrawCount(cr float64, target Target, scarcity float64, rng random.RNG) int {
	cr = ClampDifficulty(cr)
	rng = random.OrLocal(rng)

	var baseline float64
	if target == Horde {
		baseline = math.Floor(cr/5) + 1 + float64(rng.Intn(3))
	} else {
		baseline = math.Floor((cr-1)/8) + float64(rng.Intn(2))
	}
	n := math.Round(baseline * scarcity)
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	return int(n)
}

func clampGold(v float64) float64 {
	switch {
	case math.IsNaN(v), math.IsInf(v, 0):
		return 1
	case v < 0:
		return 0
	default:
		return v
	}
}
