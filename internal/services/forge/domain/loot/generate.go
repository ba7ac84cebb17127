package loot

import (
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/catalog"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/rarity"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/weighted"
)

// Input describes the encounter being rewarded.
type Input struct {
	Difficulty float64  `json:"difficulty"`
	Scarcity   Scarcity `json:"scarcity"`
	Target     Target   `json:"target"`
}

// Settings carries the tunable tables for loot generation.
type Settings struct {
	RarityWeights  rarity.Weights `json:"rarity_weights" yaml:"rarity_weights"`
	GoldMultiplier float64        `json:"gold_multiplier" yaml:"gold_multiplier"`
	Scarcity       ScarcityTable  `json:"scarcity" yaml:"scarcity"`
}

// DefaultSettings returns the standard loot tables.
func DefaultSettings() Settings {
	return Settings{
		RarityWeights:  rarity.DefaultWeights(),
		GoldMultiplier: 1,
		Scarcity:       DefaultScarcityTable(),
	}
}

// Strategy supplies the replaceable parts of generation. Nil fields use the
// standard implementations.
type Strategy struct {
	Resolver rarity.Resolver
	RNG      random.RNG
}

// Entry is one aggregated item in the output.
type Entry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Output is the suggested treasure.
type Output struct {
	Currency int     `json:"currency"`
	Items    []Entry `json:"items"`
}

// Generate suggests treasure for in from items.
//
// Currency is computed independently of the catalog. Each draw resolves a
// rarity among the buckets present in the catalog and samples one item from
// it; a draw with no rarity or no item is skipped, so partial results are
// normal. Repeated picks are merged by identifier in first-seen order.
func Generate(in Input, items []catalog.Item, settings Settings, strategy Strategy) Output {
	rng := random.OrLocal(strategy.RNG)
	resolver := strategy.Resolver
	if resolver == nil {
		resolver = rarity.Standard
	}

	cr := ClampDifficulty(in.Difficulty)
	mult := settings.Scarcity.Multiplier(in.Scarcity)
	out := Output{
		Currency: Currency(cr, in.Target, mult, settings.GoldMultiplier, rng),
		Items:    make([]Entry, 0),
	}

	draws := DrawCount(cr, in.Target, mult, rng)
	if draws == 0 || len(items) == 0 {
		return out
	}

	pools := make(map[rarity.Rarity][]weighted.Candidate[int])
	available := make(map[rarity.Rarity]bool)
	for i, item := range items {
		if !weighted.Eligible(item.Weight) {
			continue
		}
		r := item.Rarity
		if !r.Valid() {
			r = rarity.Common
		}
		pools[r] = append(pools[r], weighted.Candidate[int]{Value: i, Weight: item.Weight})
		available[r] = true
	}

	index := make(map[string]int)
	for d := 0; d < draws; d++ {
		r, ok := resolver.Resolve(settings.RarityWeights, available, rng)
		if !ok {
			continue
		}
		idx, ok := weighted.Pick(pools[r], rng)
		if !ok {
			continue
		}
		item := items[idx]
		qty := 1 + rng.Intn(maxQuantity(item))
		if pos, seen := index[item.ID]; seen {
			out.Items[pos].Quantity += qty
			continue
		}
		index[item.ID] = len(out.Items)
		out.Items = append(out.Items, Entry{ID: item.ID, Name: item.Name, Quantity: qty})
	}
	return out
}

func maxQuantity(item catalog.Item) int {
	if item.MaxQuantity >= 1 {
		return item.MaxQuantity
	}
	if item.Rarity == rarity.Common || !item.Rarity.Valid() {
		return 3
	}
	return 1
}
