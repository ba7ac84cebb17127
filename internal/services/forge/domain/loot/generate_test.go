package loot

import (
	"math"
	"testing"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random/randomtest"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/catalog"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/rarity"
)

// TestGenerateEmptyCatalogStillPaysCurrency covers a scarce pocket reward at
// challenge rating 0 with nothing in the catalog.
func TestGenerateEmptyCatalogStillPaysCurrency(t *testing.T) {
	out := Generate(Input{Difficulty: 0, Scarcity: Scarce, Target: Pocket}, nil, DefaultSettings(), Strategy{
		RNG: randomtest.Constant(0.5),
	})
	variance := 0.85 + 0.5*(1.20-0.85)
	want := int(math.Round(BaseCurrency(0, Pocket) * 0.75 * 1 * variance))
	if out.Currency != want {
		t.Fatalf("currency = %d, want %d", out.Currency, want)
	}
	if out.Items == nil || len(out.Items) != 0 {
		t.Fatalf("items = %#v, want empty non-nil slice", out.Items)
	}
}

// TestGenerateAggregatesRepeats ensures repeated picks merge into one entry.
func TestGenerateAggregatesRepeats(t *testing.T) {
	items := []catalog.Item{
		{ID: "potion", Name: "Potion of Healing", Rarity: rarity.Common, Value: 50, Weight: 1, MaxQuantity: 2},
	}
	out := Generate(Input{Difficulty: 30, Scarcity: Normal, Target: Horde}, items, DefaultSettings(), Strategy{
		RNG: random.New(8),
	})
	if len(out.Items) != 1 {
		t.Fatalf("items = %d, want 1 aggregated entry", len(out.Items))
	}
	// cr 30 horde: 7..9 draws, each 1..2 units.
	if q := out.Items[0].Quantity; q < 7 || q > 18 {
		t.Fatalf("quantity = %d, want 7..18", q)
	}
	if out.Items[0].Name != "Potion of Healing" {
		t.Fatalf("name = %q", out.Items[0].Name)
	}
}

// TestGenerateRespectsRarityAvailability ensures only buckets present in
// the catalog are drawn and ineligible items never appear.
func TestGenerateRespectsRarityAvailability(t *testing.T) {
	items := []catalog.Item{
		{ID: "relic", Name: "Relic", Rarity: rarity.Legendary, Weight: 1},
		{ID: "broken", Name: "Broken", Rarity: rarity.Common, Weight: 0},
		{ID: "nan", Name: "Nan", Rarity: rarity.Common, Weight: math.NaN()},
	}
	rng := random.New(21)
	for i := 0; i < 50; i++ {
		out := Generate(Input{Difficulty: 15, Target: Horde}, items, DefaultSettings(), Strategy{RNG: rng})
		for _, e := range out.Items {
			if e.ID != "relic" {
				t.Fatalf("unexpected item %q", e.ID)
			}
			if e.Quantity < 1 {
				t.Fatalf("quantity = %d", e.Quantity)
			}
		}
	}
}

// TestGenerateDefaultQuantity ensures unspecified max quantity is 3 for
// common items and 1 otherwise.
func TestGenerateDefaultQuantity(t *testing.T) {
	if got := maxQuantity(catalog.Item{Rarity: rarity.Common}); got != 3 {
		t.Fatalf("common default = %d, want 3", got)
	}
	if got := maxQuantity(catalog.Item{Rarity: rarity.Rare}); got != 1 {
		t.Fatalf("rare default = %d, want 1", got)
	}
	if got := maxQuantity(catalog.Item{Rarity: rarity.Rare, MaxQuantity: 4}); got != 4 {
		t.Fatalf("explicit max = %d, want 4", got)
	}
}

// TestGenerateSkipsUnresolvedDraws ensures a resolver that never finds a
// rarity yields no items and no error.
func TestGenerateSkipsUnresolvedDraws(t *testing.T) {
	items := []catalog.Item{{ID: "a", Name: "A", Rarity: rarity.Common, Weight: 1}}
	never := rarity.ResolverFunc(func(rarity.Weights, map[rarity.Rarity]bool, random.RNG) (rarity.Rarity, bool) {
		return "", false
	})
	out := Generate(Input{Difficulty: 20, Target: Horde}, items, DefaultSettings(), Strategy{Resolver: never, RNG: random.New(1)})
	if len(out.Items) != 0 {
		t.Fatalf("items = %v, want none", out.Items)
	}
	if out.Currency <= 0 {
		t.Fatalf("currency = %d, want positive", out.Currency)
	}
}

// TestGenerateSeededDeterminism ensures equal seeds give equal output.
func TestGenerateSeededDeterminism(t *testing.T) {
	items := []catalog.Item{
		{ID: "a", Name: "A", Rarity: rarity.Common, Weight: 1},
		{ID: "b", Name: "B", Rarity: rarity.Uncommon, Weight: 2},
		{ID: "c", Name: "C", Rarity: rarity.Rare, Weight: 1},
	}
	in := Input{Difficulty: 12, Scarcity: Abundant, Target: Horde}
	first := Generate(in, items, DefaultSettings(), Strategy{RNG: random.New(77)})
	second := Generate(in, items, DefaultSettings(), Strategy{RNG: random.New(77)})
	if first.Currency != second.Currency || len(first.Items) != len(second.Items) {
		t.Fatalf("outputs differ: %+v vs %+v", first, second)
	}
	for i := range first.Items {
		if first.Items[i] != second.Items[i] {
			t.Fatalf("item %d differs: %+v vs %+v", i, first.Items[i], second.Items[i])
		}
	}
}
