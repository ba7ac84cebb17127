package rarity

import (
	"testing"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random/randomtest"
)

func TestNormalize(t *testing.T) {
	tcs := []struct {
		in   string
		want Rarity
	}{
		{in: "common", want: Common},
		{in: "Uncommon", want: Uncommon},
		{in: " RARE ", want: Rare},
		{in: "Very Rare", want: VeryRare},
		{in: "very_rare", want: VeryRare},
		{in: "veryRare", want: VeryRare},
		{in: "LEGENDARY", want: Legendary},
		{in: "", want: Common},
		{in: "artifact", want: Common},
	}
	for _, tc := range tcs {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWeightsGetDefaultsToCommon(t *testing.T) {
	w := Weights{Common: 7, Rare: 3}
	if got := w.Get(Rarity("mythic")); got != 7 {
		t.Fatalf("unknown bucket weight = %v, want 7", got)
	}
	if got := w.Get(Rare); got != 3 {
		t.Fatalf("rare weight = %v, want 3", got)
	}
}

// TestPickRestrictsToAvailable ensures buckets absent from the catalog are
// never drawn even when they carry weight.
func TestPickRestrictsToAvailable(t *testing.T) {
	weights := DefaultWeights()
	available := map[Rarity]bool{Rare: true}
	rng := random.New(5)
	for i := 0; i < 100; i++ {
		got, ok := Pick(weights, available, rng)
		if !ok || got != Rare {
			t.Fatalf("pick = %q (%v), want rare", got, ok)
		}
	}
}

// TestPickSkipsZeroWeight ensures zero-weight buckets are excluded.
func TestPickSkipsZeroWeight(t *testing.T) {
	weights := Weights{Common: 0, Legendary: 1}
	available := map[Rarity]bool{Common: true, Legendary: true}
	got, ok := Pick(weights, available, randomtest.Constant(0))
	if !ok || got != Legendary {
		t.Fatalf("pick = %q (%v), want legendary", got, ok)
	}
}

func TestPickNoneAvailable(t *testing.T) {
	if _, ok := Pick(DefaultWeights(), nil, random.New(1)); ok {
		t.Fatal("expected no pick without available buckets")
	}
	if _, ok := Pick(Weights{}, map[Rarity]bool{Common: true}, random.New(1)); ok {
		t.Fatal("expected no pick with zero weights")
	}
}
