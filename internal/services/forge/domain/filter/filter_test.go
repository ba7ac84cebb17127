package filter

import "testing"

func TestParse(t *testing.T) {
	t.Run("empty string", func(t *testing.T) {
		e, err := Parse("  ", CatalogFields())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e != nil {
			t.Fatal("expected nil expr for empty filter")
		}
	})

	t.Run("valid filter", func(t *testing.T) {
		e, err := Parse(`rarity = "rare" AND value <= 500.0`, CatalogFields())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e == nil {
			t.Fatal("expected non-nil expr")
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		if _, err := Parse(`color = "red"`, CatalogFields()); err == nil {
			t.Fatal("expected error for undeclared field")
		}
	})

	t.Run("unsupported field type", func(t *testing.T) {
		if _, err := Parse(`x = "foo"`, Fields{"x": FieldType("complex")}); err == nil {
			t.Fatal("expected error for unsupported field type")
		}
	})
}

func candidateResolver(values map[string]any) Resolver {
	return func(name string) (any, bool) {
		v, ok := values[name]
		return v, ok
	}
}

// TestEvaluate ensures parsed catalog filters match the expected candidates.
func TestEvaluate(t *testing.T) {
	sword := candidateResolver(map[string]any{
		"id":      "sword",
		"name":    "Longsword",
		"type":    "weapon",
		"rarity":  "common",
		"value":   15.0,
		"weight":  1.0,
		"curated": false,
	})

	tests := []struct {
		filter string
		want   bool
	}{
		{`type = "weapon"`, true},
		{`type != "weapon"`, false},
		{`value <= 20.0`, true},
		{`value > 20.0`, false},
		{`value >= 15.0 AND rarity = "common"`, true},
		{`rarity = "rare" OR value < 100.0`, true},
		{`rarity = "rare" OR value > 100.0`, false},
		{`curated`, false},
		{`NOT curated`, true},
		{`NOT curated AND name = "Longsword"`, true},
		{`value > 10`, true},
		{`value > 100`, false},
		{`value = 15`, true},
		{`value != 15`, false},
		{`weight <= 1 AND rarity = "common"`, true},
	}

	for _, tc := range tests {
		t.Run(tc.filter, func(t *testing.T) {
			e, err := Parse(tc.filter, CatalogFields())
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			got, err := Evaluate(e, sword)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Evaluate(%q) = %v, want %v", tc.filter, got, tc.want)
			}
		})
	}
}

// TestEvaluateNilMatchesAll ensures an empty filter accepts every candidate.
func TestEvaluateNilMatchesAll(t *testing.T) {
	ok, err := Evaluate(nil, candidateResolver(nil))
	if err != nil || !ok {
		t.Fatalf("Evaluate(nil) = %v, %v; want true, nil", ok, err)
	}
}

// TestEvaluateUnknownField ensures a resolver miss surfaces as an error.
func TestEvaluateUnknownField(t *testing.T) {
	e, err := Parse(`name = "x"`, CatalogFields())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Evaluate(e, candidateResolver(map[string]any{})); err == nil {
		t.Fatal("expected error for unresolved field")
	}
}
