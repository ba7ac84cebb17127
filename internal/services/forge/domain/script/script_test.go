package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/rarity"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/stock"
)

const potionScript = `
function score(candidate, state)
  if candidate.type == "potion" then
    return state.default_score * 2
  end
  if candidate.curated then
    return 0
  end
  return state.default_score
end
`

func scoreState() stock.ScoreState {
	return stock.ScoreState{TargetCount: 4, Weights: rarity.DefaultWeights()}
}

func TestEvaluatorScoresWithScript(t *testing.T) {
	e, err := New(potionScript)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	potion := stock.Candidate{ID: "p", Type: "potion", Rarity: rarity.Common}
	def := stock.Score(potion, scoreState())
	if got := e.Score(potion, scoreState()); got != def*2 {
		t.Fatalf("potion score = %v, want %v", got, def*2)
	}

	sword := stock.Candidate{ID: "s", Type: "weapon", Rarity: rarity.Rare}
	if got, want := e.Score(sword, scoreState()), stock.Score(sword, scoreState()); got != want {
		t.Fatalf("sword score = %v, want %v", got, want)
	}

	if got := e.Score(stock.Candidate{ID: "c", Curated: true}, scoreState()); got != 0 {
		t.Fatalf("curated score = %v, want 0", got)
	}
	if e.Err() != nil {
		t.Fatalf("unexpected script error: %v", e.Err())
	}
}

func TestEvaluatorFallsBackOnScriptError(t *testing.T) {
	e, err := New(`function score(candidate, state) error("boom") end`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := stock.Candidate{ID: "a", Rarity: rarity.Uncommon}
	if got, want := e.Score(c, scoreState()), stock.Score(c, scoreState()); got != want {
		t.Fatalf("score = %v, want default %v", got, want)
	}
	if e.Err() == nil {
		t.Fatal("expected recorded script error")
	}
}

func TestEvaluatorStopsRunawayScore(t *testing.T) {
	e, err := New(`function score(candidate, state) while true do end end`, WithInstructionLimit(10_000))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := stock.Candidate{ID: "a", Rarity: rarity.Common}
	if got, want := e.Score(c, scoreState()), stock.Score(c, scoreState()); got != want {
		t.Fatalf("score = %v, want default %v", got, want)
	}
	if e.Err() == nil || !strings.Contains(e.Err().Error(), "instruction limit") {
		t.Fatalf("err = %v, want instruction limit error", e.Err())
	}

	// The limit applies per call, so a later call still runs.
	if got, want := e.Score(c, scoreState()), stock.Score(c, scoreState()); got != want {
		t.Fatalf("second score = %v, want default %v", got, want)
	}
}

func TestSelectTerminatesWithRunawayScript(t *testing.T) {
	e, err := New(`function score(candidate, state) while true do end end`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cands := []stock.Candidate{
		{ID: "a", Name: "A", Rarity: rarity.Common, Value: 1, Weight: 1},
		{ID: "b", Name: "B", Rarity: rarity.Common, Value: 2, Weight: 1},
	}
	got := stock.Select(cands, stock.Request{TargetCount: 2, MaxStackSize: 1}, stock.Strategy{Evaluator: e, RNG: random.New(2)})
	if got.TotalQuantity != 2 {
		t.Fatalf("total quantity = %d, want 2", got.TotalQuantity)
	}
}

func TestNewStopsRunawayChunk(t *testing.T) {
	if _, err := New(`while true do end`, WithInstructionLimit(10_000)); err == nil {
		t.Fatal("expected instruction limit error from top-level chunk")
	}
}

func TestEvaluatorFallsBackOnNonNumber(t *testing.T) {
	e, err := New(`function score() return "high" end`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := stock.Candidate{ID: "a"}
	if got, want := e.Score(c, scoreState()), stock.Score(c, scoreState()); got != want {
		t.Fatalf("score = %v, want default %v", got, want)
	}
}

func TestNewRequiresScoreFunction(t *testing.T) {
	if _, err := New(`x = 1`); err == nil {
		t.Fatal("expected error when score is undefined")
	}
	if _, err := New(`function score(`); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merchant.lua")
	if err := os.WriteFile(path, []byte(potionScript), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatal("expected error for missing script")
	}
}

// TestSelectWithScript ensures a script evaluator steers stock selection.
func TestSelectWithScript(t *testing.T) {
	e, err := New(`function score(candidate, state)
  if candidate.id == "b" then return 1 end
  return 0
end`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cands := []stock.Candidate{
		{ID: "a", Name: "A", Weight: 1},
		{ID: "b", Name: "B", Weight: 1},
	}
	got := stock.Select(cands, stock.Request{TargetCount: 2, DuplicateChance: 1, MaxStackSize: 2}, stock.Strategy{Evaluator: e, RNG: random.New(5)})
	if len(got.Rows) != 1 || got.Rows[0].ID != "b" || got.Rows[0].Quantity != 2 {
		t.Fatalf("rows = %+v, want b x2", got.Rows)
	}
}
