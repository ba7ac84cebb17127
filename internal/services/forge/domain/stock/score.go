package stock

import (
	"math"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/rarity"
)

const (
	// MinRarityFactor floors the rarity factor so every rarity stays reachable.
	MinRarityFactor = 0.01
	// DistanceSlope scales how quickly the budget factor decays as a value
	// moves away from the desired per-unit value.
	DistanceSlope = 1.45
	// OvershootRatio and OvershootPenalty are tuning values: once a unit is
	// selected, a candidate worth more than OvershootRatio times the
	// remaining budget has its score multiplied by OvershootPenalty.
	OvershootRatio   = 1.45
	OvershootPenalty = 0.2
	// CuratedBoost is the score multiplier for curated candidates.
	CuratedBoost = 1.25
)

// ScoreState is the selection progress a score is computed against.
type ScoreState struct {
	TargetCount  int
	TargetValue  float64
	RunningValue float64
	Units        int
	Weights      rarity.Weights
}

// WeightEvaluator scores a candidate for the next weighted pick.
type WeightEvaluator interface {
	Score(c Candidate, state ScoreState) float64
}

// WeightEvaluatorFunc adapts a function to WeightEvaluator.
type WeightEvaluatorFunc func(c Candidate, state ScoreState) float64

// Score calls f(c, state).
func (f WeightEvaluatorFunc) Score(c Candidate, state ScoreState) float64 {
	return f(c, state)
}

// StandardEvaluator scores candidates with Score.
var StandardEvaluator WeightEvaluator = WeightEvaluatorFunc(Score)

// Score is the product of the rarity, budget and curated factors.
func Score(c Candidate, state ScoreState) float64 {
	return RarityFactor(c, state) * BudgetFactor(c, state) * CuratedFactor(c)
}

// RarityFactor is the configured weight of the candidate's rarity, floored at
// MinRarityFactor.
func RarityFactor(c Candidate, state ScoreState) float64 {
	w := state.Weights.Get(c.Rarity)
	if math.IsNaN(w) || w < MinRarityFactor {
		return MinRarityFactor
	}
	return w
}

// BudgetFactor favors candidates whose value is close to the remaining budget
// spread over the remaining slots. It is 1 when there is no value target.
func BudgetFactor(c Candidate, state ScoreState) float64 {
	if state.TargetValue <= 0 {
		return 1
	}
	remainingBudget := math.Max(0, state.TargetValue-state.RunningValue)
	remainingSlots := max(1, state.TargetCount-state.Units)
	desired := math.Max(0.01, remainingBudget/float64(remainingSlots))
	distance := math.Abs(c.Value-desired) / math.Max(1, desired)

	score := 1 / (1 + DistanceSlope*distance)
	if state.Units >= 1 && c.Value > OvershootRatio*remainingBudget {
		score *= OvershootPenalty
	}
	return score
}

// CuratedFactor is CuratedBoost for curated candidates and 1 otherwise.
func CuratedFactor(c Candidate) float64 {
	if c.Curated {
		return CuratedBoost
	}
	return 1
}
