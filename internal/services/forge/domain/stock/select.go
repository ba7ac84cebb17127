package stock

import (
	"math"
	"strings"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/rarity"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/weighted"
)

// IterationsPerUnit bounds the fill loop to TargetCount*IterationsPerUnit
// passes.
const IterationsPerUnit = 30

// Request describes the inventory to select.
type Request struct {
	TargetCount int `json:"target_count"`
	// TargetValue is a soft total value target. Zero disables budgeting.
	TargetValue   float64        `json:"target_value"`
	RarityWeights rarity.Weights `json:"rarity_weights"`
	// DuplicateChance is a probability in [0,1].
	DuplicateChance float64  `json:"duplicate_chance"`
	MaxStackSize    int      `json:"max_stack_size"`
	CuratedOrder    []string `json:"curated_order,omitempty"`
}

// Normalized returns the request with invalid values clamped: negative or
// non-finite targets become 0, the duplicate chance is clamped to [0,1], the
// stack size is at least 1 and a zero weight table becomes the default one.
func (r Request) Normalized() Request {
	if r.TargetCount < 0 {
		r.TargetCount = 0
	}
	if math.IsNaN(r.TargetValue) || math.IsInf(r.TargetValue, 0) || r.TargetValue < 0 {
		r.TargetValue = 0
	}
	switch {
	case math.IsNaN(r.DuplicateChance) || r.DuplicateChance < 0:
		r.DuplicateChance = 0
	case r.DuplicateChance > 1:
		r.DuplicateChance = 1
	}
	if r.MaxStackSize < 1 {
		r.MaxStackSize = 1
	}
	if r.RarityWeights.IsZero() {
		r.RarityWeights = rarity.DefaultWeights()
	}
	return r
}

// Strategy carries the replaceable parts of a selection. Zero fields use
// StandardEvaluator and a freshly seeded local generator.
type Strategy struct {
	Evaluator WeightEvaluator
	RNG       random.RNG
}

// Row is one stack in a selection result.
type Row struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     string        `json:"type,omitempty"`
	Rarity   rarity.Rarity `json:"rarity"`
	Value    float64       `json:"value"`
	Curated  bool          `json:"curated,omitempty"`
	Quantity int           `json:"quantity"`
}

// Result is a selected inventory. Rows keep first-selection order.
type Result struct {
	Rows          []Row   `json:"rows"`
	TotalQuantity int     `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
}

// Select fills up to TargetCount units from candidates.
//
// Curated ids in CuratedOrder are seeded first regardless of weight. The fill
// loop then prefers a duplicate with probability DuplicateChance, otherwise a
// new candidate, otherwise any stack below MaxStackSize, and stops early when
// nothing can be added. Under-filling is a valid outcome.
func Select(candidates []Candidate, req Request, strategy Strategy) Result {
	req = req.Normalized()
	s := &selection{
		req:       req,
		rng:       random.OrLocal(strategy.RNG),
		evaluator: strategy.Evaluator,
		rowIndex:  make(map[string]int),
	}
	if s.evaluator == nil {
		s.evaluator = StandardEvaluator
	}

	s.pool, s.lookup = shuffle(candidates, s.rng)
	if req.TargetCount == 0 {
		return s.result()
	}

	s.seedCurated()

	limit := iterationLimit(req.TargetCount)
	for i := 0; i < limit && s.units < req.TargetCount; i++ {
		dups := s.duplicatePool()
		if len(dups) > 0 && req.DuplicateChance > 0 && s.rng.Float64() < req.DuplicateChance {
			if c, ok := s.pick(dups); ok {
				s.add(c)
				continue
			}
		}
		if c, ok := s.pick(s.freshPool()); ok {
			s.add(c)
			continue
		}
		if c, ok := s.pick(dups); ok {
			s.add(c)
			continue
		}
		break
	}

	if len(s.rows) == 0 && len(s.pool) > 0 {
		s.add(s.pool[0])
	}
	return s.result()
}

// iterationLimit saturates instead of overflowing for huge targets; the loop
// still ends once nothing can be added.
func iterationLimit(targetCount int) int {
	if targetCount > math.MaxInt/IterationsPerUnit {
		return math.MaxInt
	}
	return targetCount * IterationsPerUnit
}

type selection struct {
	req       Request
	rng       random.RNG
	evaluator WeightEvaluator

	pool   []Candidate
	lookup map[string]Candidate

	rows         []Row
	rowIndex     map[string]int
	units        int
	runningValue float64
}

// shuffle dedupes candidates by id (first wins) and returns them in
// Fisher-Yates order together with an id lookup.
func shuffle(candidates []Candidate, rng random.RNG) ([]Candidate, map[string]Candidate) {
	lookup := make(map[string]Candidate, len(candidates))
	pool := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == "" {
			continue
		}
		if _, ok := lookup[c.ID]; ok {
			continue
		}
		lookup[c.ID] = c
		pool = append(pool, c)
	}
	for i := len(pool) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool, lookup
}

func (s *selection) seedCurated() {
	for _, id := range s.req.CuratedOrder {
		if s.units >= s.req.TargetCount {
			return
		}
		c, ok := s.lookup[strings.TrimSpace(id)]
		if !ok {
			continue
		}
		if _, selected := s.rowIndex[c.ID]; selected {
			continue
		}
		c.Curated = true
		s.add(c)
	}
}

// duplicatePool returns selected candidates whose stack can still grow.
func (s *selection) duplicatePool() []Candidate {
	var out []Candidate
	for _, row := range s.rows {
		if row.Quantity >= s.req.MaxStackSize {
			continue
		}
		c := s.lookup[row.ID]
		c.Curated = row.Curated
		out = append(out, c)
	}
	return out
}

// freshPool returns unselected candidates with a usable catalog weight.
func (s *selection) freshPool() []Candidate {
	var out []Candidate
	for _, c := range s.pool {
		if _, selected := s.rowIndex[c.ID]; selected {
			continue
		}
		if !weighted.Eligible(c.Weight) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// pick draws from pool proportionally to the evaluator score. A pool whose
// scores are all unusable resolves to its first candidate.
func (s *selection) pick(pool []Candidate) (Candidate, bool) {
	if len(pool) == 0 {
		return Candidate{}, false
	}
	state := ScoreState{
		TargetCount:  s.req.TargetCount,
		TargetValue:  s.req.TargetValue,
		RunningValue: s.runningValue,
		Units:        s.units,
		Weights:      s.req.RarityWeights,
	}
	scored := make([]weighted.Candidate[int], len(pool))
	for i, c := range pool {
		scored[i] = weighted.Candidate[int]{Value: i, Weight: s.evaluator.Score(c, state)}
	}
	idx, ok := weighted.Pick(scored, s.rng)
	if !ok {
		return pool[0], true
	}
	return pool[idx], true
}

func (s *selection) add(c Candidate) {
	s.units++
	s.runningValue += c.Value
	if i, ok := s.rowIndex[c.ID]; ok {
		s.rows[i].Quantity++
		return
	}
	s.rowIndex[c.ID] = len(s.rows)
	s.rows = append(s.rows, Row{
		ID:       c.ID,
		Name:     c.Name,
		Type:     c.Type,
		Rarity:   c.Rarity,
		Value:    c.Value,
		Curated:  c.Curated,
		Quantity: 1,
	})
}

func (s *selection) result() Result {
	rows := s.rows
	if rows == nil {
		rows = []Row{}
	}
	return Result{
		Rows:          rows,
		TotalQuantity: s.units,
		TotalValue:    s.runningValue,
	}
}
