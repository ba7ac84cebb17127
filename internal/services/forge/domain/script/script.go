// Package script lets merchants weight stock candidates with a Lua function.
//
// A script defines a global function:
//
//	function score(candidate, state)
//	  if candidate.type == "potion" then
//	    return state.default_score * 2
//	  end
//	  return state.default_score
//	end
//
// candidate carries id, name, type, rarity, value, weight and curated.
// state carries target_count, target_value, running_value, units,
// rarity_weight and default_score. A script error, a non-numeric return or
// a call that runs past the instruction limit falls back to the default
// score.
package script

import (
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/stock"
)

const scoreFunction = "score"

// DefaultInstructionLimit bounds the Lua instructions one call may execute.
const DefaultInstructionLimit = 1_000_000

// Evaluator is a stock.WeightEvaluator backed by a Lua state.
// It is not safe for concurrent use.
type Evaluator struct {
	state    *lua.State
	fallback stock.WeightEvaluator
	limit    int
	err      error
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithFallback replaces the evaluator used for default scores.
func WithFallback(fallback stock.WeightEvaluator) Option {
	return func(e *Evaluator) {
		if fallback != nil {
			e.fallback = fallback
		}
	}
}

// WithInstructionLimit replaces DefaultInstructionLimit. Non-positive values
// are ignored.
func WithInstructionLimit(limit int) Option {
	return func(e *Evaluator) {
		if limit > 0 {
			e.limit = limit
		}
	}
}

// New compiles source and returns an evaluator for its score function.
func New(source string, opts ...Option) (*Evaluator, error) {
	state := newState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return finish(state, opts)
}

// Load compiles the script at path.
func Load(path string, opts ...Option) (*Evaluator, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua %s: %w", path, err)
	}
	return finish(state, opts)
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	return state
}

func finish(state *lua.State, opts []Option) (*Evaluator, error) {
	e := &Evaluator{state: state, fallback: stock.StandardEvaluator, limit: DefaultInstructionLimit}
	for _, opt := range opts {
		opt(e)
	}

	e.armLimit()
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	state.Global(scoreFunction)
	isFunc := state.IsFunction(-1)
	state.Pop(1)
	if !isFunc {
		return nil, fmt.Errorf("lua script must define function %s(candidate, state)", scoreFunction)
	}
	return e, nil
}

// armLimit restarts the instruction count; the hook fires once the limit is
// reached and raises a Lua error that unwinds the protected call.
func (e *Evaluator) armLimit() {
	lua.SetDebugHook(e.state, func(state *lua.State, _ lua.Debug) {
		state.PushString(fmt.Sprintf("instruction limit of %d exceeded", e.limit))
		state.Error()
	}, lua.MaskCount, e.limit)
}

// Score returns the script's score for c, or the default score when the
// script fails or returns a non-number.
func (e *Evaluator) Score(c stock.Candidate, s stock.ScoreState) float64 {
	def := e.fallback.Score(c, s)

	top := e.state.Top()
	defer e.state.SetTop(top)

	e.state.Global(scoreFunction)
	pushCandidate(e.state, c)
	pushState(e.state, c, s, def)
	e.armLimit()
	if err := e.state.ProtectedCall(2, 1, 0); err != nil {
		e.err = fmt.Errorf("score %s: %w", c.ID, err)
		return def
	}
	if e.state.TypeOf(-1) != lua.TypeNumber {
		e.err = fmt.Errorf("score %s: lua returned %s, want number", c.ID, lua.TypeNameOf(e.state, -1))
		return def
	}
	v, _ := e.state.ToNumber(-1)
	return v
}

// Err returns the most recent script failure, if any.
func (e *Evaluator) Err() error {
	return e.err
}

func pushCandidate(state *lua.State, c stock.Candidate) {
	state.NewTable()
	setString(state, "id", c.ID)
	setString(state, "name", c.Name)
	setString(state, "type", c.Type)
	setString(state, "rarity", string(c.Rarity))
	setNumber(state, "value", c.Value)
	setNumber(state, "weight", c.Weight)
	state.PushBoolean(c.Curated)
	state.SetField(-2, "curated")
}

func pushState(state *lua.State, c stock.Candidate, s stock.ScoreState, def float64) {
	state.NewTable()
	setNumber(state, "target_count", float64(s.TargetCount))
	setNumber(state, "target_value", s.TargetValue)
	setNumber(state, "running_value", s.RunningValue)
	setNumber(state, "units", float64(s.Units))
	setNumber(state, "rarity_weight", s.Weights.Get(c.Rarity))
	setNumber(state, "default_score", def)
}

func setString(state *lua.State, key, value string) {
	state.PushString(value)
	state.SetField(-2, key)
}

func setNumber(state *lua.State, key string, value float64) {
	state.PushNumber(value)
	state.SetField(-2, key)
}
