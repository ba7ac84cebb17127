// Package randomtest provides scripted RNGs for deterministic tests.
package randomtest

// Sequence replays scripted values. Exhausted streams return zero values so
// a short script still drives a call to completion.
type Sequence struct {
	Floats []float64
	Ints   []int

	floatPos int
	intPos   int
}

// Float64 returns the next scripted float.
func (s *Sequence) Float64() float64 {
	if s.floatPos >= len(s.Floats) {
		return 0
	}
	v := s.Floats[s.floatPos]
	s.floatPos++
	return v
}

// Intn returns the next scripted int reduced into [0,n).
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("randomtest: invalid argument to Intn")
	}
	if s.intPos >= len(s.Ints) {
		return 0
	}
	v := s.Ints[s.intPos]
	s.intPos++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Constant always returns the same float and the lowest int.
type Constant float64

// Float64 returns the constant.
func (c Constant) Float64() float64 { return float64(c) }

// Intn returns 0.
func (c Constant) Intn(n int) int {
	if n <= 0 {
		panic("randomtest: invalid argument to Intn")
	}
	return 0
}
