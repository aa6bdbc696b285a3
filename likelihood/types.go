package likelihood

import (
	"errors"
	"math"

	"github.com/katalvlaran/kwdp/model"
)

var (
	// ErrNilSolution indicates a nil solved model.
	ErrNilSolution = errors.New("likelihood: solution is nil")

	// ErrNoObservations indicates an empty observed panel.
	ErrNoObservations = errors.New("likelihood: at least one observation is required")

	// ErrBadDraws indicates a non-positive probability-draw count.
	ErrBadDraws = errors.New("likelihood: number of probability draws must be positive")

	// ErrBadChoice indicates an observed choice index outside the choice
	// set.
	ErrBadChoice = errors.New("likelihood: observed choice out of range")

	// ErrUnknownState indicates an observation whose implied state is not
	// part of the admissible state space. This is a contract violation
	// with the data preparation.
	ErrUnknownState = errors.New("likelihood: observed state not found in the admissible state space")

	// ErrUnknownPartition indicates an observation keyed to a dense
	// partition with no solved block.
	ErrUnknownPartition = errors.New("likelihood: dense key has no solved block")
)

// Observation is one observed agent-period record: the state implied by
// the record, the dense partition the agent belongs to, the observed
// choice and, for wage choices, the observed wage (NaN when missing).
type Observation struct {
	Agent  int
	Period int
	Choice int
	Wage   float64
	State  model.State
	Dense  model.DenseKey
}

// HasWage reports whether the observation carries an observed wage.
func (o Observation) HasWage() bool { return !math.IsNaN(o.Wage) }

// Options configures a criterion evaluation.
//
//	Draws   - Monte Carlo draws per observation for choice-probability
//	          integration.
//	Seed    - seed of the probability draw battery (0 means the fixed
//	          default).
//	MinProb - floor applied to each contribution before taking logs
//	          (0 means 1e-250).
type Options struct {
	Draws   int
	Seed    uint64
	MinProb float64
}

// DefaultOptions returns the defaults: 200 draws, 1e-250 floor.
func DefaultOptions() Options {
	return Options{
		Draws:   200,
		MinProb: 1e-250,
	}
}
