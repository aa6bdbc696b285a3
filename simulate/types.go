package simulate

import (
	"errors"
	"math"

	"github.com/katalvlaran/kwdp/model"
)

var (
	// ErrNilSolution indicates a nil solved model.
	ErrNilSolution = errors.New("simulate: solution is nil")

	// ErrBadAgents indicates a non-positive agent count.
	ErrBadAgents = errors.New("simulate: number of agents must be positive")

	// ErrNilInitial indicates that no initial-conditions function was
	// supplied.
	ErrNilInitial = errors.New("simulate: initial-conditions function is required")

	// ErrUnknownState indicates an initial or advanced state that is not
	// part of the admissible state space. This is a contract violation
	// with the enumeration component.
	ErrUnknownState = errors.New("simulate: state not found in the admissible state space")

	// ErrUnknownPartition indicates an initial dense key with no solved
	// block.
	ErrUnknownPartition = errors.New("simulate: dense key has no solved block")
)

// Record is one agent-period row of the synthetic panel. Wage is NaN for
// choices without a wage component (the missing-value sentinel); the
// recorded State is the pre-choice state.
type Record struct {
	Agent  int
	Period int
	Choice int
	Wage   float64
	State  model.State
	Dense  model.DenseKey
}

// HasWage reports whether the record carries an observed wage.
func (r Record) HasWage() bool { return !math.IsNaN(r.Wage) }

// Options configures a simulation.
//
//	Agents        - number of simulated individuals.
//	Seed          - seed of the simulation draw battery (0 means the
//	                fixed default).
//	Initial       - initial conditions per agent: starting state and
//	                dense key. Required.
//	Progress      - optional observer, invoked every ProgressEvery
//	                agents; nil means silent.
//	ProgressEvery - callback cadence; 0 means every 100 agents.
type Options struct {
	Agents        int
	Seed          uint64
	Initial       func(agent int) (model.State, model.DenseKey)
	Progress      func(agentsDone int)
	ProgressEvery int
}

// DefaultOptions returns the defaults: 1000 agents, progress every 100.
// Initial must still be set by the caller.
func DefaultOptions() Options {
	return Options{
		Agents:        1000,
		ProgressEvery: 100,
	}
}
