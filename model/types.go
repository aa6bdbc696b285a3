package model

import "errors"

// Sentinel errors returned by state-space and parameter constructors.
var (
	// ErrNoChoices indicates an empty choice set was supplied.
	ErrNoChoices = errors.New("model: at least one choice is required")

	// ErrNoStates indicates that a CoreSpace was built from zero states.
	ErrNoStates = errors.New("model: at least one state is required")

	// ErrExperienceArity indicates a state whose experience vector length
	// does not match the number of choices.
	ErrExperienceArity = errors.New("model: experience vector length must equal the number of choices")

	// ErrChoiceOutOfRange indicates a lagged-choice or transition choice
	// index outside [0, numChoices).
	ErrChoiceOutOfRange = errors.New("model: choice index out of range")

	// ErrBadDelta indicates a discount factor outside [0, 1].
	ErrBadDelta = errors.New("model: discount factor must lie in [0, 1]")

	// ErrBadShockCov indicates a shock covariance matrix of wrong dimension
	// or one that is not positive semi-definite.
	ErrBadShockCov = errors.New("model: shock covariance must be a positive semi-definite choices×choices matrix")

	// ErrBadTypeShifts indicates type-shift rows of wrong arity for the
	// declared number of types or choices.
	ErrBadTypeShifts = errors.New("model: type shifts must carry one row per type and one column per choice")

	// ErrDuplicateCovariate indicates two covariate rules producing the
	// same covariate name.
	ErrDuplicateCovariate = errors.New("model: duplicate covariate name")
)

// DenseKey identifies one exogenous, period-invariant partition of the
// problem. The same core state space is replicated once per dense key;
// partitions never read each other's results during a solve.
type DenseKey int

// ChoiceSpec describes one alternative of the discrete choice set.
//
// HasWage marks choices whose reward carries a market wage: their shocks
// enter multiplicatively (log-normal) and their systematic wage is the
// exponential of a linear predictor. Choices without a wage receive
// additive shocks and a wage fixed at 1.
type ChoiceSpec struct {
	Name    string
	HasWage bool
}

// State is one admissible point of the core state space: the current
// period, accumulated experience per choice, the previous period's choice
// and the unobserved type. States are immutable once enumerated.
type State struct {
	Period     int
	Experience []int // one counter per choice, each bounded by Period
	Lagged     int   // choice taken in the previous period
	Type       int   // unobserved heterogeneity type
}

// Partition is one dense slice of the problem: a feasible-choice mask,
// exogenous covariate values, and optionally a per-period subset of core
// state indices relevant to this partition (nil means all states).
type Partition struct {
	Key         DenseKey
	ChoiceSet   []bool             // len == number of choices; false ⇒ structurally infeasible
	Covariates  map[string]float64 // exogenous dense covariates, merged into every state's covariate set
	CoreIndices map[int][]int      // period → subset of core indices; nil ⇒ every state
}

// Coefficient binds one named covariate to its linear-predictor weight.
// Reward parameters are ordered coefficient lists rather than positional
// vectors so that a missing covariate is detectable by name.
type Coefficient struct {
	Covariate string
	Value     float64
}
