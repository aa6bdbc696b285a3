package reward

import "errors"

// InadmissiblePenalty is the fixed non-pecuniary reward of a structurally
// infeasible choice. Large enough (in magnitude) that no admissible total
// value is ever dominated by an infeasible one.
const InadmissiblePenalty = -400_000.0

var (
	// ErrMissingCovariate indicates a coefficient referencing a covariate
	// absent from the constructed covariate set. This is a contract
	// violation with the state-space component and aborts the solve.
	ErrMissingCovariate = errors.New("reward: coefficient references a covariate absent from the covariate set")

	// ErrPeriodOutOfRange indicates a period with no admissible states.
	ErrPeriodOutOfRange = errors.New("reward: period holds no states")
)
