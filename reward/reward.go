package reward

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/kwdp/model"
)

// Systematic computes, for one partition and one period, the systematic
// wage and non-pecuniary reward of every (state, choice) pair.
//
// Rows follow the partition's core-index subset in order; columns follow
// the choice set. Wages are exp(linear predictor) for wage choices and
// fixed at 1 for choices without a wage component. Non-pecuniary rewards
// are raw linear predictors plus the type shift, with InadmissiblePenalty
// added for choices that are masked out by the partition or blocked by
// the schooling ceiling.
//
// Errors:
//   - ErrPeriodOutOfRange when the period holds no states.
//   - ErrMissingCovariate (wrapped with the covariate name) when a
//     coefficient references an absent covariate. Fatal, not retried.
//
// Complexity: O(states × choices × coefficients).
func Systematic(
	space *model.CoreSpace,
	part *model.Partition,
	params *model.Params,
	rules []model.CovariateRule,
	period int,
) (wages, nonpecs *mat.Dense, err error) {
	states := space.States(period)
	if len(states) == 0 {
		return nil, nil, ErrPeriodOutOfRange
	}

	var (
		choices = space.Choices()
		indices = part.Indices(space, period)
		n       = len(indices)
		m       = len(choices)
	)
	wages = mat.NewDense(n, m, nil)
	nonpecs = mat.NewDense(n, m, nil)

	for row, idx := range indices {
		st := states[idx]
		covs, cerr := model.Covariates(st, choices, part, rules)
		if cerr != nil {
			return nil, nil, cerr
		}

		for c, spec := range choices {
			w := 1.0
			if coeffs, ok := params.Wage[spec.Name]; ok {
				logWage, derr := dot(coeffs, covs)
				if derr != nil {
					return nil, nil, derr
				}
				w = math.Exp(logWage)
			}
			wages.Set(row, c, w)

			np := params.NonPecShift(st.Type, c)
			if coeffs, ok := params.NonPec[spec.Name]; ok {
				v, derr := dot(coeffs, covs)
				if derr != nil {
					return nil, nil, derr
				}
				np += v
			}
			if infeasible(st, part, params, c) {
				np += InadmissiblePenalty
			}
			nonpecs.Set(row, c, np)
		}
	}

	return wages, nonpecs, nil
}

// infeasible reports whether choice c is structurally unavailable in
// state st under partition part.
func infeasible(st model.State, part *model.Partition, params *model.Params, c int) bool {
	if part.ChoiceSet != nil && !part.ChoiceSet[c] {
		return true
	}
	if c == params.SchoolingChoice && params.MaxSchooling >= 0 &&
		st.Experience[c] >= params.MaxSchooling {
		return true
	}
	return false
}

// dot resolves a coefficient vector against the covariate set.
func dot(coeffs []model.Coefficient, covs map[string]float64) (float64, error) {
	sum := 0.0
	for _, co := range coeffs {
		v, ok := covs[co.Covariate]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrMissingCovariate, co.Covariate)
		}
		sum += co.Value * v
	}
	return sum, nil
}
