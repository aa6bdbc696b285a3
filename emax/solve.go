package emax

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/kwdp/model"
	"github.com/katalvlaran/kwdp/reward"
	"github.com/katalvlaran/kwdp/shocks"
)

// Solve runs backward induction over the full horizon and returns the
// solved model: systematic rewards and expected value functions for every
// (period, dense partition, state) key.
//
// Periods are processed strictly from the terminal period to period 0;
// period p's continuation values come exclusively from period p+1's
// already-finalized results. Within a period, dense partitions run in
// parallel on a bounded worker pool and are merged at a barrier before
// the next (earlier) period starts. Worker count and partition order
// never affect the numbers.
//
// Errors: option/parameter sentinels up front; ErrMissingContinuation /
// ErrSingularDesign (fatal contract or configuration violations) during
// induction. No internal retries.
//
// Complexity: O(periods × states × choices × draws) for the full
// solution; interpolation replaces the per-state draw loop with one OLS
// fit plus prediction for non-sampled states.
func Solve(
	space *model.CoreSpace,
	partitions []model.Partition,
	params *model.Params,
	rules []model.CovariateRule,
	opts Options,
) (*Solution, error) {
	if space == nil {
		return nil, ErrNilSpace
	}
	if len(partitions) == 0 {
		return nil, ErrNoPartitions
	}
	if opts.Draws <= 0 {
		return nil, ErrBadDraws
	}
	if opts.Workers < 0 {
		return nil, ErrBadWorkers
	}
	if err := params.Validate(space.NumChoices()); err != nil {
		return nil, err
	}

	chol, err := params.Cholesky()
	if err != nil {
		return nil, err
	}

	hasWage := wageMask(space.Choices())
	battery, err := shocks.NewBattery(space.NumPeriods(), opts.Draws, space.NumChoices(), opts.SolutionSeed)
	if err != nil {
		return nil, err
	}

	sol := newSolution(space, partitions)

	for period := space.NumPeriods() - 1; period >= 0; period-- {
		// Systematic rewards per partition. newSolution pre-allocated a
		// block for every (period, dense) pair, so the lookup cannot miss.
		if err = forEachPartition(partitions, opts.Workers, func(part *model.Partition) error {
			blk, _ := sol.Block(period, part.Key)
			w, np, rerr := reward.Systematic(space, part, params, rules, period)
			if rerr != nil {
				return rerr
			}
			blk.Wages, blk.NonPecs = w, np
			return nil
		}); err != nil {
			return nil, err
		}

		// The solution mode is decided once for the whole period.
		mode := periodMode(sol, partitions, params, opts, period)

		switch mode {
		case Myopic:
			// EMax stays identically zero; rewards remain available to the
			// simulator and the evaluator.

		case FullSolution:
			err = forEachPartition(partitions, opts.Workers, func(part *model.Partition) error {
				return solvePartitionFull(sol, space, part, params, hasWage, chol, battery, period)
			})

		case Interpolated:
			// Budget shares are fixed before dispatch so that partition
			// order and worker count cannot change the subsample.
			budget := splitBudget(sol, partitions, opts.InterpolationPoints, space.NumChoices(), period)
			err = forEachPartition(partitions, opts.Workers, func(part *model.Partition) error {
				return solvePartitionInterpolated(
					sol, space, part, params, hasWage, chol, battery,
					period, budget[part.Key], opts.InterpolationSeed,
				)
			})
		}
		if err != nil {
			return nil, err
		}

		if opts.Progress != nil {
			opts.Progress(period, mode)
		}
	}

	return sol, nil
}

// periodMode picks {Myopic, FullSolution, Interpolated} for one period.
// Interpolation is enabled when the configured point budget is
// non-negative and strictly below the number of states solved in the
// period across all dense partitions.
func periodMode(sol *Solution, partitions []model.Partition, params *model.Params, opts Options, period int) Mode {
	if params.Delta == 0 {
		return Myopic
	}
	if opts.InterpolationPoints >= 0 && opts.InterpolationPoints < statesInPeriod(sol, partitions, period) {
		return Interpolated
	}
	return FullSolution
}

// statesInPeriod counts the states solved in one period across all
// partitions.
func statesInPeriod(sol *Solution, partitions []model.Partition, period int) int {
	total := 0
	for i := range partitions {
		if blk, ok := sol.Block(period, partitions[i].Key); ok {
			total += len(blk.rows)
		}
	}
	return total
}

// splitBudget distributes the interpolation-point budget across
// partitions proportionally to their state counts, clamped below by the
// regression's column count (so every partition can fit its own OLS) and
// above by the partition size.
func splitBudget(sol *Solution, partitions []model.Partition, points, nChoices, period int) map[model.DenseKey]int {
	var (
		total = statesInPeriod(sol, partitions, period)
		out   = make(map[model.DenseKey]int, len(partitions))
		minPt = predictorCount(nChoices) + 1
	)
	for i := range partitions {
		blk, ok := sol.Block(period, partitions[i].Key)
		if !ok {
			continue
		}
		n := len(blk.rows)
		share := 0
		if total > 0 {
			share = points * n / total
		}
		if share < minPt {
			share = minPt
		}
		if share > n {
			share = n
		}
		out[partitions[i].Key] = share
	}
	return out
}

// continuationMatrix builds the (states × choices) continuation-value
// matrix of one partition-period from the next period's solved block.
func continuationMatrix(sol *Solution, space *model.CoreSpace, part *model.Partition, period int) (*mat.Dense, error) {
	blk, _ := sol.Block(period, part.Key)

	var (
		states = space.States(period)
		m      = space.NumChoices()
		cont   = mat.NewDense(len(blk.rows), m, nil)
		row    = make([]float64, m)
	)
	for r, coreIdx := range blk.rows {
		if err := sol.Continuation(part.Key, states[coreIdx], row); err != nil {
			return nil, fmt.Errorf("%w (period %d, dense %d, state %d)", err, period, part.Key, coreIdx)
		}
		cont.SetRow(r, row)
	}
	return cont, nil
}

// wageMask extracts the per-choice wage flags.
func wageMask(choices []model.ChoiceSpec) []bool {
	mask := make([]bool, len(choices))
	for c, spec := range choices {
		mask[c] = spec.HasWage
	}
	return mask
}
