package emax

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/kwdp/model"
	"github.com/katalvlaran/kwdp/shocks"
)

// solvePartitionInterpolated approximates the expected value functions of
// one partition-period when its state count exceeds the allotted
// interpolation budget:
//
//  1. select a deterministic (seeded) subsample of `points` states;
//  2. solve the subsample exactly via Monte Carlo integration;
//  3. build non-stochastic predictors for every state from systematic
//     rewards and continuation values: per choice, the gap between the
//     maximal deterministic total value and the choice's own, plus the
//     square root of that gap, plus an intercept;
//  4. fit OLS of (exact EMax − maximal deterministic value) on the
//     subsample's predictors;
//  5. predict the gap for every state, clipped below at zero, and add
//     the maximal deterministic value back;
//  6. overwrite predictions at sampled states with their exact values.
//
// A singular design matrix surfaces as ErrSingularDesign, a fatal
// configuration error, never a silent fallback to the full solution.
func solvePartitionInterpolated(
	sol *Solution,
	space *model.CoreSpace,
	part *model.Partition,
	params *model.Params,
	hasWage []bool,
	chol *mat.TriDense,
	battery *shocks.Battery,
	period int,
	points int,
	seed uint64,
) error {
	blk, _ := sol.Block(period, part.Key)
	n := len(blk.rows)

	cont, err := continuationMatrix(sol, space, part, period)
	if err != nil {
		return err
	}
	raw, err := battery.Period(period)
	if err != nil {
		return err
	}
	tdraws, err := shocks.Transform(raw, part.ChoiceSet, hasWage, chol)
	if err != nil {
		return err
	}

	// The budget covers the whole partition: solve exactly, nothing to fit.
	if points >= n {
		emaxRows(blk, cont, tdraws, params.Delta, nil)
		return nil
	}

	sample := subsample(n, points, seed, period, part.Key)

	// Non-stochastic per-state predictors.
	var (
		m       = space.NumChoices()
		p       = predictorCount(m)
		neutral = shocks.NeutralShock(hasWage)
		scratch = make([]float64, m)
		maxV    = make([]float64, n)
		design  = mat.NewDense(n, p, nil)
	)
	for r := 0; r < n; r++ {
		best, _ := ChoiceValues(
			blk.Wages.RawRowView(r), blk.NonPecs.RawRowView(r), cont.RawRowView(r),
			params.Delta, neutral, scratch,
		)
		maxV[r] = best
		design.Set(r, 0, 1)
		for c := 0; c < m; c++ {
			gap := best - scratch[c]
			design.Set(r, 1+c, gap)
			design.Set(r, 1+m+c, math.Sqrt(gap))
		}
	}

	// Exact Monte Carlo values at the sampled states only.
	emaxRows(blk, cont, tdraws, params.Delta, sample)

	// OLS fit of the exact gap on the subsample's predictors.
	var (
		sub = mat.NewDense(len(sample), p, nil)
		y   = mat.NewVecDense(len(sample), nil)
	)
	for i, r := range sample {
		sub.SetRow(i, design.RawRowView(r))
		y.SetVec(i, blk.EMax[r]-maxV[r])
	}
	coef := mat.NewVecDense(p, nil)
	if err = coef.SolveVec(sub, y); err != nil {
		return fmt.Errorf("%w (period %d, dense %d): %v", ErrSingularDesign, period, part.Key, err)
	}

	// Predict the remainder; sampled states keep their exact values.
	pred := mat.NewVecDense(n, nil)
	pred.MulVec(design, coef)

	sampled := make(map[int]bool, len(sample))
	for _, r := range sample {
		sampled[r] = true
	}
	for r := 0; r < n; r++ {
		if sampled[r] {
			continue
		}
		gap := pred.AtVec(r)
		if gap < 0 {
			gap = 0 // EMax is never below the best deterministic value
		}
		blk.EMax[r] = maxV[r] + gap
	}

	return nil
}

// predictorCount returns the regression's column count: intercept plus
// two predictors per choice (gap and √gap).
func predictorCount(nChoices int) int { return 1 + 2*nChoices }

// subsample draws a sorted, seeded subsample of `points` rows out of n.
// The stream is derived from (seed, period, dense key), so every
// partition-period owns an independent, reproducible selection.
func subsample(n, points int, seed uint64, period int, dense model.DenseKey) []int {
	stream := shocks.DeriveSeed(shocks.DeriveSeed(seed, uint64(period)), uint64(dense))
	rng := rand.New(rand.NewSource(stream))

	sample := append([]int(nil), rng.Perm(n)[:points]...)
	sort.Ints(sample)
	return sample
}
