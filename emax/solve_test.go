package emax_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/kwdp/emax"
	"github.com/katalvlaran/kwdp/model"
	"github.com/katalvlaran/kwdp/reward"
	"github.com/katalvlaran/kwdp/shocks"
)

var testChoices = []model.ChoiceSpec{
	{Name: "work", HasWage: true},
	{Name: "home", HasWage: false},
}

// testSpace enumerates the two-choice space over the given horizon from a
// single no-experience initial state.
func testSpace(t *testing.T, periods int) *model.CoreSpace {
	t.Helper()
	initial := model.State{Period: 0, Experience: []int{0, 0}, Lagged: 1}
	states, err := model.Enumerate(testChoices, periods, []model.State{initial}, -1, -1)
	require.NoError(t, err)
	space, err := model.NewCoreSpace(testChoices, states)
	require.NoError(t, err)
	return space
}

func fullPartition() []model.Partition {
	return []model.Partition{{Key: 0, ChoiceSet: []bool{true, true}}}
}

// stochasticParams returns a parametrization with experience-increasing
// wages, lag persistence and a mid-level home reward, so that both
// choices win somewhere in every late period.
func stochasticParams(delta float64) *model.Params {
	return &model.Params{
		Delta: delta,
		Wage: map[string][]model.Coefficient{
			"work": {
				{Covariate: "exp_work", Value: 0.35},
				{Covariate: "lagged_work", Value: 0.2},
			},
		},
		NonPec: map[string][]model.Coefficient{
			"home": {{Covariate: "constant", Value: 2.0}},
		},
		ShockCov:        mat.NewSymDense(2, []float64{0.04, 0, 0, 0.25}),
		MaxSchooling:    -1,
		SchoolingChoice: -1,
	}
}

// TestSolve_InputSentinels verifies the up-front validation errors.
func TestSolve_InputSentinels(t *testing.T) {
	space := testSpace(t, 2)
	params := stochasticParams(0.9)

	_, err := emax.Solve(nil, fullPartition(), params, nil, emax.DefaultOptions())
	assert.ErrorIs(t, err, emax.ErrNilSpace)

	_, err = emax.Solve(space, nil, params, nil, emax.DefaultOptions())
	assert.ErrorIs(t, err, emax.ErrNoPartitions)

	opts := emax.DefaultOptions()
	opts.Draws = 0
	_, err = emax.Solve(space, fullPartition(), params, nil, opts)
	assert.ErrorIs(t, err, emax.ErrBadDraws)

	opts = emax.DefaultOptions()
	opts.Workers = -1
	_, err = emax.Solve(space, fullPartition(), params, nil, opts)
	assert.ErrorIs(t, err, emax.ErrBadWorkers)

	bad := stochasticParams(1.5)
	_, err = emax.Solve(space, fullPartition(), bad, nil, emax.DefaultOptions())
	assert.ErrorIs(t, err, model.ErrBadDelta)
}

// TestSolve_TerminalPeriodMonteCarlo verifies that terminal-period
// expected value functions equal the Monte Carlo mean of per-draw maximal
// choice values, recomputed by hand from the same battery and factor.
func TestSolve_TerminalPeriodMonteCarlo(t *testing.T) {
	const (
		periods = 3
		nDraws  = 50
		seed    = 9
	)
	space := testSpace(t, periods)
	parts := fullPartition()
	params := stochasticParams(0.9)

	opts := emax.DefaultOptions()
	opts.Draws = nDraws
	opts.SolutionSeed = seed
	opts.Workers = 1

	sol, err := emax.Solve(space, parts, params, nil, opts)
	require.NoError(t, err)

	// Recompute the terminal period by hand.
	chol, err := params.Cholesky()
	require.NoError(t, err)
	battery, err := shocks.NewBattery(periods, nDraws, 2, seed)
	require.NoError(t, err)
	raw, err := battery.Period(periods - 1)
	require.NoError(t, err)
	tdraws, err := shocks.Transform(raw, parts[0].ChoiceSet, []bool{true, false}, chol)
	require.NoError(t, err)
	wages, nonpecs, err := reward.Systematic(space, &parts[0], params, nil, periods-1)
	require.NoError(t, err)

	blk, ok := sol.Block(periods-1, 0)
	require.True(t, ok)

	maxima := make([]float64, nDraws)
	for row := range space.States(periods - 1) {
		for d := 0; d < nDraws; d++ {
			vWork := wages.At(row, 0)*tdraws.At(d, 0) + nonpecs.At(row, 0)
			vHome := tdraws.At(d, 1) + nonpecs.At(row, 1)
			maxima[d] = math.Max(vWork, vHome)
		}
		assert.InDelta(t, stat.Mean(maxima, nil), blk.EMax[row], 1e-12,
			"terminal EMax is the MC mean of per-draw maxima (state %d)", row)
	}
}

// TestSolve_MyopicInvariant verifies that delta 0 yields identically zero
// expected value functions while rewards stay populated.
func TestSolve_MyopicInvariant(t *testing.T) {
	space := testSpace(t, 4)
	params := stochasticParams(0)

	sol, err := emax.Solve(space, fullPartition(), params, nil, emax.DefaultOptions())
	require.NoError(t, err)

	for p := 0; p < space.NumPeriods(); p++ {
		blk, ok := sol.Block(p, 0)
		require.True(t, ok)
		require.NotNil(t, blk.Wages, "rewards are computed even under myopia")
		for row, v := range blk.EMax {
			assert.Zero(t, v, "period %d state %d", p, row)
		}
	}
}

// TestSolve_ExampleScenario pins the deterministic two-period model:
// zero shock variance, delta 0.9, wage exp(1) vs home reward 5.
func TestSolve_ExampleScenario(t *testing.T) {
	space := testSpace(t, 2)
	params := &model.Params{
		Delta: 0.9,
		Wage: map[string][]model.Coefficient{
			"work": {{Covariate: "constant", Value: 1.0}},
		},
		NonPec: map[string][]model.Coefficient{
			"home": {{Covariate: "constant", Value: 5.0}},
		},
		ShockCov:        mat.NewSymDense(2, nil), // zero variance
		MaxSchooling:    -1,
		SchoolingChoice: -1,
	}

	opts := emax.DefaultOptions()
	opts.Draws = 10

	sol, err := emax.Solve(space, fullPartition(), params, nil, opts)
	require.NoError(t, err)

	// Terminal period: EMax = max(e^1, 5) = 5 for every state.
	blk1, ok := sol.Block(1, 0)
	require.True(t, ok)
	for row, v := range blk1.EMax {
		assert.InDelta(t, 5.0, v, 1e-12, "terminal state %d", row)
	}

	// Period 0: max(e + 0.9·5, 5 + 0.9·5) = 9.5.
	blk0, ok := sol.Block(0, 0)
	require.True(t, ok)
	require.Len(t, blk0.EMax, 1)
	assert.InDelta(t, 9.5, blk0.EMax[0], 1e-12)
}

// TestSolve_WorkerAndOrderInvariance verifies that worker count and
// partition order never change a single expected value function.
func TestSolve_WorkerAndOrderInvariance(t *testing.T) {
	space := testSpace(t, 4)
	params := stochasticParams(0.9)
	params.NonPec["home"] = append(params.NonPec["home"], model.Coefficient{Covariate: "urban", Value: -0.4})

	makeParts := func(reversed bool) []model.Partition {
		parts := []model.Partition{
			{Key: 0, ChoiceSet: []bool{true, true}, Covariates: map[string]float64{"urban": 0}},
			{Key: 1, ChoiceSet: []bool{true, true}, Covariates: map[string]float64{"urban": 1}},
		}
		if reversed {
			parts[0], parts[1] = parts[1], parts[0]
		}
		return parts
	}

	solve := func(parts []model.Partition, workers int) *emax.Solution {
		opts := emax.DefaultOptions()
		opts.Draws = 40
		opts.SolutionSeed = 11
		opts.Workers = workers
		sol, err := emax.Solve(space, parts, params, nil, opts)
		require.NoError(t, err)
		return sol
	}

	var (
		base     = solve(makeParts(false), 1)
		parallel = solve(makeParts(false), 4)
		reversed = solve(makeParts(true), 4)
	)
	for p := 0; p < space.NumPeriods(); p++ {
		for _, key := range []model.DenseKey{0, 1} {
			want, ok := base.Block(p, key)
			require.True(t, ok)
			got, ok := parallel.Block(p, key)
			require.True(t, ok)
			rev, ok := reversed.Block(p, key)
			require.True(t, ok)
			assert.Equal(t, want.EMax, got.EMax, "period %d dense %d: workers must not matter", p, key)
			assert.Equal(t, want.EMax, rev.EMax, "period %d dense %d: order must not matter", p, key)
		}
	}
}

// TestSolve_InterpolationExactAtSample verifies that interpolated periods
// keep bit-exact full-solution values at every sampled state and
// reproduce deterministically under a fixed seed.
func TestSolve_InterpolationExactAtSample(t *testing.T) {
	const (
		periods = 6
		points  = 9 // period 5 holds 10 states, so exactly one is predicted
	)
	space := testSpace(t, periods)
	params := stochasticParams(0.5)

	full := emax.DefaultOptions()
	full.Draws = 60
	full.SolutionSeed = 3

	interp := full
	interp.InterpolationPoints = points
	interp.InterpolationSeed = 21

	fullSol, err := emax.Solve(space, fullPartition(), params, nil, full)
	require.NoError(t, err)
	interpSol, err := emax.Solve(space, fullPartition(), params, nil, interp)
	require.NoError(t, err)
	interpSol2, err := emax.Solve(space, fullPartition(), params, nil, interp)
	require.NoError(t, err)

	terminal := periods - 1
	fullBlk, ok := fullSol.Block(terminal, 0)
	require.True(t, ok)
	interpBlk, ok := interpSol.Block(terminal, 0)
	require.True(t, ok)
	interpBlk2, ok := interpSol2.Block(terminal, 0)
	require.True(t, ok)

	require.Len(t, interpBlk.EMax, 10)
	exact := 0
	for row := range interpBlk.EMax {
		assert.False(t, math.IsNaN(interpBlk.EMax[row]))
		if interpBlk.EMax[row] == fullBlk.EMax[row] {
			exact++
		}
	}
	assert.GreaterOrEqual(t, exact, points, "sampled states keep exact values")
	assert.Equal(t, interpBlk.EMax, interpBlk2.EMax, "fixed seed reproduces the approximation bit-for-bit")
}

// TestSolve_SingularInterpolationDesign verifies that an interpolation
// design without cross-state reward variation is rejected as
// ErrSingularDesign instead of silently falling back to the full
// solution: with constant rewards every gap column is collinear with the
// intercept.
func TestSolve_SingularInterpolationDesign(t *testing.T) {
	space := testSpace(t, 6)
	params := &model.Params{
		Delta: 0.9,
		Wage: map[string][]model.Coefficient{
			"work": {{Covariate: "constant", Value: 0.5}},
		},
		NonPec: map[string][]model.Coefficient{
			"home": {{Covariate: "constant", Value: 2.0}},
		},
		ShockCov:        mat.NewSymDense(2, []float64{0.04, 0, 0, 0.25}),
		MaxSchooling:    -1,
		SchoolingChoice: -1,
	}

	opts := emax.DefaultOptions()
	opts.Draws = 30
	opts.InterpolationPoints = 7

	_, err := emax.Solve(space, fullPartition(), params, nil, opts)
	assert.ErrorIs(t, err, emax.ErrSingularDesign)
}

// TestSolve_InterpolatedInvariance verifies that worker count and
// partition order leave an interpolated multi-partition solve bitwise
// unchanged: budget shares and subsample streams depend only on
// (seed, period, dense key), never on scheduling.
func TestSolve_InterpolatedInvariance(t *testing.T) {
	space := testSpace(t, 6)
	params := &model.Params{
		Delta: 0.5,
		Wage: map[string][]model.Coefficient{
			"work": {
				{Covariate: "exp_work", Value: 0.35},
				{Covariate: "lagged_work", Value: 0.2},
			},
		},
		NonPec: map[string][]model.Coefficient{
			"home": {
				{Covariate: "constant", Value: 2.5},
				{Covariate: "urban", Value: 0.4},
			},
		},
		ShockCov:        mat.NewSymDense(2, []float64{0.04, 0, 0, 0.25}),
		MaxSchooling:    -1,
		SchoolingChoice: -1,
	}

	makeParts := func(reversed bool) []model.Partition {
		parts := []model.Partition{
			{Key: 0, ChoiceSet: []bool{true, true}, Covariates: map[string]float64{"urban": 0}},
			{Key: 1, ChoiceSet: []bool{true, true}, Covariates: map[string]float64{"urban": 1}},
		}
		if reversed {
			parts[0], parts[1] = parts[1], parts[0]
		}
		return parts
	}

	solve := func(parts []model.Partition, workers int) *emax.Solution {
		opts := emax.DefaultOptions()
		opts.Draws = 40
		opts.SolutionSeed = 7
		// The terminal period holds 20 states across both partitions, so
		// it alone is approximated; each partition gets 8 points.
		opts.InterpolationPoints = 16
		opts.InterpolationSeed = 13
		opts.Workers = workers
		sol, err := emax.Solve(space, parts, params, nil, opts)
		require.NoError(t, err)
		return sol
	}

	var (
		base     = solve(makeParts(false), 1)
		parallel = solve(makeParts(false), 4)
		reversed = solve(makeParts(true), 4)
	)
	for p := 0; p < space.NumPeriods(); p++ {
		for _, key := range []model.DenseKey{0, 1} {
			want, ok := base.Block(p, key)
			require.True(t, ok)
			got, ok := parallel.Block(p, key)
			require.True(t, ok)
			rev, ok := reversed.Block(p, key)
			require.True(t, ok)
			assert.Equal(t, want.EMax, got.EMax, "period %d dense %d: workers must not matter", p, key)
			assert.Equal(t, want.EMax, rev.EMax, "period %d dense %d: order must not matter", p, key)
		}
	}
}

// TestSolution_ContinuationUnknownPartition verifies the lookup error
// when Continuation is called with a dense key the solution was not
// built with.
func TestSolution_ContinuationUnknownPartition(t *testing.T) {
	space := testSpace(t, 2)
	opts := emax.DefaultOptions()
	opts.Draws = 5

	sol, err := emax.Solve(space, fullPartition(), stochasticParams(0.9), nil, opts)
	require.NoError(t, err)

	cont := make([]float64, 2)
	st := model.State{Period: 0, Experience: []int{0, 0}, Lagged: 1}
	err = sol.Continuation(99, st, cont)
	assert.ErrorIs(t, err, emax.ErrMissingPartition)
}

// TestSolve_InterpolationSkipsSmallPeriods verifies that periods at or
// below the budget are solved exactly even when interpolation is enabled.
func TestSolve_InterpolationSkipsSmallPeriods(t *testing.T) {
	const periods = 6
	space := testSpace(t, periods)
	params := stochasticParams(0.5)

	full := emax.DefaultOptions()
	full.Draws = 60
	full.SolutionSeed = 3

	interp := full
	interp.InterpolationPoints = 9

	fullSol, err := emax.Solve(space, fullPartition(), params, nil, full)
	require.NoError(t, err)
	interpSol, err := emax.Solve(space, fullPartition(), params, nil, interp)
	require.NoError(t, err)

	// Periods 0..4 hold at most 8 states (< 9 triggers nothing): exact.
	// Period 5 feeds interpolated continuation values into period 4, so
	// only the terminal comparison below is bitwise; earlier periods are
	// compared against a run whose terminal period was also approximated.
	for p := 0; p <= 3; p++ {
		fullBlk, ok := fullSol.Block(p, 0)
		require.True(t, ok)
		interpBlk, ok := interpSol.Block(p, 0)
		require.True(t, ok)
		for row := range fullBlk.EMax {
			assert.InDelta(t, fullBlk.EMax[row], interpBlk.EMax[row], 1.5,
				"period %d state %d: approximation error stays bounded", p, row)
		}
	}
}

// TestSolve_ProgressObserver verifies the per-period observer: reverse
// period order and the mode decided once per period.
func TestSolve_ProgressObserver(t *testing.T) {
	space := testSpace(t, 3)
	params := stochasticParams(0)

	var gotPeriods []int
	var gotModes []emax.Mode
	opts := emax.DefaultOptions()
	opts.Draws = 5
	opts.Progress = func(period int, mode emax.Mode) {
		gotPeriods = append(gotPeriods, period)
		gotModes = append(gotModes, mode)
	}

	_, err := emax.Solve(space, fullPartition(), params, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, gotPeriods, "backward induction runs last period first")
	assert.Equal(t, []emax.Mode{emax.Myopic, emax.Myopic, emax.Myopic}, gotModes)
}

// TestSolve_MissingContinuation verifies the fatal contract violation
// when a partition's core-index subset is not closed under transitions.
func TestSolve_MissingContinuation(t *testing.T) {
	space := testSpace(t, 2)
	params := stochasticParams(0.9)

	parts := []model.Partition{{
		Key:       0,
		ChoiceSet: []bool{true, true},
		// Period 1 drops the home successor of the initial state.
		CoreIndices: map[int][]int{0: {0}, 1: {0}},
	}}

	opts := emax.DefaultOptions()
	opts.Draws = 5
	_, err := emax.Solve(space, parts, params, nil, opts)
	assert.ErrorIs(t, err, emax.ErrMissingContinuation)
}

// TestMode_String pins the observer-facing mode names.
func TestMode_String(t *testing.T) {
	assert.Equal(t, "myopic", emax.Myopic.String())
	assert.Equal(t, "full", emax.FullSolution.String())
	assert.Equal(t, "interpolated", emax.Interpolated.String())
}
