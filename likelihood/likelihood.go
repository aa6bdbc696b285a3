package likelihood

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/kwdp/emax"
	"github.com/katalvlaran/kwdp/model"
	"github.com/katalvlaran/kwdp/shocks"
)

// Criterion computes the scalar log-likelihood of an observed panel under
// a solved model: the sum over observations of the log of the
// Monte-Carlo-integrated probability of the observed choice, times the
// conditional log-wage density when a wage is observed.
//
// With a zero-variance shock covariance the evaluation is deterministic:
// each contribution is the indicator of whether the observed choice
// matches the value-maximizing one, floored at opts.MinProb, and no
// draws are consumed.
//
// Errors: option sentinels up front; ErrBadChoice / ErrUnknownState /
// ErrUnknownPartition on contract violations. No internal retries.
//
// Complexity: O(observations × draws × choices).
func Criterion(
	sol *emax.Solution,
	partitions []model.Partition,
	params *model.Params,
	observations []Observation,
	opts Options,
) (float64, error) {
	if sol == nil {
		return 0, ErrNilSolution
	}
	if len(observations) == 0 {
		return 0, ErrNoObservations
	}
	if opts.Draws <= 0 {
		return 0, ErrBadDraws
	}
	space := sol.Space()
	if err := params.Validate(space.NumChoices()); err != nil {
		return 0, err
	}
	minProb := opts.MinProb
	if minProb <= 0 {
		minProb = 1e-250
	}

	hasWage := wageMask(space.Choices())

	if params.Deterministic() {
		return deterministicCriterion(sol, params, observations, hasWage, minProb)
	}

	chol, err := params.Cholesky()
	if err != nil {
		return 0, err
	}
	battery, err := shocks.NewBattery(space.NumPeriods(), opts.Draws, space.NumChoices(), opts.Seed)
	if err != nil {
		return 0, err
	}

	// Transformed probability draws per partition, shared by every
	// observation in that partition.
	tdraws := make(map[model.DenseKey][]*mat.Dense, len(partitions))
	for i := range partitions {
		part := &partitions[i]
		perPeriod := make([]*mat.Dense, space.NumPeriods())
		for p := 0; p < space.NumPeriods(); p++ {
			raw, berr := battery.Period(p)
			if berr != nil {
				return 0, berr
			}
			if perPeriod[p], err = shocks.Transform(raw, part.ChoiceSet, hasWage, chol); err != nil {
				return 0, err
			}
		}
		tdraws[part.Key] = perPeriod
	}

	var (
		crit  float64
		cont  = make([]float64, space.NumChoices())
		vals  = make([]float64, space.NumChoices())
		shock = make([]float64, space.NumChoices())
	)
	for _, obs := range observations {
		wage, nonpec, err := lookupRewards(sol, space, obs)
		if err != nil {
			return 0, err
		}
		if err = sol.Continuation(obs.Dense, obs.State, cont); err != nil {
			return 0, err
		}

		// Conditional wage contribution: the observed wage pins down the
		// observed choice's shock; its marginal log-normal density enters
		// the contribution and the implied shock replaces the draw. The
		// replacement happens after the Cholesky transform, so the other
		// dimensions keep their unconditional joint distribution and the
		// density uses the marginal standard deviation.
		wageDensity := 1.0
		impliedShock := math.NaN()
		if obs.HasWage() && hasWage[obs.Choice] {
			sd := math.Sqrt(params.ShockCov.At(obs.Choice, obs.Choice))
			dist := math.Log(obs.Wage) - math.Log(wage[obs.Choice])
			if sd > 0 {
				wageDensity = distuv.Normal{Mu: 0, Sigma: sd}.Prob(dist)
				impliedShock = math.Exp(dist)
			}
		}

		draws, ok := tdraws[obs.Dense]
		if !ok {
			return 0, fmt.Errorf("%w: dense %d", ErrUnknownPartition, obs.Dense)
		}
		period := obs.State.Period

		matches := 0
		nDraws, _ := draws[period].Dims()
		for d := 0; d < nDraws; d++ {
			copy(shock, draws[period].RawRowView(d))
			if !math.IsNaN(impliedShock) {
				shock[obs.Choice] = impliedShock
			}
			if _, argmax := emax.ChoiceValues(wage, nonpec, cont, params.Delta, shock, vals); argmax == obs.Choice {
				matches++
			}
		}

		prob := float64(matches) / float64(nDraws) * wageDensity
		if prob < minProb {
			prob = minProb
		}
		crit += math.Log(prob)
	}

	return crit, nil
}

// deterministicCriterion is the zero-variance branch: choices are fully
// determined by systematic rewards, so each contribution is an indicator
// and no Monte Carlo draws are consumed.
func deterministicCriterion(
	sol *emax.Solution,
	params *model.Params,
	observations []Observation,
	hasWage []bool,
	minProb float64,
) (float64, error) {
	var (
		space   = sol.Space()
		crit    float64
		cont    = make([]float64, space.NumChoices())
		vals    = make([]float64, space.NumChoices())
		neutral = shocks.NeutralShock(hasWage)
	)
	for _, obs := range observations {
		wage, nonpec, err := lookupRewards(sol, space, obs)
		if err != nil {
			return 0, err
		}
		if err = sol.Continuation(obs.Dense, obs.State, cont); err != nil {
			return 0, err
		}

		prob := minProb
		if _, argmax := emax.ChoiceValues(wage, nonpec, cont, params.Delta, neutral, vals); argmax == obs.Choice {
			prob = 1
		}
		crit += math.Log(prob)
	}
	return crit, nil
}

// lookupRewards resolves an observation's systematic reward rows from the
// solved model, validating the observation along the way.
func lookupRewards(sol *emax.Solution, space *model.CoreSpace, obs Observation) (wage, nonpec []float64, err error) {
	if obs.Choice < 0 || obs.Choice >= space.NumChoices() {
		return nil, nil, fmt.Errorf("%w: agent %d, period %d", ErrBadChoice, obs.Agent, obs.Period)
	}
	blk, ok := sol.Block(obs.State.Period, obs.Dense)
	if !ok {
		return nil, nil, fmt.Errorf("%w: dense %d", ErrUnknownPartition, obs.Dense)
	}
	coreIdx, ok := space.Locate(obs.State)
	if !ok {
		return nil, nil, fmt.Errorf("%w: agent %d, period %d", ErrUnknownState, obs.Agent, obs.Period)
	}
	row, ok := blk.Row(coreIdx)
	if !ok {
		return nil, nil, fmt.Errorf("%w: agent %d, period %d", ErrUnknownState, obs.Agent, obs.Period)
	}
	return blk.Wages.RawRowView(row), blk.NonPecs.RawRowView(row), nil
}

func wageMask(choices []model.ChoiceSpec) []bool {
	mask := make([]bool, len(choices))
	for c, spec := range choices {
		mask[c] = spec.HasWage
	}
	return mask
}
