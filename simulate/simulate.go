package simulate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/kwdp/emax"
	"github.com/katalvlaran/kwdp/model"
	"github.com/katalvlaran/kwdp/shocks"
)

// Panel simulates the synthetic panel of a solved model: one Record per
// agent and period, ordered by (agent, period).
//
// Each agent starts from opts.Initial(agent); per period the agent-period
// simulation draw is fed to the choice-value kernel, the maximizing
// choice is taken (ties broken by first index), the realized wage is
// recorded for wage choices (NaN otherwise) and the state advances
// deterministically.
//
// Errors: option sentinels up front; ErrUnknownState / ErrUnknownPartition
// on contract violations with the enumeration component.
//
// Complexity: O(agents × periods × choices).
func Panel(
	sol *emax.Solution,
	partitions []model.Partition,
	params *model.Params,
	opts Options,
) ([]Record, error) {
	if sol == nil {
		return nil, ErrNilSolution
	}
	if opts.Agents <= 0 {
		return nil, ErrBadAgents
	}
	if opts.Initial == nil {
		return nil, ErrNilInitial
	}
	space := sol.Space()
	if err := params.Validate(space.NumChoices()); err != nil {
		return nil, err
	}

	chol, err := params.Cholesky()
	if err != nil {
		return nil, err
	}
	hasWage := wageMask(space.Choices())

	battery, err := shocks.NewBattery(space.NumPeriods(), opts.Agents, space.NumChoices(), opts.Seed)
	if err != nil {
		return nil, err
	}

	// One transformed battery per partition: choice sets differ across
	// partitions, draws do not.
	tdraws := make(map[model.DenseKey][]*mat.Dense, len(partitions))
	for i := range partitions {
		part := &partitions[i]
		perPeriod := make([]*mat.Dense, space.NumPeriods())
		for p := 0; p < space.NumPeriods(); p++ {
			raw, berr := battery.Period(p)
			if berr != nil {
				return nil, berr
			}
			if perPeriod[p], err = shocks.Transform(raw, part.ChoiceSet, hasWage, chol); err != nil {
				return nil, err
			}
		}
		tdraws[part.Key] = perPeriod
	}

	progressEvery := opts.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 100
	}

	var (
		out  = make([]Record, 0, opts.Agents*space.NumPeriods())
		cont = make([]float64, space.NumChoices())
		vals = make([]float64, space.NumChoices())
	)
	for agent := 0; agent < opts.Agents; agent++ {
		st, dense := opts.Initial(agent)
		draws, ok := tdraws[dense]
		if !ok {
			return nil, fmt.Errorf("%w: dense %d", ErrUnknownPartition, dense)
		}

		for period := st.Period; period < space.NumPeriods(); period++ {
			blk, ok := sol.Block(period, dense)
			if !ok {
				return nil, fmt.Errorf("%w: dense %d", ErrUnknownPartition, dense)
			}
			coreIdx, ok := space.Locate(st)
			if !ok {
				return nil, fmt.Errorf("%w: agent %d, period %d", ErrUnknownState, agent, period)
			}
			row, ok := blk.Row(coreIdx)
			if !ok {
				return nil, fmt.Errorf("%w: agent %d, period %d", ErrUnknownState, agent, period)
			}

			if err = sol.Continuation(dense, st, cont); err != nil {
				return nil, err
			}

			draw := draws[period].RawRowView(agent)
			wage := blk.Wages.RawRowView(row)
			nonpec := blk.NonPecs.RawRowView(row)
			_, choice := emax.ChoiceValues(wage, nonpec, cont, params.Delta, draw, vals)

			realized := math.NaN()
			if hasWage[choice] {
				realized = wage[choice] * draw[choice]
			}

			out = append(out, Record{
				Agent:  agent,
				Period: period,
				Choice: choice,
				Wage:   realized,
				State:  st,
				Dense:  dense,
			})

			st = st.Apply(choice)
		}

		if opts.Progress != nil && (agent+1)%progressEvery == 0 {
			opts.Progress(agent + 1)
		}
	}

	return out, nil
}

func wageMask(choices []model.ChoiceSpec) []bool {
	mask := make([]bool, len(choices))
	for c, spec := range choices {
		mask[c] = spec.HasWage
	}
	return mask
}
