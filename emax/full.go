package emax

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/kwdp/model"
	"github.com/katalvlaran/kwdp/shocks"
)

// solvePartitionFull computes the exact Monte Carlo expected value
// function of every state in one partition-period: the kernel's maximal
// choice value is averaged over the full transformed draw battery. This
// is the unbiased estimator; its variance depends solely on the
// configured draw count and the shock covariance.
func solvePartitionFull(
	sol *Solution,
	space *model.CoreSpace,
	part *model.Partition,
	params *model.Params,
	hasWage []bool,
	chol *mat.TriDense,
	battery *shocks.Battery,
	period int,
) error {
	blk, _ := sol.Block(period, part.Key)

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

	emaxRows(blk, cont, tdraws, params.Delta, nil)
	return nil
}

// emaxRows fills blk.EMax for the given rows (nil ⇒ every row) with the
// per-state Monte Carlo mean of maximal choice values.
func emaxRows(blk *Block, cont *mat.Dense, tdraws *mat.Dense, delta float64, rows []int) {
	var (
		nDraws, m = tdraws.Dims()
		maxima    = make([]float64, nDraws)
		scratch   = make([]float64, m)
	)
	if rows == nil {
		rows = make([]int, len(blk.rows))
		for r := range rows {
			rows[r] = r
		}
	}

	for _, r := range rows {
		wage := blk.Wages.RawRowView(r)
		nonpec := blk.NonPecs.RawRowView(r)
		contRow := cont.RawRowView(r)
		for d := 0; d < nDraws; d++ {
			maxima[d], _ = ChoiceValues(wage, nonpec, contRow, delta, tdraws.RawRowView(d), scratch)
		}
		blk.EMax[r] = stat.Mean(maxima, nil)
	}
}
