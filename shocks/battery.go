package shocks

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Battery is a fixed battery of independent standard-normal draws indexed
// by (period, draw, choice dimension). It is immutable after construction
// and safe to share across workers; callers transform copies, never the
// battery itself.
type Battery struct {
	periods []*mat.Dense // each nDraws × nChoices
}

// NewBattery generates a (periods × draws × choices) battery of N(0,1)
// draws from an explicit seed. Each period owns an independent substream,
// so draws for period p are identical no matter how many periods, draws
// or choices surround it.
//
// Errors: ErrBadShape on non-positive dimensions.
//
// Complexity: O(periods·draws·choices).
func NewBattery(periods, draws, choices int, seed uint64) (*Battery, error) {
	if periods <= 0 || draws <= 0 || choices <= 0 {
		return nil, ErrBadShape
	}

	parent := normalizeSeed(seed)
	b := &Battery{periods: make([]*mat.Dense, periods)}

	for p := 0; p < periods; p++ {
		norm := distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   rand.NewSource(DeriveSeed(parent, uint64(p))),
		}
		data := make([]float64, draws*choices)
		for i := range data {
			data[i] = norm.Rand()
		}
		b.periods[p] = mat.NewDense(draws, choices, data)
	}

	return b, nil
}

// NumPeriods returns the number of period slices in the battery.
func (b *Battery) NumPeriods() int { return len(b.periods) }

// NumDraws returns the number of draws per period.
func (b *Battery) NumDraws() int {
	r, _ := b.periods[0].Dims()
	return r
}

// Period returns the raw nDraws×nChoices standard-normal slice of one
// period. The returned matrix must not be mutated.
//
// Errors: ErrPeriodOutOfRange.
func (b *Battery) Period(p int) (*mat.Dense, error) {
	if p < 0 || p >= len(b.periods) {
		return nil, ErrPeriodOutOfRange
	}
	return b.periods[p], nil
}
