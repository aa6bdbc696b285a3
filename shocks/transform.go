package shocks

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform maps raw independent N(0,1) draws into economically
// meaningful shocks: rows are multiplied by the transpose of the
// lower-triangular Cholesky factor of the shock covariance, wage-choice
// dimensions are exponentiated in place, and dimensions disabled by the
// partition's choice-set mask are reset to their neutral shock (1 for
// wage choices, 0 for additive choices).
//
// The same factor must be applied to solution, probability and simulation
// draws of a given parametrization.
//
// Inputs are not mutated; the transformed matrix is freshly allocated.
//
// Errors: ErrDimensionMismatch when draws columns, mask lengths and the
// factor dimension disagree.
//
// Complexity: O(rows·choices²) for the multiplication.
func Transform(draws *mat.Dense, choiceSet, hasWage []bool, chol *mat.TriDense) (*mat.Dense, error) {
	rows, cols := draws.Dims()
	n, _ := chol.Dims()
	if cols != n || len(choiceSet) != n || len(hasWage) != n {
		return nil, ErrDimensionMismatch
	}

	out := mat.NewDense(rows, cols, nil)
	out.Mul(draws, chol.T())

	for j := 0; j < cols; j++ {
		switch {
		case !choiceSet[j]:
			neutral := 0.0
			if hasWage[j] {
				neutral = 1
			}
			for i := 0; i < rows; i++ {
				out.Set(i, j, neutral)
			}
		case hasWage[j]:
			for i := 0; i < rows; i++ {
				out.Set(i, j, math.Exp(out.At(i, j)))
			}
		}
	}

	return out, nil
}

// NeutralShock returns the shock vector with every dimension at its
// deterministic center: 1 for wage choices (multiplicative identity) and
// 0 for additive choices. It backs the myopic and zero-variance branches
// and the non-stochastic predictors of the interpolation step.
func NeutralShock(hasWage []bool) []float64 {
	out := make([]float64, len(hasWage))
	for j, w := range hasWage {
		if w {
			out[j] = 1
		}
	}
	return out
}
