package model

import (
	"gonum.org/v1/gonum/mat"
)

// Params carries every reward parameter affected by estimation: the
// discount factor, per-choice linear coefficient vectors for wages and
// non-pecuniary rewards, the shock covariance, type heterogeneity and
// feasibility parameters.
//
// Coefficient vectors are keyed by choice name; a choice absent from Wage
// has no wage component (its wage is fixed at 1), a choice absent from
// NonPec has zero systematic non-pecuniary reward.
//
// Params is read-only during a solve; nothing in the engine mutates it.
type Params struct {
	// Delta is the discount factor. Exactly 0 selects the myopic solution
	// (expected value functions identically zero).
	Delta float64

	// Wage maps a choice name to the linear predictor of its log wage.
	Wage map[string][]Coefficient

	// NonPec maps a choice name to the linear predictor of its
	// non-pecuniary reward.
	NonPec map[string][]Coefficient

	// ShockCov is the choices×choices covariance of the per-choice shocks.
	// A zero matrix selects the deterministic branches (no integration).
	ShockCov *mat.SymDense

	// TypeShares holds the population share per unobserved type; may be
	// nil for single-type models.
	TypeShares []float64

	// TypeShifts holds one row per type and one column per choice of
	// additive non-pecuniary shifts; may be nil.
	TypeShifts [][]float64

	// MaxSchooling caps the experience of SchoolingChoice; negative means
	// no ceiling.
	MaxSchooling int

	// SchoolingChoice is the index of the schooling choice, or -1 when the
	// model has none.
	SchoolingChoice int
}

// Validate checks internal consistency of the parameters against a choice
// count. It is called by every entry point that consumes Params.
//
// Errors: ErrBadDelta, ErrBadShockCov, ErrBadTypeShifts, ErrChoiceOutOfRange.
func (p *Params) Validate(nChoices int) error {
	if p.Delta < 0 || p.Delta > 1 {
		return ErrBadDelta
	}
	if p.ShockCov == nil || p.ShockCov.SymmetricDim() != nChoices {
		return ErrBadShockCov
	}
	if p.TypeShifts != nil {
		for _, row := range p.TypeShifts {
			if len(row) != nChoices {
				return ErrBadTypeShifts
			}
		}
		if p.TypeShares != nil && len(p.TypeShares) != len(p.TypeShifts) {
			return ErrBadTypeShifts
		}
	}
	if p.SchoolingChoice < -1 || p.SchoolingChoice >= nChoices {
		return ErrChoiceOutOfRange
	}
	return nil
}

// Cholesky returns the lower-triangular factor L of the shock covariance,
// ShockCov = L·Lᵀ. A zero covariance yields the zero factor (degenerate,
// deterministic shocks). A covariance that is neither zero nor positive
// definite yields ErrBadShockCov.
func (p *Params) Cholesky() (*mat.TriDense, error) {
	n := p.ShockCov.SymmetricDim()
	if isZeroSym(p.ShockCov) {
		return mat.NewTriDense(n, mat.Lower, nil), nil
	}

	var ch mat.Cholesky
	if ok := ch.Factorize(p.ShockCov); !ok {
		return nil, ErrBadShockCov
	}
	l := mat.NewTriDense(n, mat.Lower, nil)
	ch.LTo(l)
	return l, nil
}

// Deterministic reports whether the shock covariance is exactly zero, in
// which case choices are fully determined by systematic rewards and no
// Monte Carlo integration is needed.
func (p *Params) Deterministic() bool {
	return p.ShockCov != nil && isZeroSym(p.ShockCov)
}

// NonPecShift returns the additive type shift for (type, choice), zero
// when the model carries no type heterogeneity.
func (p *Params) NonPecShift(typ, choice int) float64 {
	if p.TypeShifts == nil || typ < 0 || typ >= len(p.TypeShifts) {
		return 0
	}
	return p.TypeShifts[typ][choice]
}

func isZeroSym(m *mat.SymDense) bool {
	n := m.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
