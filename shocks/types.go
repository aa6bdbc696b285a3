package shocks

import "errors"

var (
	// ErrBadShape indicates non-positive battery dimensions.
	ErrBadShape = errors.New("shocks: battery dimensions must be positive")

	// ErrDimensionMismatch indicates draws, masks and Cholesky factor of
	// incompatible dimensions.
	ErrDimensionMismatch = errors.New("shocks: draws, choice masks and Cholesky factor must agree in dimension")

	// ErrPeriodOutOfRange indicates a battery lookup outside 0..periods-1.
	ErrPeriodOutOfRange = errors.New("shocks: period out of range")
)
