// Package shocks generates and transforms the standard-normal draw
// batteries used by the solution engine.
//
// Three independently seeded batteries exist per parametrization:
// solution draws (EMax integration), probability draws (likelihood
// integration) and simulation draws (forward simulation). All three are
// transformed the same way: multiplication by the Cholesky factor of the
// shock covariance, then exponentiation of the wage-choice dimensions so
// that wage shocks enter multiplicatively (log-normal) while
// non-pecuniary shocks stay additive.
//
// Determinism: a battery is a pure function of (shape, seed); per-period
// substreams are derived with a SplitMix64-style mix so draws for one
// period never depend on how many draws another period consumed.
package shocks
