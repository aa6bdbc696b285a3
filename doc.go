// Package kwdp solves finite-horizon dynamic discrete-choice models
// (Keane–Wolpin-style multi-sector labor-supply models with unobserved
// heterogeneity) by backward-induction dynamic programming, and exposes
// the solved model to a forward simulator and a likelihood evaluator.
//
// The module is organized into one package per concern:
//
//	model/      — core state space, dense partitions, parameters, covariates
//	shocks/     — standard-normal draw batteries + Cholesky shock transform
//	reward/     — systematic wage and non-pecuniary reward evaluation
//	emax/       — choice-value kernel, backward induction, Monte Carlo and
//	              regression-interpolated expected value functions
//	simulate/   — forward simulation of synthetic panels
//	likelihood/ — Monte Carlo likelihood of observed panels
//
// Design principles (shared across packages):
//   - Deterministic: every random quantity flows from an explicit seed;
//     same seed ⇒ identical results, independent of worker count.
//   - Strict sentinels: invalid inputs surface as package-level errors,
//     never panics; contract violations abort the whole solve.
//   - Read-only sharing: state-space tables and parameters are never
//     mutated during a solve; parallel workers write disjoint keys only.
//
// A typical session: enumerate (or receive) a state space, solve it with
// emax.Solve, then feed the Solution to simulate.Panel or
// likelihood.Criterion.
//
//	go get github.com/katalvlaran/kwdp
package kwdp
