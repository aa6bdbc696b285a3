// Package model defines the data surface consumed by the solution engine:
// core states, the per-period state space with stable indices, dense
// exogenous partitions, reward parameters and covariate construction.
//
// Terminology:
//
//   - Core state — a period-specific admissible combination of accumulated
//     experience, lagged choice and unobserved type, independent of any
//     dense partition.
//   - Dense partition — one exogenous, period-invariant combination of
//     covariates (its own feasible choice mask and covariate values);
//     partitions never interact while the model is being solved.
//
// The state-space *enumeration* itself is an external concern: the solver
// consumes a CoreSpace as a given, read-only structure. Enumerate is
// provided as a convenience for tests and examples that need a small
// admissible space built from initial conditions.
//
// All types in this package are immutable after construction; they are
// shared across parallel workers without locking.
package model
