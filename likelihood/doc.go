// Package likelihood scores observed panel data against a solved model.
//
// Per observation the criterion integrates, over the probability draw
// battery, the probability that the observed choice maximizes total value
// under the choice-value kernel. When a wage is observed, the observed
// choice's shock dimension is replaced by the shock implied by the wage
// (conditional simulation) and the observation additionally contributes
// the log-normal density of that implied shock.
//
// A degenerate zero-variance shock covariance takes a deterministic
// branch: the choice is fully determined by systematic rewards, so the
// contribution is an indicator and no Monte Carlo draws are consumed.
//
// Contributions are floored at a tiny probability before taking logs so
// the criterion stays finite; the criterion is the sum of log
// contributions across observations.
package likelihood
