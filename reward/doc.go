// Package reward evaluates the systematic (non-stochastic) part of every
// choice's flow reward: the wage as the exponential of a linear predictor
// over state covariates, and the non-pecuniary reward as the raw linear
// predictor plus type shifts.
//
// Choices that are structurally infeasible in a partition (masked out by
// its choice set or blocked by the schooling ceiling) receive a large
// fixed penalty on their non-pecuniary reward, so they never dominate the
// maximization downstream. This is the penalty variant of the
// inadmissibility invariant; nothing ever has to exclude them explicitly.
//
// Systematic is a pure function of its inputs: no caches, no side effects.
package reward
