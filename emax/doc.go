// Package emax is the backward-induction engine: it computes the expected
// value function (EMax) of every (period, dense partition, state) key by
// iterating periods from the terminal one to the first, feeding each
// period's already-solved results to the previous one as continuation
// values.
//
// Per period the engine picks one of three solution modes, decided once
// and passed explicitly through the call chain:
//
//   - Myopic       — discount factor exactly 0 ⇒ EMax identically zero,
//     no integration.
//   - FullSolution — per state, Monte Carlo average over a fixed battery
//     of Cholesky-transformed shock draws of the maximal
//     total choice value.
//   - Interpolated — for large periods, exact EMax on a seeded subsample
//     plus an OLS regression surrogate predicting the
//     remainder (exact values retained at sampled states).
//
// Dense partitions within a period are embarrassingly parallel: a bounded
// worker pool runs the reward / full-solution / interpolation steps per
// partition and a barrier join closes the period before the next (earlier)
// one starts. Workers write disjoint pre-allocated blocks, so no locking
// is needed on the solution aggregate.
//
// The ChoiceValues kernel defined here is shared verbatim by the forward
// simulator and the likelihood evaluator.
package emax
