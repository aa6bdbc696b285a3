// Package simulate generates synthetic panels from a solved model.
//
// For each simulated agent the panel walks the horizon forward (the
// opposite direction of solving): look up the agent's current state in
// the solved block, apply the choice-value kernel to the agent-period
// simulation draw, take the value-maximizing choice (first index on
// ties), record the outcome and advance the state deterministically.
//
// Progress reporting is an explicit callback on Options; there is no
// package-level logger or mutable counter.
package simulate
