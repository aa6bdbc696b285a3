package emax

// ChoiceValues is the total-value kernel shared by the solver, the
// forward simulator and the likelihood evaluator.
//
// For one state and one realized shock vector (already Cholesky
// transformed, wage dimensions exponentiated) it computes per choice
//
//	value[c] = wage[c]·draw[c] + nonpec[c] + delta·cont[c]
//
// Wage shocks enter multiplicatively (wage choices carry exponentiated
// draws); additive choices carry wage ≡ 1 and a raw normal draw, so the
// same expression covers both. No clamping: NaNs and Infs propagate to
// the caller's invariants.
//
// out receives the per-choice totals and must have len == len(wage); the
// return values are the maximum total and the index of its first
// occurrence (deterministic tie break).
//
// Complexity: O(choices), allocation-free.
func ChoiceValues(wage, nonpec, cont []float64, delta float64, draw, out []float64) (maxVal float64, argmax int) {
	for c := range wage {
		out[c] = wage[c]*draw[c] + nonpec[c] + delta*cont[c]
		if c == 0 || out[c] > maxVal {
			maxVal = out[c]
			argmax = c
		}
	}
	return maxVal, argmax
}
