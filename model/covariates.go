package model

// CovariateRule computes one named derived covariate from the raw state
// fields and the partition's exogenous covariates. Rule sets are supplied
// by the caller alongside the enumeration; the reward evaluator resolves
// coefficient names against the constructed covariate set.
type CovariateRule struct {
	Name    string
	Compute func(s State, dense map[string]float64) float64
}

// Covariates constructs the full covariate set of one state within one
// partition: the base covariates derived from raw state fields, the
// partition's exogenous covariates, and every derived covariate from the
// rule set, in rule order.
//
// Base covariates (always present):
//
//	constant        — 1
//	period          — the state's period
//	exp_<choice>    — experience counter per choice name
//	lagged_<choice> — indicator of the previous period's choice
//
// Returns ErrDuplicateCovariate if a rule shadows an existing name.
//
// Complexity: O(choices + len(dense) + len(rules)).
func Covariates(s State, choices []ChoiceSpec, part *Partition, rules []CovariateRule) (map[string]float64, error) {
	covs := make(map[string]float64, 2+2*len(choices)+len(rules))
	covs["constant"] = 1
	covs["period"] = float64(s.Period)

	for c, spec := range choices {
		covs["exp_"+spec.Name] = float64(s.Experience[c])
		lag := 0.0
		if s.Lagged == c {
			lag = 1
		}
		covs["lagged_"+spec.Name] = lag
	}

	if part != nil {
		for name, v := range part.Covariates {
			covs[name] = v
		}
	}

	for _, rule := range rules {
		if _, exists := covs[rule.Name]; exists {
			return nil, ErrDuplicateCovariate
		}
		covs[rule.Name] = rule.Compute(s, part.covariatesOrNil())
	}

	return covs, nil
}

func (p *Partition) covariatesOrNil() map[string]float64 {
	if p == nil {
		return nil
	}
	return p.Covariates
}
