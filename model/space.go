package model

import (
	"strconv"
	"strings"
)

// CoreSpace is the ordered, indexable collection of admissible states per
// period. Every state owns a stable integer index within its period slice;
// the index is what the solver, simulator and evaluator key results by.
//
// CoreSpace is read-only after construction and safe for concurrent use.
type CoreSpace struct {
	choices []ChoiceSpec
	periods [][]State
	index   map[string]int // encoded state → index within its period slice
}

// NewCoreSpace builds a CoreSpace from an already-enumerated list of
// admissible states. States are grouped by period in input order; the
// position within a period's group becomes the state's stable index.
//
// Errors:
//   - ErrNoChoices / ErrNoStates on empty inputs.
//   - ErrExperienceArity if a state's experience vector does not match the
//     choice count.
//   - ErrChoiceOutOfRange if a lagged-choice index is invalid.
//
// Complexity: O(n) time and space over the number of states.
func NewCoreSpace(choices []ChoiceSpec, states []State) (*CoreSpace, error) {
	if len(choices) == 0 {
		return nil, ErrNoChoices
	}
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	nPeriods := 0
	for _, st := range states {
		if len(st.Experience) != len(choices) {
			return nil, ErrExperienceArity
		}
		if st.Lagged < 0 || st.Lagged >= len(choices) {
			return nil, ErrChoiceOutOfRange
		}
		if st.Period+1 > nPeriods {
			nPeriods = st.Period + 1
		}
	}

	s := &CoreSpace{
		choices: choices,
		periods: make([][]State, nPeriods),
		index:   make(map[string]int, len(states)),
	}
	for _, st := range states {
		key := encodeState(st)
		if _, dup := s.index[key]; dup {
			continue // duplicates collapse onto the first occurrence
		}
		s.index[key] = len(s.periods[st.Period])
		s.periods[st.Period] = append(s.periods[st.Period], st)
	}

	return s, nil
}

// NumPeriods returns the horizon length P; periods run 0..P-1.
func (s *CoreSpace) NumPeriods() int { return len(s.periods) }

// NumChoices returns the size of the fixed choice set.
func (s *CoreSpace) NumChoices() int { return len(s.choices) }

// Choices returns the choice specifications in index order.
// The returned slice must not be mutated.
func (s *CoreSpace) Choices() []ChoiceSpec { return s.choices }

// States returns the ordered admissible states of one period.
// The returned slice must not be mutated. Out-of-range periods yield nil.
func (s *CoreSpace) States(period int) []State {
	if period < 0 || period >= len(s.periods) {
		return nil
	}
	return s.periods[period]
}

// Locate returns the stable index of st within its period slice, or
// (0, false) when st is not an admissible state of this space. It is the
// successor lookup used to resolve continuation values.
//
// Complexity: O(len(Experience)) per call (key encoding), O(1) lookup.
func (s *CoreSpace) Locate(st State) (int, bool) {
	idx, ok := s.index[encodeState(st)]
	return idx, ok
}

// Apply returns the state reached from s by taking choice: the period
// advances, the choice's experience counter increments and the lagged
// choice is replaced. The receiver is not modified.
func (s State) Apply(choice int) State {
	exp := make([]int, len(s.Experience))
	copy(exp, s.Experience)
	exp[choice]++

	return State{
		Period:     s.Period + 1,
		Experience: exp,
		Lagged:     choice,
		Type:       s.Type,
	}
}

// Enumerate builds the admissible state space reachable from the given
// initial states over a finite horizon by breadth-first application of
// every feasible choice. A schooling ceiling (maxSchooling ≥ 0 together
// with a valid schoolingChoice index) blocks further accumulation of that
// choice's experience.
//
// The enumeration is a convenience for tests and examples; production
// callers are expected to supply their own admissible set to NewCoreSpace.
//
// Complexity: O(number of admissible states × choices).
func Enumerate(choices []ChoiceSpec, periods int, initial []State, maxSchooling, schoolingChoice int) ([]State, error) {
	if len(choices) == 0 {
		return nil, ErrNoChoices
	}
	if len(initial) == 0 {
		return nil, ErrNoStates
	}
	for _, st := range initial {
		if len(st.Experience) != len(choices) {
			return nil, ErrExperienceArity
		}
	}

	seen := make(map[string]bool)
	var out []State
	frontier := make([]State, 0, len(initial))
	for _, st := range initial {
		key := encodeState(st)
		if !seen[key] {
			seen[key] = true
			out = append(out, st)
			frontier = append(frontier, st)
		}
	}

	for len(frontier) > 0 {
		var next []State
		for _, st := range frontier {
			if st.Period+1 >= periods {
				continue
			}
			for c := range choices {
				if c == schoolingChoice && maxSchooling >= 0 && st.Experience[c] >= maxSchooling {
					continue // schooling ceiling reached
				}
				succ := st.Apply(c)
				key := encodeState(succ)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, succ)
				next = append(next, succ)
			}
		}
		frontier = next
	}

	return out, nil
}

// encodeState packs a state into a canonical map key.
func encodeState(st State) string {
	var b strings.Builder
	b.Grow(8 + 4*len(st.Experience))
	b.WriteString(strconv.Itoa(st.Period))
	b.WriteByte('|')
	for _, e := range st.Experience {
		b.WriteString(strconv.Itoa(e))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(st.Lagged))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(st.Type))
	return b.String()
}

// Indices resolves the core-state indices of one period that belong to
// partition p: the configured subset when present, otherwise every state
// of the period (0..n-1).
func (p *Partition) Indices(space *CoreSpace, period int) []int {
	if p.CoreIndices != nil {
		if sub, ok := p.CoreIndices[period]; ok {
			return sub
		}
	}
	n := len(space.States(period))
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	return all
}
