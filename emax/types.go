package emax

import (
	"errors"
	"runtime"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/kwdp/model"
)

// Sentinel errors of the backward-induction engine.
var (
	// ErrNilSpace indicates a nil core state space.
	ErrNilSpace = errors.New("emax: state space is nil")

	// ErrNoPartitions indicates an empty dense-partition list.
	ErrNoPartitions = errors.New("emax: at least one dense partition is required")

	// ErrBadDraws indicates a non-positive Monte Carlo draw count.
	ErrBadDraws = errors.New("emax: number of Monte Carlo draws must be positive")

	// ErrBadWorkers indicates a negative worker count.
	ErrBadWorkers = errors.New("emax: worker count must be non-negative")

	// ErrMissingPartition indicates a continuation lookup against a dense
	// key the solution holds no blocks for. Within Solve every block is
	// pre-allocated, so the error only surfaces through Continuation
	// callers that pass an unknown dense key.
	ErrMissingPartition = errors.New("emax: missing dense-partition result")

	// ErrMissingContinuation indicates a successor state absent from the
	// next period's solved block: the partition's core-index subset is
	// not closed under the transition function.
	ErrMissingContinuation = errors.New("emax: successor state missing from next period's results")

	// ErrSingularDesign indicates a singular predictor matrix during the
	// interpolation fit. Surfaced as a fatal configuration error rather
	// than silently falling back to the full solution, since it signals a
	// degenerate state-space partition.
	ErrSingularDesign = errors.New("emax: singular interpolation design matrix")
)

// Mode is the solution mode of one period, decided once per period by the
// backward-induction engine.
type Mode int

const (
	// Myopic — discount factor 0; EMax identically zero.
	Myopic Mode = iota
	// FullSolution — exact Monte Carlo integration for every state.
	FullSolution
	// Interpolated — exact subsample plus OLS regression surrogate.
	Interpolated
)

// String implements fmt.Stringer for progress reporting.
func (m Mode) String() string {
	switch m {
	case Myopic:
		return "myopic"
	case FullSolution:
		return "full"
	case Interpolated:
		return "interpolated"
	default:
		return "unknown"
	}
}

// Options configures a solve.
//
//	Draws               - Monte Carlo draws per state for EMax integration.
//	SolutionSeed        - seed of the solution draw battery (0 means the
//	                      fixed default).
//	InterpolationPoints - interpolation budget; negative disables
//	                      interpolation, otherwise periods with more
//	                      states than the budget are approximated.
//	InterpolationSeed   - seed of the subsample selection.
//	Workers             - parallel workers across dense partitions;
//	                      0 means runtime.NumCPU().
//	Progress            - optional per-period observer; nil means silent.
type Options struct {
	Draws               int
	SolutionSeed        uint64
	InterpolationPoints int
	InterpolationSeed   uint64
	Workers             int
	Progress            func(period int, mode Mode)
}

// DefaultOptions returns the defaults: 500 draws, interpolation disabled,
// one worker per CPU.
func DefaultOptions() Options {
	return Options{
		Draws:               500,
		InterpolationPoints: -1,
		Workers:             runtime.NumCPU(),
	}
}

// Block holds the solved quantities of one (period, dense partition)
// pair: systematic wages and non-pecuniary rewards per (state, choice)
// and the expected value function per state. Rows follow the partition's
// core-index subset in order.
//
// Blocks are written exactly once during Solve and read-only afterwards.
type Block struct {
	Wages   *mat.Dense
	NonPecs *mat.Dense
	EMax    []float64

	rows  []int       // row → core index
	rowOf map[int]int // core index → row
}

// Rows returns the core-state indices backing the block's rows.
// The returned slice must not be mutated.
func (b *Block) Rows() []int { return b.rows }

// Row translates a core-state index into the block's row, reporting
// whether the state belongs to this partition.
func (b *Block) Row(coreIndex int) (int, bool) {
	r, ok := b.rowOf[coreIndex]
	return r, ok
}

type blockKey struct {
	period int
	dense  model.DenseKey
}

// Solution is the solved model: wages, non-pecuniary rewards and expected
// value functions keyed by (period, dense partition, state). Owned by the
// engine until Solve returns, read-only afterwards; the simulator and the
// likelihood evaluator share it without locking.
type Solution struct {
	space  *model.CoreSpace
	blocks map[blockKey]*Block
}

// Block returns the solved block of one (period, dense key) pair.
func (s *Solution) Block(period int, dense model.DenseKey) (*Block, bool) {
	b, ok := s.blocks[blockKey{period: period, dense: dense}]
	return b, ok
}

// Space returns the core state space the solution was computed on.
func (s *Solution) Space() *model.CoreSpace { return s.space }

// Continuation fills cont (len == number of choices) with the expected
// value function of the state reached from st by each choice, looked up
// in the next period's block of the same dense key. For the terminal
// period every continuation is zero. Successors outside the admissible
// space (states blocked by feasibility ceilings) contribute zero; their
// choices carry the inadmissibility penalty and never win the argmax.
//
// Errors: ErrMissingPartition, ErrMissingContinuation.
func (s *Solution) Continuation(dense model.DenseKey, st model.State, cont []float64) error {
	for c := range cont {
		cont[c] = 0
	}
	if st.Period+1 >= s.space.NumPeriods() {
		return nil
	}

	next, ok := s.Block(st.Period+1, dense)
	if !ok {
		return ErrMissingPartition
	}
	for c := range cont {
		succ := st.Apply(c)
		coreIdx, admissible := s.space.Locate(succ)
		if !admissible {
			continue
		}
		row, inPart := next.Row(coreIdx)
		if !inPart {
			return ErrMissingContinuation
		}
		cont[c] = next.EMax[row]
	}
	return nil
}

// newSolution pre-allocates one block per (period, partition) with the
// row bookkeeping in place, so parallel workers only ever write into
// disjoint, already-reachable structures.
func newSolution(space *model.CoreSpace, partitions []model.Partition) *Solution {
	sol := &Solution{
		space:  space,
		blocks: make(map[blockKey]*Block, space.NumPeriods()*len(partitions)),
	}
	for p := 0; p < space.NumPeriods(); p++ {
		for i := range partitions {
			part := &partitions[i]
			rows := part.Indices(space, p)
			rowOf := make(map[int]int, len(rows))
			for r, idx := range rows {
				rowOf[idx] = r
			}
			sol.blocks[blockKey{period: p, dense: part.Key}] = &Block{
				EMax:  make([]float64, len(rows)),
				rows:  rows,
				rowOf: rowOf,
			}
		}
	}
	return sol
}
