package worksheet

// Rand is the random source used by the generator. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform int in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// between returns a uniform int in [lo, hi]. Callers guarantee lo <= hi.
func between(rng Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// batchState is the only state shared between problems of one batch.
type batchState struct {
	sequential    int // accepted (or reserved) sequential problems
	maxSequential int
}

func newBatchState(spec BatchSpec) *batchState {
	return &batchState{maxSequential: spec.MaxSequential()}
}

// release returns a quota unit reserved by nextOperators for a problem
// that was later discarded.
func (s *batchState) release() {
	if s.sequential > 0 {
		s.sequential--
	}
}

// nextOperators picks the operator sequence for one problem. In Mixed mode
// with more than two operands an all-same draw reserves one unit of the
// sequential quota; the second return value reports that reservation.
func nextOperators(spec BatchSpec, state *batchState, rng Rand) ([]Operator, bool) {
	set := spec.Operators()
	gaps := spec.NumOperands - 1
	ops := make([]Operator, gaps)

	if !spec.quotaApplies() {
		op := set[rng.IntN(len(set))]
		for i := range ops {
			ops[i] = op
		}
		return ops, false
	}

	for {
		for i := range ops {
			ops[i] = set[rng.IntN(len(set))]
		}
		if !isSequential(ops) {
			return ops, false
		}
		if state.sequential < state.maxSequential {
			state.sequential++
			return ops, true
		}
	}
}
