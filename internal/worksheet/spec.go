package worksheet

import "fmt"

// Upper bounds on a BatchSpec. They keep the calculation limit and the
// divisor enumeration small enough for an interactive request.
const (
	MaxNumberLimit   = 100000
	MaxOperandsLimit = 8
	MaxProblemsLimit = 500
)

// BatchSpec describes one worksheet batch. All fields are required.
type BatchSpec struct {
	Kind        ProblemKind
	MaxNumber   int
	NumOperands int
	Category    OperatorCategory
	NumProblems int
	Mode        CompositionMode
}

// DefaultSpec is 50 two-operand addition and subtraction problems within 20.
func DefaultSpec() BatchSpec {
	return BatchSpec{
		Kind:        KindCompute,
		MaxNumber:   20,
		NumOperands: 2,
		Category:    CategoryAddSub,
		NumProblems: 50,
		Mode:        ModeMixed,
	}
}

// CalculationLimit is the bound every intermediate value must stay within.
func (s BatchSpec) CalculationLimit() int {
	return s.MaxNumber * 10
}

// MaxSequential is the number of all-same-operator problems a Mixed batch
// may contain.
func (s BatchSpec) MaxSequential() int {
	return s.NumProblems / 10
}

// quotaApplies reports whether the sequential quota constrains this batch.
func (s BatchSpec) quotaApplies() bool {
	return s.Mode == ModeMixed && s.NumOperands > 2
}

// Operators returns the operator set for the spec's category.
func (s BatchSpec) Operators() []Operator {
	return OperatorSet(s.Category)
}

// Validate checks every field and returns a *ConfigError describing the
// first problem found.
func (s BatchSpec) Validate() error {
	switch s.Kind {
	case KindCompute, KindFindMissing:
	default:
		return &ConfigError{Field: "problem_type", Message: fmt.Sprintf("unsupported problem kind %d", int(s.Kind))}
	}
	switch s.Mode {
	case ModeMixed, ModeSequential:
	default:
		return &ConfigError{Field: "op_mode", Message: fmt.Sprintf("unsupported composition mode %d", int(s.Mode))}
	}
	if s.MaxNumber < 1 || s.MaxNumber > MaxNumberLimit {
		return &ConfigError{Field: "max_number", Message: fmt.Sprintf("must be between 1 and %d, got %d", MaxNumberLimit, s.MaxNumber)}
	}
	if s.NumOperands < 2 || s.NumOperands > MaxOperandsLimit {
		return &ConfigError{Field: "num_operands", Message: fmt.Sprintf("must be between 2 and %d, got %d", MaxOperandsLimit, s.NumOperands)}
	}
	if s.NumProblems < 1 || s.NumProblems > MaxProblemsLimit {
		return &ConfigError{Field: "num_problems", Message: fmt.Sprintf("must be between 1 and %d, got %d", MaxProblemsLimit, s.NumProblems)}
	}

	if len(s.Operators()) == 0 {
		return &ConfigError{Field: "operators", Message: fmt.Sprintf("category %s has no operators", s.Category)}
	}
	return nil
}
