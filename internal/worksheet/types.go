package worksheet

import "fmt"

// ProblemKind selects what the learner is asked to produce.
type ProblemKind int

const (
	// KindCompute asks for the value of the whole chain: "3 + 4 = ".
	KindCompute ProblemKind = iota

	// KindFindMissing hides one operand and shows the result: "3 + ▢ = 7".
	KindFindMissing
)

// Wire names, shared by the CLI flags, the HTTP API and the preset store.
const (
	kindComputeName     = "simple_calculation"
	kindFindMissingName = "find_missing_number"
)

func (k ProblemKind) String() string {
	switch k {
	case KindCompute:
		return kindComputeName
	case KindFindMissing:
		return kindFindMissingName
	default:
		return fmt.Sprintf("ProblemKind(%d)", int(k))
	}
}

// ParseProblemKind parses a wire name into a ProblemKind.
func ParseProblemKind(s string) (ProblemKind, error) {
	switch s {
	case kindComputeName, "compute":
		return KindCompute, nil
	case kindFindMissingName, "find_missing":
		return KindFindMissing, nil
	default:
		return 0, &ConfigError{Field: "problem_type", Message: fmt.Sprintf("unknown problem type %q", s)}
	}
}

// OperatorCategory selects the set of operators a batch may use.
type OperatorCategory int

const (
	CategoryAddSub OperatorCategory = iota
	CategoryMulDiv
	CategoryAll
)

func (c OperatorCategory) String() string {
	switch c {
	case CategoryAddSub:
		return "add_subtract"
	case CategoryMulDiv:
		return "multiply_divide"
	case CategoryAll:
		return "all"
	default:
		return fmt.Sprintf("OperatorCategory(%d)", int(c))
	}
}

// ParseOperatorCategory parses a wire name into an OperatorCategory.
func ParseOperatorCategory(s string) (OperatorCategory, error) {
	switch s {
	case "add_subtract":
		return CategoryAddSub, nil
	case "multiply_divide":
		return CategoryMulDiv, nil
	case "all":
		return CategoryAll, nil
	default:
		return 0, &ConfigError{Field: "operators", Message: fmt.Sprintf("unknown operator category %q", s)}
	}
}

// CompositionMode controls how operators are picked within one problem.
type CompositionMode int

const (
	// ModeMixed draws every operator independently, subject to the
	// batch-wide sequential quota.
	ModeMixed CompositionMode = iota

	// ModeSequential repeats one operator through the whole chain.
	ModeSequential
)

func (m CompositionMode) String() string {
	switch m {
	case ModeMixed:
		return "mixed"
	case ModeSequential:
		return "sequential"
	default:
		return fmt.Sprintf("CompositionMode(%d)", int(m))
	}
}

// ParseCompositionMode parses a wire name into a CompositionMode.
func ParseCompositionMode(s string) (CompositionMode, error) {
	switch s {
	case "mixed":
		return ModeMixed, nil
	case "sequential":
		return ModeSequential, nil
	default:
		return 0, &ConfigError{Field: "op_mode", Message: fmt.Sprintf("unknown composition mode %q", s)}
	}
}

// Problem is one generated worksheet item.
type Problem struct {
	// Index is the zero-based position of the problem in its batch.
	Index int

	Kind ProblemKind

	// Operands and Operators form the chain: Operands[i] Operators[i] Operands[i+1].
	Operands  []int
	Operators []Operator

	// Missing is the hidden operand position for KindFindMissing, -1 otherwise.
	Missing int

	// Result is the left-to-right value of the chain. It is only printed
	// for KindFindMissing.
	Result int

	// Text is the rendered problem, e.g. "12 + 5 - 3 = " or "12 + ▢ - 3 = 14".
	Text string
}

// String returns the rendered problem text.
func (p Problem) String() string {
	return p.Text
}
