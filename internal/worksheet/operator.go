package worksheet

import (
	"fmt"
	"math"
)

// Operator is one of the four arithmetic operators.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
)

// Symbol returns the glyph printed on the worksheet.
func (o Operator) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "×"
	case OpDiv:
		return "÷"
	default:
		return "?"
	}
}

func (o Operator) String() string {
	return o.Symbol()
}

// ParseOperator accepts both the printed glyphs and their ASCII forms.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+":
		return OpAdd, nil
	case "-", "−":
		return OpSub, nil
	case "×", "*", "x":
		return OpMul, nil
	case "÷", "/":
		return OpDiv, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}

var (
	addSubOps = []Operator{OpAdd, OpSub}
	mulDivOps = []Operator{OpMul, OpDiv}
	allOps    = []Operator{OpAdd, OpSub, OpMul, OpDiv}
)

// OperatorSet returns the operators allowed for a category. The returned
// slice must not be modified.
func OperatorSet(c OperatorCategory) []Operator {
	switch c {
	case CategoryAddSub:
		return addSubOps
	case CategoryMulDiv:
		return mulDivOps
	case CategoryAll:
		return allOps
	default:
		return nil
	}
}

// apply combines a and b. Negative results, inexact or zero division and
// overflow are errors.
func (o Operator) apply(a, b int) (int, error) {
	switch o {
	case OpAdd:
		if b > 0 && a > math.MaxInt-b {
			return 0, fmt.Errorf("%d + %d overflows", a, b)
		}
		return a + b, nil
	case OpSub:
		if b > a {
			return 0, fmt.Errorf("%d - %d is negative", a, b)
		}
		return a - b, nil
	case OpMul:
		if a != 0 && b > math.MaxInt/a {
			return 0, fmt.Errorf("%d × %d overflows", a, b)
		}
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, fmt.Errorf("%d ÷ 0", a)
		}
		if a%b != 0 {
			return 0, fmt.Errorf("%d ÷ %d leaves remainder %d", a, b, a%b)
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("unknown operator %d", int(o))
	}
}

// isSequential reports whether ops has more than one operator and all of
// them are the same.
func isSequential(ops []Operator) bool {
	if len(ops) < 2 {
		return false
	}
	for _, op := range ops[1:] {
		if op != ops[0] {
			return false
		}
	}
	return true
}
