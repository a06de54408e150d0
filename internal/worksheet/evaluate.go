package worksheet

import (
	"errors"
	"fmt"
)

// Evaluate folds the chain left to right. It fails on a negative
// intermediate value or a division with a remainder.
func Evaluate(operands []int, ops []Operator) (int, error) {
	if len(operands) != len(ops)+1 {
		return 0, fmt.Errorf("chain has %d operands and %d operators", len(operands), len(ops))
	}
	if operands[0] < 0 {
		return 0, fmt.Errorf("operand 0 is negative")
	}
	current := operands[0]
	for i, op := range ops {
		next, err := op.apply(current, operands[i+1])
		if err != nil {
			return 0, fmt.Errorf("step %d: %w", i+1, err)
		}
		current = next
	}
	return current, nil
}

// unwind inverts op: given the value after "x op b", it returns x.
func unwind(op Operator, after, b int) (int, error) {
	switch op {
	case OpAdd:
		if b > after {
			return 0, fmt.Errorf("cannot undo + %d from %d", b, after)
		}
		return after - b, nil
	case OpSub:
		return after + b, nil
	case OpMul:
		if b == 0 || after%b != 0 {
			return 0, fmt.Errorf("cannot undo × %d from %d", b, after)
		}
		return after / b, nil
	case OpDiv:
		return after * b, nil
	default:
		return 0, fmt.Errorf("unknown operator %d", int(op))
	}
}

// target returns the value the chain must hold after operand pos for the
// operands after pos to reach result.
func target(operands []int, ops []Operator, pos, result int) (int, error) {
	t := result
	for k := len(ops) - 1; k >= pos; k-- {
		prev, err := unwind(ops[k], t, operands[k+1])
		if err != nil {
			return 0, err
		}
		t = prev
	}
	return t, nil
}

// recoverable reports, per operand position, whether a solver can recover
// that operand uniquely from the others and the result. Only a × or ÷
// applied to a zero running value loses information.
func recoverable(operands []int, ops []Operator) []bool {
	out := make([]bool, len(operands))
	out[0] = true
	prefix := operands[0]
	for m := 1; m < len(operands); m++ {
		switch ops[m-1] {
		case OpMul, OpDiv:
			out[m] = prefix != 0
		default:
			out[m] = true
		}
		next, err := ops[m-1].apply(prefix, operands[m])
		if err != nil {
			return out
		}
		prefix = next
	}
	return out
}

// Solve recovers the hidden operand of a find-missing problem using only
// the visible operands, the operators and the shown result.
func Solve(p Problem) (int, error) {
	if p.Kind != KindFindMissing || p.Missing < 0 || p.Missing >= len(p.Operands) {
		return 0, errors.New("problem has no hidden operand")
	}
	m := p.Missing

	t, err := target(p.Operands, p.Operators, m, p.Result)
	if err != nil {
		return 0, err
	}
	if m == 0 {
		return t, nil
	}

	prefix, err := Evaluate(p.Operands[:m], p.Operators[:m-1])
	if err != nil {
		return 0, err
	}

	switch op := p.Operators[m-1]; op {
	case OpAdd:
		if t < prefix {
			return 0, fmt.Errorf("%d + x = %d has no non-negative solution", prefix, t)
		}
		return t - prefix, nil
	case OpSub:
		if t > prefix {
			return 0, fmt.Errorf("%d - x = %d has no non-negative solution", prefix, t)
		}
		return prefix - t, nil
	case OpMul:
		if prefix == 0 || t%prefix != 0 {
			return 0, fmt.Errorf("%d × x = %d has no unique solution", prefix, t)
		}
		return t / prefix, nil
	case OpDiv:
		if t == 0 || prefix%t != 0 {
			return 0, fmt.Errorf("%d ÷ x = %d has no unique solution", prefix, t)
		}
		return prefix / t, nil
	default:
		return 0, fmt.Errorf("unknown operator %d", int(op))
	}
}
