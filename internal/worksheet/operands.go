package worksheet

import (
	"fmt"
	"math"
	"sort"
)

// synthesize draws an operand chain for ops such that every left-to-right
// partial result stays in [0, CalculationLimit] and every division is
// exact. It returns a *ConstraintError when a draw cannot satisfy a bound.
func synthesize(spec BatchSpec, ops []Operator, rng Rand) ([]int, error) {
	limit := spec.CalculationLimit()
	operands := make([]int, 0, len(ops)+1)

	current := between(rng, 0, spec.MaxNumber)
	operands = append(operands, current)

	for i, op := range ops {
		pos := i + 1
		fail := func(format string, args ...any) error {
			return &ConstraintError{Position: pos, Operator: op, Message: fmt.Sprintf(format, args...)}
		}

		var next int
		switch op {
		case OpAdd:
			if current > limit {
				return nil, fail("running value %d above limit %d", current, limit)
			}
			next = between(rng, 0, limit-current)
			current += next

		case OpSub:
			if current < 0 {
				return nil, fail("running value %d is negative", current)
			}
			next = between(rng, 0, current)
			current -= next

		case OpMul:
			if current == 0 {
				next = between(rng, 1, spec.MaxNumber)
				break
			}
			next = between(rng, 1, max(2, limit/current))
			if next > math.MaxInt/current {
				return nil, fail("%d × %d overflows", current, next)
			}
			if current*next > limit {
				return nil, fail("%d × %d = %d above limit %d", current, next, current*next, limit)
			}
			current *= next

		case OpDiv:
			if current == 0 {
				next = between(rng, 1, spec.MaxNumber)
				break
			}
			divs := divisors(current)
			if len(divs) == 0 {
				return nil, fail("no divisor of %d", current)
			}
			next = divs[rng.IntN(len(divs))]
			current /= next

		default:
			return nil, fail("unknown operator")
		}

		operands = append(operands, next)
	}
	return operands, nil
}

// divisors returns the exact divisors of n > 0 in ascending order.
func divisors(n int) []int {
	if n <= 0 {
		return nil
	}
	var small, large []int
	for d := 1; d*d <= n; d++ {
		if n%d != 0 {
			continue
		}
		small = append(small, d)
		if q := n / d; q != d {
			large = append(large, q)
		}
	}
	sort.Ints(large)
	return append(small, large...)
}
