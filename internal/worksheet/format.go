package worksheet

import (
	"strconv"
	"strings"
)

// Placeholder marks the hidden operand of a find-missing problem.
const Placeholder = "▢"

// format renders a chain into a Problem. It fails only if the chain does
// not evaluate.
func format(kind ProblemKind, operands []int, ops []Operator, rng Rand) (Problem, error) {
	result, err := Evaluate(operands, ops)
	if err != nil {
		return Problem{}, err
	}
	p := Problem{
		Kind:      kind,
		Operands:  operands,
		Operators: ops,
		Missing:   -1,
		Result:    result,
	}

	if kind == KindFindMissing {
		var candidates []int
		for pos, ok := range recoverable(operands, ops) {
			if ok {
				candidates = append(candidates, pos)
			}
		}
		p.Missing = candidates[rng.IntN(len(candidates))]
	}

	p.Text = render(p)
	return p, nil
}

func render(p Problem) string {
	var b strings.Builder
	for i, v := range p.Operands {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(p.Operators[i-1].Symbol())
			b.WriteByte(' ')
		}
		if i == p.Missing {
			b.WriteString(Placeholder)
		} else {
			b.WriteString(strconv.Itoa(v))
		}
	}
	b.WriteString(" = ")
	if p.Kind == KindFindMissing {
		b.WriteString(strconv.Itoa(p.Result))
	}
	return b.String()
}
