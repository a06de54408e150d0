package worksheet

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func generate(t *testing.T, seed uint64, spec BatchSpec) []Problem {
	t.Helper()
	problems, err := NewSeeded(seed, DefaultConfig()).Generate(context.Background(), spec)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return problems
}

// checkChain recomputes the chain step by step and fails on any bound or
// remainder violation.
func checkChain(t *testing.T, spec BatchSpec, p Problem) {
	t.Helper()
	if len(p.Operands) != spec.NumOperands {
		t.Fatalf("problem %d: %d operands, want %d", p.Index, len(p.Operands), spec.NumOperands)
	}
	if len(p.Operators) != spec.NumOperands-1 {
		t.Fatalf("problem %d: %d operators, want %d", p.Index, len(p.Operators), spec.NumOperands-1)
	}
	limit := spec.CalculationLimit()
	current := p.Operands[0]
	if current < 0 || current > spec.MaxNumber {
		t.Fatalf("problem %d: first operand %d outside [0, %d]", p.Index, current, spec.MaxNumber)
	}
	for i, op := range p.Operators {
		b := p.Operands[i+1]
		if b < 0 {
			t.Fatalf("problem %d: negative operand %d", p.Index, b)
		}
		switch op {
		case OpAdd:
			current += b
		case OpSub:
			current -= b
		case OpMul:
			current *= b
		case OpDiv:
			if b == 0 {
				t.Fatalf("problem %d %q: division by zero", p.Index, p.Text)
			}
			if current%b != 0 {
				t.Fatalf("problem %d %q: %d ÷ %d leaves a remainder", p.Index, p.Text, current, b)
			}
			current /= b
		}
		if current < 0 || current > limit {
			t.Fatalf("problem %d %q: intermediate %d outside [0, %d]", p.Index, p.Text, current, limit)
		}
	}
	if current != p.Result {
		t.Fatalf("problem %d %q: result %d, recomputed %d", p.Index, p.Text, p.Result, current)
	}
}

func allSpecs() []BatchSpec {
	var specs []BatchSpec
	for _, kind := range []ProblemKind{KindCompute, KindFindMissing} {
		for _, cat := range []OperatorCategory{CategoryAddSub, CategoryMulDiv, CategoryAll} {
			for _, mode := range []CompositionMode{ModeMixed, ModeSequential} {
				for _, n := range []int{2, 3, 5} {
					for _, maxN := range []int{1, 12, 100} {
						specs = append(specs, BatchSpec{
							Kind:        kind,
							MaxNumber:   maxN,
							NumOperands: n,
							Category:    cat,
							NumProblems: 40,
							Mode:        mode,
						})
					}
				}
			}
		}
	}
	return specs
}

func TestGenerate_ValidityAndSize(t *testing.T) {
	for i, spec := range allSpecs() {
		problems := generate(t, uint64(i), spec)
		if len(problems) != spec.NumProblems {
			t.Fatalf("%+v: got %d problems, want %d", spec, len(problems), spec.NumProblems)
		}
		set := map[Operator]bool{}
		for _, op := range spec.Operators() {
			set[op] = true
		}
		for idx, p := range problems {
			if p.Index != idx {
				t.Fatalf("problem at %d has index %d", idx, p.Index)
			}
			for _, op := range p.Operators {
				if !set[op] {
					t.Fatalf("%+v: operator %s not in category", spec, op)
				}
			}
			checkChain(t, spec, p)
		}
	}
}

func TestGenerate_Recoverability(t *testing.T) {
	for i, spec := range allSpecs() {
		if spec.Kind != KindFindMissing {
			continue
		}
		for _, p := range generate(t, uint64(i)+1000, spec) {
			if strings.Count(p.Text, Placeholder) != 1 {
				t.Fatalf("%q: want exactly one placeholder", p.Text)
			}
			got, err := Solve(p)
			if err != nil {
				t.Fatalf("%q: solve: %v", p.Text, err)
			}
			if got != p.Operands[p.Missing] {
				t.Fatalf("%q: solved %d, hidden value was %d", p.Text, got, p.Operands[p.Missing])
			}

			// Substituting the recovered value reproduces the shown result.
			operands := append([]int(nil), p.Operands...)
			operands[p.Missing] = got
			res, err := Evaluate(operands, p.Operators)
			if err != nil || res != p.Result {
				t.Fatalf("%q: substituted chain = %d (%v), want %d", p.Text, res, err, p.Result)
			}
		}
	}
}

func TestGenerate_SequentialQuota(t *testing.T) {
	for _, cat := range []OperatorCategory{CategoryAddSub, CategoryMulDiv, CategoryAll} {
		for _, n := range []int{3, 4, 6} {
			for _, count := range []int{1, 9, 10, 37, 100} {
				spec := BatchSpec{
					Kind:        KindCompute,
					MaxNumber:   30,
					NumOperands: n,
					Category:    cat,
					NumProblems: count,
					Mode:        ModeMixed,
				}
				problems, stats, err := NewSeeded(uint64(n*count), DefaultConfig()).GenerateWithStats(context.Background(), spec)
				if err != nil {
					t.Fatalf("generate: %v", err)
				}
				seq := 0
				for _, p := range problems {
					if isSequential(p.Operators) {
						seq++
					}
				}
				if seq > count/10 {
					t.Errorf("%s n=%d count=%d: %d sequential problems, max %d", cat, n, count, seq, count/10)
				}
				if stats.Sequential != seq {
					t.Errorf("stats.Sequential = %d, counted %d", stats.Sequential, seq)
				}
			}
		}
	}
}

func TestGenerate_SequentialModeRepeatsOperator(t *testing.T) {
	spec := BatchSpec{
		Kind:        KindCompute,
		MaxNumber:   50,
		NumOperands: 4,
		Category:    CategoryAll,
		NumProblems: 30,
		Mode:        ModeSequential,
	}
	for _, p := range generate(t, 7, spec) {
		if !isSequential(p.Operators) {
			t.Fatalf("%q: sequential mode produced mixed operators", p.Text)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	spec := BatchSpec{
		Kind:        KindFindMissing,
		MaxNumber:   40,
		NumOperands: 4,
		Category:    CategoryAll,
		NumProblems: 60,
		Mode:        ModeMixed,
	}
	a := generate(t, 42, spec)
	b := generate(t, 42, spec)
	for i := range a {
		if a[i].Text != b[i].Text {
			t.Fatalf("problem %d differs: %q vs %q", i, a[i].Text, b[i].Text)
		}
	}

	c := generate(t, 43, spec)
	same := true
	for i := range a {
		if a[i].Text != c[i].Text {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical batches")
	}
}

var computeRe = regexp.MustCompile(`^(\d+) ([+-]) (\d+) = $`)

func TestScenario_AddSubSingle(t *testing.T) {
	spec := BatchSpec{Kind: KindCompute, MaxNumber: 20, NumOperands: 2, Category: CategoryAddSub, NumProblems: 1, Mode: ModeMixed}
	for seed := range uint64(50) {
		problems := generate(t, seed, spec)
		if len(problems) != 1 {
			t.Fatalf("got %d problems", len(problems))
		}
		m := computeRe.FindStringSubmatch(problems[0].Text)
		if m == nil {
			t.Fatalf("%q does not match %s", problems[0].Text, computeRe)
		}
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[3])
		if a < 0 || a > 20 {
			t.Fatalf("first operand %d outside [0, 20]", a)
		}
		if m[2] == "-" && b > a {
			t.Fatalf("%q goes negative", problems[0].Text)
		}
		if m[2] == "+" && a+b > spec.CalculationLimit() {
			t.Fatalf("%q exceeds the calculation limit", problems[0].Text)
		}
	}
}

func TestScenario_MulDivExact(t *testing.T) {
	spec := BatchSpec{Kind: KindCompute, MaxNumber: 12, NumOperands: 2, Category: CategoryMulDiv, NumProblems: 10, Mode: ModeMixed}
	for seed := range uint64(20) {
		for _, p := range generate(t, seed, spec) {
			if p.Operators[0] == OpDiv && p.Operands[0]%p.Operands[1] != 0 {
				t.Fatalf("%q: divisor does not divide dividend", p.Text)
			}
			checkChain(t, spec, p)
		}
	}
}

var findMissingRe = regexp.MustCompile(`^(\S+) ([+-]) (\S+) ([+-]) (\S+) = (\d+)$`)

func TestScenario_FindMissingThreeOperands(t *testing.T) {
	spec := BatchSpec{Kind: KindFindMissing, MaxNumber: 50, NumOperands: 3, Category: CategoryAddSub, NumProblems: 5, Mode: ModeMixed}
	for _, p := range generate(t, 3, spec) {
		m := findMissingRe.FindStringSubmatch(p.Text)
		if m == nil {
			t.Fatalf("%q does not match %s", p.Text, findMissingRe)
		}
		holes := 0
		for _, slot := range []string{m[1], m[3], m[5]} {
			if slot == Placeholder {
				holes++
			}
		}
		if holes != 1 {
			t.Fatalf("%q: %d placeholders", p.Text, holes)
		}
		shown, _ := strconv.Atoi(m[6])
		res, err := Evaluate(p.Operands, p.Operators)
		if err != nil || res != shown {
			t.Fatalf("%q: shown %d, chain evaluates to %d (%v)", p.Text, shown, res, err)
		}
	}
}

func TestScenario_QuotaHundred(t *testing.T) {
	spec := BatchSpec{Kind: KindCompute, MaxNumber: 30, NumOperands: 4, Category: CategoryAddSub, NumProblems: 100, Mode: ModeMixed}
	for seed := range uint64(10) {
		seq := 0
		for _, p := range generate(t, seed, spec) {
			if isSequential(p.Operators) {
				seq++
			}
		}
		if seq > 10 {
			t.Fatalf("seed %d: %d sequential problems", seed, seq)
		}
	}
}

func TestGenerate_ConfigError(t *testing.T) {
	spec := DefaultSpec()
	spec.NumOperands = 1
	_, err := NewSeeded(1, DefaultConfig()).Generate(context.Background(), spec)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
	}
	if cfgErr.Field != "num_operands" {
		t.Errorf("field = %q, want num_operands", cfgErr.Field)
	}
}

// scriptedRand always picks × out of four operators and the top of every
// other range, which makes a second × overshoot the limit.
type scriptedRand struct{ calls int }

func (r *scriptedRand) IntN(n int) int {
	r.calls++
	if n == 4 {
		return 2
	}
	return n - 1
}

func TestGenerate_Exhausted(t *testing.T) {
	spec := BatchSpec{Kind: KindCompute, MaxNumber: 5, NumOperands: 3, Category: CategoryAll, NumProblems: 2, Mode: ModeSequential}
	rng := &scriptedRand{}
	_, stats, err := New(rng, Config{MaxAttempts: 3}).GenerateWithStats(context.Background(), spec)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("expected *ExhaustedError, got %T", err)
	}
	if ex.Index != 0 || ex.Attempts != 3 {
		t.Errorf("got index %d attempts %d, want 0 and 3", ex.Index, ex.Attempts)
	}
	var ce *ConstraintError
	if !errors.As(err, &ce) {
		t.Errorf("expected wrapped *ConstraintError, got %v", ex.Last)
	}
	if stats.Attempts != 3 {
		t.Errorf("stats.Attempts = %d, want 3", stats.Attempts)
	}
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSeeded(1, DefaultConfig()).Generate(ctx, DefaultSpec())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// cancelingRand cancels its context after n draws.
type cancelingRand struct {
	rng    Rand
	n      int
	cancel context.CancelFunc
}

func (r *cancelingRand) IntN(n int) int {
	r.n--
	if r.n == 0 {
		r.cancel()
	}
	return r.rng.IntN(n)
}

func TestGenerate_CanceledMidBatchStats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Two-operand add/subtract problems never retry and take three draws
	// each: the operator, the first operand and the second operand.
	rng := &cancelingRand{rng: rand.New(rand.NewPCG(3, 4)), n: 30, cancel: cancel}
	_, stats, err := New(rng, DefaultConfig()).GenerateWithStats(ctx, DefaultSpec())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stats.Problems != 10 || stats.Attempts != 10 {
		t.Errorf("stats = %+v, want 10 problems in 10 attempts", stats)
	}
	if stats.Retries() != 0 {
		t.Errorf("Retries() = %d, want 0", stats.Retries())
	}
}

func TestStats_Retries(t *testing.T) {
	spec := BatchSpec{Kind: KindCompute, MaxNumber: 9, NumOperands: 5, Category: CategoryMulDiv, NumProblems: 50, Mode: ModeMixed}
	problems, stats, err := NewSeeded(11, DefaultConfig()).GenerateWithStats(context.Background(), spec)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stats.Problems != len(problems) {
		t.Errorf("stats.Problems = %d, want %d", stats.Problems, len(problems))
	}
	if stats.Attempts < stats.Problems || stats.Retries() != stats.Attempts-stats.Problems {
		t.Errorf("inconsistent stats %+v", stats)
	}
}
