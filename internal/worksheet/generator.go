package worksheet

import (
	"context"
	"errors"
	"math/rand/v2"
)

// Config controls the behavior of the Generator.
type Config struct {
	// MaxAttempts is the number of times a single problem is redrafted
	// before the batch fails with an *ExhaustedError.
	MaxAttempts int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{MaxAttempts: 500}
}

// Stats summarizes one Generate call.
type Stats struct {
	Problems   int // problems produced
	Attempts   int // drafts made, including retried ones
	Sequential int // accepted problems whose operators are all the same
}

// Retries is the number of discarded drafts.
func (s Stats) Retries() int {
	return s.Attempts - s.Problems
}

// Generator produces worksheet batches. It is not safe for concurrent use
// because it owns its random source.
type Generator struct {
	rng Rand
	cfg Config
}

// New creates a Generator drawing from rng.
func New(rng Rand, cfg Config) *Generator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	return &Generator{rng: rng, cfg: cfg}
}

// NewSeeded creates a Generator with a PCG source seeded from seed. Two
// generators with the same seed produce the same batches.
func NewSeeded(seed uint64, cfg Config) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), cfg)
}

// Generate returns exactly spec.NumProblems problems in index order.
func (g *Generator) Generate(ctx context.Context, spec BatchSpec) ([]Problem, error) {
	problems, _, err := g.GenerateWithStats(ctx, spec)
	return problems, err
}

// GenerateWithStats is Generate that also reports attempt counts.
func (g *Generator) GenerateWithStats(ctx context.Context, spec BatchSpec) ([]Problem, Stats, error) {
	var stats Stats
	if err := spec.Validate(); err != nil {
		return nil, stats, err
	}

	state := newBatchState(spec)
	problems := make([]Problem, 0, spec.NumProblems)

	for idx := range spec.NumProblems {
		p, attempts, err := g.draft(ctx, spec, state)
		stats.Attempts += attempts
		if err != nil {
			var ex *ExhaustedError
			if errors.As(err, &ex) {
				ex.Index = idx
			}
			stats.Problems = len(problems)
			return nil, stats, err
		}
		p.Index = idx
		if isSequential(p.Operators) {
			stats.Sequential++
		}
		problems = append(problems, p)
	}

	stats.Problems = len(problems)
	return problems, stats, nil
}

// draft produces one problem, retrying the whole problem on a constraint
// failure.
func (g *Generator) draft(ctx context.Context, spec BatchSpec, state *batchState) (Problem, int, error) {
	var last error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Problem{}, attempt - 1, err
		}

		ops, reserved := nextOperators(spec, state, g.rng)
		operands, err := synthesize(spec, ops, g.rng)
		if err != nil {
			if reserved {
				state.release()
			}
			last = err
			continue
		}
		p, err := format(spec.Kind, operands, ops, g.rng)
		if err != nil {
			if reserved {
				state.release()
			}
			last = err
			continue
		}
		return p, attempt, nil
	}
	return Problem{}, g.cfg.MaxAttempts, &ExhaustedError{Attempts: g.cfg.MaxAttempts, Last: last}
}
