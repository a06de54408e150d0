package worksheet

import (
	"errors"
	"fmt"
)

// ErrExhausted is matched by errors.Is for any *ExhaustedError.
var ErrExhausted = errors.New("problem generation exhausted")

// ConfigError reports an invalid BatchSpec. No generation was attempted.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ConstraintError reports an operand draw that would break a bound or an
// exact division. The orchestrator retries the whole problem.
type ConstraintError struct {
	Position int // operand position being derived
	Operator Operator
	Message  string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("operand %d (%s): %s", e.Position, e.Operator, e.Message)
}

// ExhaustedError is returned when a single problem could not be produced
// within the configured number of attempts.
type ExhaustedError struct {
	Index    int   // problem index within the batch
	Attempts int   // attempts made for that index
	Last     error // last constraint failure
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("problem %d: no valid problem after %d attempts: %v", e.Index, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }
