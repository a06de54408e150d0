package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/mathsheet/internal/worksheet"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit      int       // max results (0 = unlimited)
	After      int64     // sequence > After
	Preset     string    // only events generated from this preset
	From       time.Time // timestamp >= From
	FailedOnly bool      // only events with success = false
}

// Preset is a named, saved BatchSpec.
type Preset struct {
	Name      string
	Spec      worksheet.BatchSpec
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PresetRepo manages saved worksheet presets.
type PresetRepo interface {
	// Save creates the preset or replaces the spec of an existing one.
	Save(ctx context.Context, p Preset) error

	// Get returns the preset with the given name, or ErrNotFound.
	Get(ctx context.Context, name string) (*Preset, error)

	// List returns all presets ordered by name.
	List(ctx context.Context) ([]Preset, error)

	// Delete removes the preset, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
}

// BatchEventData describes one generation request. The generated problems
// themselves are never stored; Seed and Spec are enough to regenerate them.
type BatchEventData struct {
	BatchID      string
	Source       string // "cli" or "http"
	Preset       string // preset name, empty if none
	Spec         worksheet.Params
	Seed         uint64
	Problems     int
	Attempts     int
	Success      bool
	ErrorMessage string
}

// BatchEvent is a stored BatchEventData with its ordering metadata.
type BatchEvent struct {
	Sequence  int64
	Timestamp time.Time
	BatchEventData
}

// EventRepo provides append and query access to generation events.
type EventRepo interface {
	// AppendBatchEvent records a generation request.
	AppendBatchEvent(ctx context.Context, data BatchEventData) error

	// RecentBatches returns events newest first.
	RecentBatches(ctx context.Context, opts QueryOpts) ([]BatchEvent, error)
}
