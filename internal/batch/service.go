// Package batch runs worksheet generation requests and records them in the
// event log.
package batch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/google/uuid"

	"github.com/abhisek/mathsheet/internal/store"
	"github.com/abhisek/mathsheet/internal/worksheet"
)

// Request describes one generation call.
type Request struct {
	Spec   worksheet.BatchSpec
	Preset string // name of the preset Spec came from, if any
	Source string // "cli" or "http"

	// Seed fixes the random source. Nil draws a fresh seed.
	Seed *uint64
}

// Batch is a generated worksheet batch.
type Batch struct {
	ID       string
	Seed     uint64
	Spec     worksheet.BatchSpec
	Problems []worksheet.Problem
	Stats    worksheet.Stats
}

// Observer is notified after every generation attempt. Metrics hook in here.
type Observer interface {
	ObserveBatch(spec worksheet.BatchSpec, stats worksheet.Stats, err error)
}

// Service generates batches and logs each request.
type Service struct {
	cfg       worksheet.Config
	eventRepo store.EventRepo
	observer  Observer
}

// NewService creates a Service. eventRepo and observer may be nil.
func NewService(cfg worksheet.Config, eventRepo store.EventRepo, observer Observer) *Service {
	return &Service{cfg: cfg, eventRepo: eventRepo, observer: observer}
}

// Generate runs one request. Configuration errors are returned before any
// event is written; generation failures are logged and returned.
func (s *Service) Generate(ctx context.Context, req Request) (*Batch, error) {
	if err := req.Spec.Validate(); err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	b := &Batch{
		ID:   uuid.NewString(),
		Seed: seed,
		Spec: req.Spec,
	}

	gen := worksheet.NewSeeded(seed, s.cfg)
	problems, stats, err := gen.GenerateWithStats(ctx, req.Spec)
	b.Problems = problems
	b.Stats = stats

	if s.observer != nil {
		s.observer.ObserveBatch(req.Spec, stats, err)
	}
	s.record(ctx, req, b, err)

	if err != nil {
		return nil, fmt.Errorf("generate batch %s: %w", b.ID, err)
	}
	return b, nil
}

// record appends the batch event. Logging failures never fail the request.
func (s *Service) record(ctx context.Context, req Request, b *Batch, genErr error) {
	if s.eventRepo == nil {
		return
	}
	data := store.BatchEventData{
		BatchID:  b.ID,
		Source:   req.Source,
		Preset:   req.Preset,
		Spec:     req.Spec.Params(),
		Seed:     b.Seed,
		Problems: len(b.Problems),
		Attempts: b.Stats.Attempts,
		Success:  genErr == nil,
	}
	if genErr != nil {
		data.ErrorMessage = genErr.Error()
	}
	if err := s.eventRepo.AppendBatchEvent(context.WithoutCancel(ctx), data); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log batch event: %v\n", err)
	}
}
