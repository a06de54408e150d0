package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/abhisek/mathsheet/internal/store"
	"github.com/abhisek/mathsheet/internal/worksheet"
)

// memEventRepo is an in-memory EventRepo for tests.
type memEventRepo struct {
	mu     sync.Mutex
	events []store.BatchEventData
	err    error
}

func (r *memEventRepo) AppendBatchEvent(_ context.Context, data store.BatchEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, data)
	return nil
}

func (r *memEventRepo) RecentBatches(context.Context, store.QueryOpts) ([]store.BatchEvent, error) {
	return nil, nil
}

type countingObserver struct {
	calls  int
	failed int
}

func (o *countingObserver) ObserveBatch(_ worksheet.BatchSpec, _ worksheet.Stats, err error) {
	o.calls++
	if err != nil {
		o.failed++
	}
}

func TestGenerate_RecordsEvent(t *testing.T) {
	repo := &memEventRepo{}
	obs := &countingObserver{}
	svc := NewService(worksheet.DefaultConfig(), repo, obs)

	seed := uint64(99)
	b, err := svc.Generate(context.Background(), Request{
		Spec:   worksheet.DefaultSpec(),
		Preset: "daily",
		Source: "cli",
		Seed:   &seed,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(b.Problems) != worksheet.DefaultSpec().NumProblems {
		t.Errorf("got %d problems", len(b.Problems))
	}
	if b.Seed != 99 || b.ID == "" {
		t.Errorf("batch = id %q seed %d", b.ID, b.Seed)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.BatchID != b.ID || ev.Preset != "daily" || ev.Source != "cli" || !ev.Success {
		t.Errorf("event = %+v", ev)
	}
	if ev.Seed != 99 || ev.Problems != len(b.Problems) || ev.Attempts != b.Stats.Attempts {
		t.Errorf("event counters = %+v", ev)
	}
	if obs.calls != 1 || obs.failed != 0 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestGenerate_SameSeedSameBatch(t *testing.T) {
	svc := NewService(worksheet.DefaultConfig(), nil, nil)
	seed := uint64(7)
	spec := worksheet.BatchSpec{
		Kind:        worksheet.KindFindMissing,
		MaxNumber:   25,
		NumOperands: 3,
		Category:    worksheet.CategoryAll,
		NumProblems: 20,
		Mode:        worksheet.ModeMixed,
	}

	a, err := svc.Generate(context.Background(), Request{Spec: spec, Seed: &seed})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := svc.Generate(context.Background(), Request{Spec: spec, Seed: &seed})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a.ID == b.ID {
		t.Error("expected distinct batch IDs")
	}
	for i := range a.Problems {
		if a.Problems[i].Text != b.Problems[i].Text {
			t.Fatalf("problem %d differs: %q vs %q", i, a.Problems[i].Text, b.Problems[i].Text)
		}
	}
}

func TestGenerate_ConfigErrorNotLogged(t *testing.T) {
	repo := &memEventRepo{}
	svc := NewService(worksheet.DefaultConfig(), repo, nil)

	spec := worksheet.DefaultSpec()
	spec.MaxNumber = 0
	_, err := svc.Generate(context.Background(), Request{Spec: spec})
	var cfgErr *worksheet.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *worksheet.ConfigError, got %v", err)
	}
	if len(repo.events) != 0 {
		t.Errorf("expected no events, got %d", len(repo.events))
	}
}

func TestGenerate_CanceledIsLogged(t *testing.T) {
	repo := &memEventRepo{}
	obs := &countingObserver{}
	svc := NewService(worksheet.DefaultConfig(), repo, obs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Generate(ctx, Request{Spec: worksheet.DefaultSpec(), Source: "http"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Errorf("expected one failed event, got %+v", repo.events)
	}
	if obs.failed != 1 {
		t.Errorf("observer failed = %d, want 1", obs.failed)
	}
}

func TestGenerate_LoggingFailureIgnored(t *testing.T) {
	repo := &memEventRepo{err: errors.New("disk full")}
	svc := NewService(worksheet.DefaultConfig(), repo, nil)

	if _, err := svc.Generate(context.Background(), Request{Spec: worksheet.DefaultSpec()}); err != nil {
		t.Fatalf("logging failure should not fail generation: %v", err)
	}
}
