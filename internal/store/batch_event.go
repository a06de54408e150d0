package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var batchEventColumns = []string{
	"sequence", "timestamp", "batch_id", "source", "preset", "spec",
	"seed", "problems", "attempts", "success", "error_message",
}

// eventRepo implements EventRepo on the batch_events table.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendBatchEvent(ctx context.Context, data BatchEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	spec, err := json.Marshal(data.Spec)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}

	query, args := builder().Insert("batch_events").
		Columns(batchEventColumns...).
		Values(
			seqNum,
			time.Now().UTC().UnixMilli(),
			data.BatchID,
			data.Source,
			data.Preset,
			string(spec),
			int64(data.Seed),
			data.Problems,
			data.Attempts,
			data.Success,
			data.ErrorMessage,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save batch event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentBatches(ctx context.Context, opts QueryOpts) ([]BatchEvent, error) {
	sel := builder().Select(batchEventColumns...).
		From(entsql.Table("batch_events")).
		OrderBy(entsql.Desc("sequence"))
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Preset != "" {
		sel.Where(entsql.EQ("preset", opts.Preset))
	}
	if opts.FailedOnly {
		sel.Where(entsql.EQ("success", false))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC().UnixMilli()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query batch events: %w", err)
	}
	defer rows.Close()

	var events []BatchEvent
	for rows.Next() {
		var (
			e    BatchEvent
			ts   int64
			seed int64
			spec string
		)
		err := rows.Scan(
			&e.Sequence, &ts, &e.BatchID, &e.Source, &e.Preset, &spec,
			&seed, &e.Problems, &e.Attempts, &e.Success, &e.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan batch event: %w", err)
		}
		if err := json.Unmarshal([]byte(spec), &e.Spec); err != nil {
			return nil, fmt.Errorf("unmarshal spec of event %d: %w", e.Sequence, err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		e.Seed = uint64(seed)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch events: %w", err)
	}
	return events, nil
}
