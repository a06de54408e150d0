package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/mathsheet/internal/worksheet"
)

var presetColumns = []string{
	"name", "problem_type", "max_number", "num_operands", "operators",
	"num_problems", "op_mode", "created_at", "updated_at",
}

// presetRepo implements PresetRepo on the presets table.
type presetRepo struct {
	db *sql.DB
}

func (r *presetRepo) Save(ctx context.Context, p Preset) error {
	if p.Name == "" {
		return errors.New("preset name is empty")
	}
	if err := p.Spec.Validate(); err != nil {
		return err
	}

	params := p.Spec.Params()
	now := time.Now().UTC().UnixMilli()
	query, args := builder().Insert("presets").
		Columns(presetColumns...).
		Values(
			p.Name,
			params.ProblemType,
			params.MaxNumber,
			params.NumOperands,
			params.Operators,
			params.NumProblems,
			params.OpMode,
			now,
			now,
		).
		OnConflict(
			entsql.ConflictColumns("name"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				// created_at is left as first written.
				for _, c := range presetColumns[1:] {
					if c != "created_at" {
						u.SetExcluded(c)
					}
				}
			}),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save preset %q: %w", p.Name, err)
	}
	return nil
}

func (r *presetRepo) Get(ctx context.Context, name string) (*Preset, error) {
	query, args := builder().Select(presetColumns...).
		From(entsql.Table("presets")).
		Where(entsql.EQ("name", name)).
		Query()

	p, err := scanPreset(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query preset %q: %w", name, err)
	}
	return p, nil
}

func (r *presetRepo) List(ctx context.Context) ([]Preset, error) {
	query, args := builder().Select(presetColumns...).
		From(entsql.Table("presets")).
		OrderBy("name").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query presets: %w", err)
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presets: %w", err)
	}
	return presets, nil
}

func (r *presetRepo) Delete(ctx context.Context, name string) error {
	query, args := builder().Delete("presets").
		Where(entsql.EQ("name", name)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPreset reads one row selected with presetColumns.
func scanPreset(row rowScanner) (*Preset, error) {
	var (
		p                Preset
		params           worksheet.Params
		created, updated int64
	)
	err := row.Scan(
		&p.Name, &params.ProblemType, &params.MaxNumber, &params.NumOperands,
		&params.Operators, &params.NumProblems, &params.OpMode, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	spec, err := params.Spec()
	if err != nil {
		return nil, fmt.Errorf("preset %q holds an invalid spec: %w", p.Name, err)
	}
	p.Spec = spec
	p.CreatedAt = time.UnixMilli(created).UTC()
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return &p, nil
}
