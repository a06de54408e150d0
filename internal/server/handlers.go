package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/mathsheet/internal/batch"
	"github.com/abhisek/mathsheet/internal/sheet"
	"github.com/abhisek/mathsheet/internal/store"
	"github.com/abhisek/mathsheet/internal/worksheet"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// WorksheetRequest is the body of POST /api/worksheets.
type WorksheetRequest struct {
	worksheet.Params
	Seed    *uint64 `json:"seed,omitempty"`
	Preset  string  `json:"preset,omitempty"`
	Columns int     `json:"columns,omitempty"`
}

// ProblemResponse is one problem as sent to clients. Operand values are
// left out so find-missing problems don't leak the hidden number.
type ProblemResponse struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// WorksheetResponse is a generated batch.
type WorksheetResponse struct {
	ID       string            `json:"id"`
	Seed     uint64            `json:"seed"`
	Title    string            `json:"title"`
	Spec     worksheet.Params  `json:"spec"`
	Problems []ProblemResponse `json:"problems"`
}

// PresetResponse is a saved preset.
type PresetResponse struct {
	Name      string           `json:"name"`
	Spec      worksheet.Params `json:"spec"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// BatchEventResponse is one history entry.
type BatchEventResponse struct {
	Sequence     int64            `json:"sequence"`
	Timestamp    time.Time        `json:"timestamp"`
	BatchID      string           `json:"batch_id"`
	Source       string           `json:"source"`
	Preset       string           `json:"preset,omitempty"`
	Spec         worksheet.Params `json:"spec"`
	Seed         uint64           `json:"seed"`
	Problems     int              `json:"problems"`
	Attempts     int              `json:"attempts"`
	Success      bool             `json:"success"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// badRequest is a client error that is not a *worksheet.ConfigError.
type badRequest struct{ err error }

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// getWorksheet generates a batch from query parameters, e.g.
// ?problem_type=find_missing_number&max_number=50&operators=all.
func (s *Server) getWorksheet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := WorksheetRequest{
		Params: worksheet.Params{
			ProblemType: q.Get("problem_type"),
			Operators:   q.Get("operators"),
			OpMode:      q.Get("op_mode"),
		},
		Preset: q.Get("preset"),
	}

	var err error
	ints := []struct {
		name string
		dst  *int
	}{
		{"max_number", &req.MaxNumber},
		{"num_operands", &req.NumOperands},
		{"num_problems", &req.NumProblems},
		{"columns", &req.Columns},
	}
	for _, p := range ints {
		if *p.dst, err = intParam(q, p.name); err != nil {
			writeError(w, err)
			return
		}
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, &worksheet.ConfigError{Field: "seed", Message: fmt.Sprintf("not an unsigned integer: %q", v)})
			return
		}
		req.Seed = &seed
	}

	s.serveWorksheet(w, r, req, q.Get("format"))
}

// postWorksheet generates a batch from a JSON body.
func (s *Server) postWorksheet(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateBody("worksheet-request", worksheetRequestSchema(), raw); err != nil {
		writeError(w, &badRequest{err})
		return
	}
	var req WorksheetRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, &badRequest{err})
		return
	}
	s.serveWorksheet(w, r, req, r.URL.Query().Get("format"))
}

func (s *Server) serveWorksheet(w http.ResponseWriter, r *http.Request, req WorksheetRequest, format string) {
	spec, err := s.resolveSpec(r.Context(), req.Params, req.Preset)
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := s.batches.Generate(r.Context(), batch.Request{
		Spec:   spec,
		Preset: req.Preset,
		Source: "http",
		Seed:   req.Seed,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("X-Batch-ID", b.ID)
	w.Header().Set("X-Batch-Seed", strconv.FormatUint(b.Seed, 10))

	if format == "text" {
		opts := sheet.DefaultOptions()
		if req.Columns > 0 {
			opts.Columns = req.Columns
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = sheet.Write(w, b.Spec, b.Problems, opts)
		return
	}

	resp := WorksheetResponse{
		ID:       b.ID,
		Seed:     b.Seed,
		Title:    sheet.Title(b.Spec),
		Spec:     b.Spec.Params(),
		Problems: make([]ProblemResponse, len(b.Problems)),
	}
	for i, p := range b.Problems {
		resp.Problems[i] = ProblemResponse{Index: p.Index, Text: p.Text}
	}
	writeJSON(w, http.StatusOK, resp)
}

// resolveSpec fills p from the named preset, or from the configured
// defaults when no preset is given.
func (s *Server) resolveSpec(ctx context.Context, p worksheet.Params, preset string) (worksheet.BatchSpec, error) {
	base := s.cfg.Defaults.WithDefaults(worksheet.DefaultSpec().Params())
	if preset != "" {
		saved, err := s.presets.Get(ctx, preset)
		if err != nil {
			return worksheet.BatchSpec{}, err
		}
		base = saved.Spec.Params()
	}
	return p.WithDefaults(base).Spec()
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.presets.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]PresetResponse, len(presets))
	for i, p := range presets {
		resp[i] = presetResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.presets.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presetResponse(*p))
}

// putPreset creates or replaces a preset. Omitted fields take the
// configured defaults.
func (s *Server) putPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	raw, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateBody("preset", presetSchema(), raw); err != nil {
		writeError(w, &badRequest{err})
		return
	}
	var params worksheet.Params
	if err := json.Unmarshal(raw, &params); err != nil {
		writeError(w, &badRequest{err})
		return
	}

	spec, err := s.resolveSpec(r.Context(), params, "")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.presets.Save(r.Context(), store.Preset{Name: name, Spec: spec}); err != nil {
		writeError(w, err)
		return
	}
	saved, err := s.presets.Get(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presetResponse(*saved))
}

func (s *Server) deletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.presets.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	if limit == 0 {
		limit = 50
	}
	after, err := intParam(q, "after")
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := s.events.RecentBatches(r.Context(), store.QueryOpts{
		Limit:      limit,
		After:      int64(after),
		Preset:     q.Get("preset"),
		FailedOnly: q.Get("failed") == "true",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]BatchEventResponse, len(events))
	for i, e := range events {
		resp[i] = BatchEventResponse{
			Sequence:     e.Sequence,
			Timestamp:    e.Timestamp,
			BatchID:      e.BatchID,
			Source:       e.Source,
			Preset:       e.Preset,
			Spec:         e.Spec,
			Seed:         e.Seed,
			Problems:     e.Problems,
			Attempts:     e.Attempts,
			Success:      e.Success,
			ErrorMessage: e.ErrorMessage,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func presetResponse(p store.Preset) PresetResponse {
	return PresetResponse{
		Name:      p.Name,
		Spec:      p.Spec.Params(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// intParam parses an optional integer query parameter. Missing means 0.
func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &worksheet.ConfigError{Field: name, Message: fmt.Sprintf("not an integer: %q", v)}
	}
	return n, nil
}

func readBody(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &badRequest{fmt.Errorf("read body: %w", err)}
	}
	if len(raw) > maxBodyBytes {
		return nil, &badRequest{fmt.Errorf("body exceeds %d bytes", maxBodyBytes)}
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		cfgErr *worksheet.ConfigError
		badReq *badRequest
	)
	switch {
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: cfgErr.Error(), Field: cfgErr.Field})
	case errors.As(err, &badReq):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: badReq.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
