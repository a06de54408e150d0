// Package server exposes worksheet generation and presets over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/mathsheet/internal/batch"
	"github.com/abhisek/mathsheet/internal/config"
	"github.com/abhisek/mathsheet/internal/store"
)

// Server is the HTTP API.
type Server struct {
	cfg     config.Config
	batches *batch.Service
	presets store.PresetRepo
	events  store.EventRepo
	metrics *Metrics
	started time.Time
}

// New creates a Server. metrics may be nil, in which case /metrics is not
// served.
func New(cfg config.Config, batches *batch.Service, presets store.PresetRepo, events store.EventRepo, metrics *Metrics) *Server {
	return &Server{
		cfg:     cfg,
		batches: batches,
		presets: presets,
		events:  events,
		metrics: metrics,
		started: time.Now(),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors(s.cfg.Server.AllowedOrigins))

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/worksheets", s.getWorksheet)
		r.Post("/worksheets", s.postWorksheet)

		r.Get("/presets", s.listPresets)
		r.Get("/presets/{name}", s.getPreset)
		r.Put("/presets/{name}", s.putPreset)
		r.Delete("/presets/{name}", s.deletePreset)

		r.Get("/history", s.history)
	})
	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INIT] listening on %s", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("[SHUTDOWN] initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("[SHUTDOWN] server stopped")
	return nil
}

// cors allows browser calls from the listed origins. A "*" entry allows
// every origin.
func cors(origins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (slices.Contains(origins, origin) || slices.Contains(origins, "*")) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				h.Add("Vary", "Origin")
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
