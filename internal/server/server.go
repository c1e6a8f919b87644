// Package server exposes the scrape's running counters over HTTP while a
// long harvest is in flight.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/stilmark/fashion-scraper/internal/scraper"
)

// StatusServer serves /healthz and /stats.
type StatusServer struct {
	stats *scraper.Stats
	log   zerolog.Logger
}

func NewStatusServer(stats *scraper.Stats, log zerolog.Logger) *StatusServer {
	return &StatusServer{stats: stats, log: log}
}

func (s *StatusServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.stats.Snapshot()); err != nil {
			s.log.Error().Err(err).Msg("failed to encode stats")
		}
	})

	return r
}

// Start runs the server in the background. Listen errors are logged, not
// fatal: the status endpoint is a convenience, not part of the pipeline.
func (s *StatusServer) Start(addr string) {
	go func() {
		s.log.Info().Str("addr", addr).Msg("status server listening")
		if err := http.ListenAndServe(addr, s.Router()); err != nil {
			s.log.Error().Err(err).Msg("status server stopped")
		}
	}()
}
