// Package api exposes the analysis and journal endpoints over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"SignalPilot/internal/collector"
	"SignalPilot/internal/engine"
	"SignalPilot/internal/journal"
	"SignalPilot/internal/levels"
	"SignalPilot/internal/model"
)

// Notifier pushes a signal alert to an out-of-band channel. Implementations
// must not block the request path.
type Notifier interface {
	SignalAlert(symbol string, res *model.SignalResult, lv model.TradeLevels)
}

// Server wires the core components behind the HTTP surface.
type Server struct {
	engine    *engine.Engine
	collector *collector.Collector
	journal   *journal.Journal
	levels    *levels.Calculator
	benchmark string
	notifier  Notifier

	http *http.Server
}

// New builds the server. notifier may be nil.
func New(addr string, eng *engine.Engine, col *collector.Collector, j *journal.Journal, lc *levels.Calculator, benchmark string, notifier Notifier) *Server {
	s := &Server{
		engine:    eng,
		collector: col,
		journal:   j,
		levels:    lc,
		benchmark: benchmark,
		notifier:  notifier,
	}

	r := mux.NewRouter()
	r.Use(requestLogger)
	r.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/journal/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/journal/trades", s.handleTrades).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().Str("method", r.Method).Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
