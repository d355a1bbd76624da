// Package server exposes simulated combats over HTTP and WebSocket.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"

	"github.com/pefman/squad-combat/internal/stats"
	"github.com/pefman/squad-combat/internal/telemetry"
)

// Config tunes request handling.
type Config struct {
	// MaxRounds caps every run; requests may only ask for fewer.
	MaxRounds int
	// StreamDelay pauses between streamed WebSocket events.
	StreamDelay time.Duration
	// Logger defaults to log.Default().
	Logger *log.Logger
	// Tracer defaults to the global combat tracer.
	Tracer trace.Tracer
}

// Server holds process-wide state shared by handlers.
type Server struct {
	cfg      Config
	stats    *stats.Store
	logger   *log.Logger
	tracer   trace.Tracer
	upgrader websocket.Upgrader
}

// New returns a Server with an empty stats store.
func New(cfg Config) *Server {
	s := &Server{
		cfg:      cfg,
		stats:    stats.NewStore(),
		logger:   cfg.Logger,
		tracer:   cfg.Tracer,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.tracer == nil {
		s.tracer = telemetry.Tracer()
	}
	return s
}

// Stats exposes the aggregate store.
func (s *Server) Stats() *stats.Store { return s.stats }

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/roster/default", s.handleDefaultRoster).Methods(http.MethodGet)
	r.HandleFunc("/api/combat", s.handleCombat).Methods(http.MethodPost)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/ws/combat", s.handleWS).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "unsupported path")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed")
	})
	return withCORS(r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
