package api

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/intelcore/intelcore/internal/memory"
	"github.com/intelcore/intelcore/internal/observability"
	"github.com/intelcore/intelcore/internal/store"
)

// Runner is the api's view of the scheduler: manual cycle triggers.
type Runner interface {
	Sweep(ctx context.Context)
	Synthesize(ctx context.Context) error
}

// Server is the admin HTTP server. It binds to a local address and
// carries no authentication.
type Server struct {
	store  *store.Store
	bank   *memory.Bank
	stats  *observability.RunStats
	runner Runner
	logger *slog.Logger
	http   *http.Server
}

// NewServer creates the admin server bound to addr.
func NewServer(addr string, st *store.Store, bank *memory.Bank, stats *observability.RunStats, runner Runner, readTimeout, writeTimeout, idleTimeout time.Duration) *Server {
	s := &Server{
		store:  st,
		bank:   bank,
		stats:  stats,
		runner: runner,
		logger: slog.With("component", "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /events/recent", s.handleRecentEvents)
	mux.HandleFunc("GET /collections/recent", s.handleRecentCollections)
	mux.HandleFunc("GET /memory", s.handleListMemory)
	mux.HandleFunc("GET /memory/{path...}", s.handleGetMemory)
	mux.HandleFunc("POST /collect/run", s.handleRunCollect)
	mux.HandleFunc("POST /synthesis/run", s.handleRunSynthesis)

	chain := ChainMiddleware(RecoveryMiddleware, RequestIDMiddleware)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      chain(mux),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info("admin server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("admin server failed", "error", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the routed handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer", GetRequestID(r.Context()))
			return
		}
		hours = parsed
	}
	source := r.URL.Query().Get("source")

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	events, err := s.store.EventsSince(r.Context(), since, source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), GetRequestID(r.Context()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"since":  since,
		"count":  len(events),
		"events": events,
	})
}

func (s *Server) handleRecentCollections(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", GetRequestID(r.Context()))
			return
		}
		limit = parsed
	}

	entries, err := s.store.RecentCollections(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), GetRequestID(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"collections": entries})
}

func (s *Server) handleListMemory(w http.ResponseWriter, r *http.Request) {
	files, err := s.bank.ListFiles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), GetRequestID(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	if rel == "" || strings.Contains(rel, "..") || path.Clean(rel) != rel {
		writeError(w, http.StatusBadRequest, "invalid memory path", GetRequestID(r.Context()))
		return
	}

	content, ok, err := s.bank.LoadFile(rel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), GetRequestID(r.Context()))
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "memory file not found", GetRequestID(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": rel, "content": content})
}

func (s *Server) handleRunCollect(w http.ResponseWriter, r *http.Request) {
	s.runner.Sweep(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (s *Server) handleRunSynthesis(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Synthesize(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), GetRequestID(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
