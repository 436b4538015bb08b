// Package http serves a read-mostly monitor for a running session:
// status, records, live trial events, metrics and a remote cancel.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RecordSource lists the records written so far.
type RecordSource interface {
	Records() []domain.TrialRecord
}

// Server holds the monitor dependencies.
type Server struct {
	Session ports.StatusProvider
	Records RecordSource
	Cancel  context.CancelFunc
	Metrics http.Handler
	Streams *StreamManager
	Version string
	Logger  *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithRecords enables GET /records.
func WithRecords(src RecordSource) Option {
	return func(s *Server) { s.Records = src }
}

// WithCancel enables POST /cancel.
func WithCancel(cancel context.CancelFunc) Option {
	return func(s *Server) { s.Cancel = cancel }
}

// WithMetrics mounts a metrics handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.Version = v }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// WithStreams shares a stream manager, typically the one feeding the hooks.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// NewServer creates the monitor for a session.
func NewServer(session ports.StatusProvider, opts ...Option) *Server {
	s := &Server{
		Session: session,
		Streams: NewStreamManager(),
		Version: "dev",
		Logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/status", s.GetStatus)
	r.Get("/records", s.GetRecords)
	r.Get("/events", s.SubscribeEvents)
	r.Post("/cancel", s.PostCancel)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

// Hooks returns lifecycle hooks that broadcast events to SSE subscribers.
func (s *Server) Hooks() domain.LifecycleHooks {
	return s.Streams.Hooks()
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Monitor listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("monitor failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Streams.CloseAll()
		return srv.Shutdown(shutdownCtx)
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "hdt-monitor",
		"version": s.Version,
	})
}

// GetStatus handles GET /status.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Session.Status())
}

// GetRecords handles GET /records. The optional "block" query filters by block.
func (s *Server) GetRecords(w http.ResponseWriter, r *http.Request) {
	if s.Records == nil {
		http.Error(w, "Records not available", http.StatusNotFound)
		return
	}

	records := s.Records.Records()
	if block := r.URL.Query().Get("block"); block != "" {
		filtered := make([]domain.TrialRecord, 0, len(records))
		for _, rec := range records {
			if rec.Block == block {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	if records == nil {
		records = []domain.TrialRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

// PostCancel handles POST /cancel.
func (s *Server) PostCancel(w http.ResponseWriter, r *http.Request) {
	if s.Cancel == nil {
		http.Error(w, "Cancel not available", http.StatusNotFound)
		return
	}
	s.Logger.Warn("Session cancelled remotely", "remote", r.RemoteAddr)
	s.Cancel()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// SubscribeEvents handles GET /events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "error", err)
	}
}
