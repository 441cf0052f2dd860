package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/history"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/logger"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/metrics"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/store"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/stream"
)

var tracer = otel.Tracer("api")

type Deps struct {
	Log       *logger.Logger
	Store     *store.Store
	History   *history.Ring
	Runner    *stream.Runner
	Feed      *Feed
	AuthToken string
}

type Config struct{ Addr string }

type Server struct {
	d   Deps
	srv *http.Server
}

func NewServer(d Deps, c Config) *Server {
	s := &Server{d: d}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { metrics.Handler().ServeHTTP(w, r) })
	r.Get("/v1/points", s.handlePoints)
	r.Get("/v1/anomalies", s.handleAnomalies)
	r.Get("/v1/detector", s.handleDetector)
	r.Post("/v1/detector/reset", s.handleReset)
	if d.Feed != nil {
		r.Get("/v1/live", d.Feed.handleWS)
	}

	s.srv = &http.Server{
		Addr:              c.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.d.Log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) auth(r *http.Request) bool {
	if s.d.AuthToken == "" {
		return true
	}
	got := r.Header.Get("Authorization")
	return strings.HasPrefix(got, "Bearer ") && strings.TrimPrefix(got, "Bearer ") == s.d.AuthToken
}

func limitParam(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "GET /v1/points")
	defer span.End()

	limit := limitParam(r, 0)
	span.SetAttributes(attribute.Int("limit", limit))

	writeJSON(w, s.d.History.Recent(limit))
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "GET /v1/anomalies")
	defer span.End()

	limit := limitParam(r, 200)
	evs, err := s.d.Store.List(limit)
	if err != nil {
		s.d.Log.Error().Err(err).Msg("list anomalies")
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, evs)
}

func (s *Server) handleDetector(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "GET /v1/detector")
	defer span.End()

	writeJSON(w, s.d.Runner.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "POST /v1/detector/reset")
	defer span.End()

	if !s.auth(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	s.d.Runner.Reset()
	s.d.Log.Info().Msg("detector window reset")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
