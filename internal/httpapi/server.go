// Package httpapi exposes the batch trigger, health probe and metrics over
// plain HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/service"
)

const (
	RunPath     = "/v1/attrition/run"
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"

	readHeaderTimeout = 5 * time.Second
)

type BatchRunner interface {
	RunBatch(ctx context.Context) (service.RunSummary, error)
}

type Option func(*Server)

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

func WithAuthToken(token string) Option {
	return func(s *Server) {
		s.auth = NewAuthMiddleware(token)
	}
}

type Server struct {
	addr    string
	batch   BatchRunner
	auth    *AuthMiddleware
	metrics http.Handler
	logger  *zap.Logger
	srv     *http.Server
}

func New(addr string, batch BatchRunner, logger *zap.Logger, opts ...Option) *Server {
	if batch == nil {
		panic("nil BatchRunner provided to httpapi.New")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		addr:   addr,
		batch:  batch,
		auth:   NewAuthMiddleware(""),
		logger: logger.Named("http"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+RunPath, s.auth.Authenticate(s.handleRun))
	mux.HandleFunc("GET "+HealthPath, handleHealth)
	if s.metrics != nil {
		mux.Handle("GET "+MetricsPath, s.metrics)
	}
	return mux
}

// Serve accepts connections on lis until Shutdown.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("HTTP server listening", zap.String("addr", lis.Addr().String()))
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

// ListenAndServe listens on the configured address.
func (s *Server) ListenAndServe() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(lis)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	summary, err := s.batch.RunBatch(r.Context())
	if err != nil {
		code := statusFor(err)
		s.logger.Error("batch run failed", zap.Int("status", code), zap.Error(err))
		if summary.Error == "" {
			summary.Error = err.Error()
		}
		writeJSON(w, code, summary)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEligibleEmployees), errors.Is(err, service.ErrBatchCanceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
