// Package server exposes the review service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/irahardianto/prreview/internal/engine/review"
	"github.com/irahardianto/prreview/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// upstreamMessage is the only detail clients see for upstream failures.
const upstreamMessage = "Upstream model error. Please try again later."

const shutdownTimeout = 10 * time.Second

const (
	// maxEncodedCharBytes is the widest JSON encoding of one character: a
	// surrogate pair written as two \uXXXX escapes.
	maxEncodedCharBytes = 12
	// bodyOverhead covers JSON framing and the metadata fields.
	bodyOverhead = 64 << 10
)

// errBodyTooLarge means the request body hit the transport cap before the
// diff could be measured.
var errBodyTooLarge = errors.New("request body too large")

// BodyLimit returns the request body cap that admits any diff of up to
// maxDiffLength characters, however it is escaped.
func BodyLimit(maxDiffLength int) int64 {
	return int64(maxDiffLength)*maxEncodedCharBytes + bodyOverhead
}

// Reviewer abstracts the review service for testability.
type Reviewer interface {
	CreateReview(ctx context.Context, req review.Request) (*review.Result, error)
}

// Config holds the listener settings.
type Config struct {
	Address        string
	AllowedOrigins []string
	// MaxBodyBytes caps the request body. Zero means no cap.
	MaxBodyBytes int64
}

// Server routes HTTP requests to the review service.
type Server struct {
	cfg      Config
	reviewer Reviewer
	metrics  *Metrics
	mux      *http.ServeMux
	handler  http.Handler
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// New builds a Server. The returned value is ready to serve via Handler or Run.
func New(cfg Config, reviewer Reviewer) *Server {
	if cfg.Address == "" {
		cfg.Address = ":3000"
	}

	s := &Server{
		cfg:      cfg,
		reviewer: reviewer,
		metrics:  NewMetrics(),
		mux:      http.NewServeMux(),
	}
	s.routes()
	s.handler = withRequestID(withCORS(cfg.AllowedOrigins, s.mux))
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", s.cfg.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving on %s: %w", s.cfg.Address, err)
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /reviews", s.handleCreateReview)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.metrics.observe(string(review.CategoryInputRejected), time.Since(start))
		s.writeError(ctx, w, err)
		return
	}

	result, err := s.reviewer.CreateReview(ctx, req)
	if err != nil {
		s.metrics.observe(string(review.CategoryOf(err)), time.Since(start))
		s.writeError(ctx, w, err)
		return
	}

	s.metrics.observe(outcomeOK, time.Since(start))
	writeJSON(ctx, w, http.StatusOK, result)
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (review.Request, error) {
	body := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req review.Request
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return review.Request{}, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit)
		}
		return review.Request{}, fmt.Errorf("%w: %v", review.ErrInvalidRequest, err)
	}
	if dec.More() {
		return review.Request{}, fmt.Errorf("%w: unexpected data after JSON body", review.ErrInvalidRequest)
	}
	return req, nil
}

// writeError maps an error to its category status. Upstream causes are
// logged and never sent to the client.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContext(ctx)

	status, message := statusFor(err)
	if status == http.StatusBadGateway {
		log.Error("review failed", "error", err)
	} else {
		log.Info("review rejected", "status", status, "error", err)
	}

	writeJSON(ctx, w, status, ErrorBody{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

func statusFor(err error) (int, string) {
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge, err.Error()
	}
	switch review.CategoryOf(err) {
	case review.CategoryInputRejected:
		if errors.Is(err, review.ErrPayloadTooLarge) {
			return http.StatusRequestEntityTooLarge, err.Error()
		}
		return http.StatusBadRequest, err.Error()
	case review.CategoryUnavailable:
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusBadGateway, upstreamMessage
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.FromContext(ctx).Warn("writing response", "error", err)
	}
}
