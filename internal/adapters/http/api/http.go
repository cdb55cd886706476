// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/inningsim/internal/adapters/mq/queue"
	"github.com/okian/inningsim/internal/adapters/repository"
	"github.com/okian/inningsim/internal/domain/dedupe"
	"github.com/okian/inningsim/internal/domain/model"
	"github.com/okian/inningsim/internal/domain/pricing"
	"github.com/okian/inningsim/internal/domain/slate"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Submit registers and enqueues a slate job.
	Submit(ctx context.Context, job queue.Job) error

	// Job returns the stored state of a slate job.
	Job(ctx context.Context, id string) (repository.Record, error)

	// Total prices a total at an arbitrary line.
	Total(res *slate.Result, line float64) (pricing.TotalMarket, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	slatesHandler *SlatesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		slatesHandler: NewSlatesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /slates", MetricsMiddleware(s.slatesHandler.HandleSubmit, "slates"))
	mux.HandleFunc("GET /slates/{id}", MetricsMiddleware(s.slatesHandler.HandleGet, "slate"))
	mux.HandleFunc("GET /slates/{id}/totals", MetricsMiddleware(s.slatesHandler.HandleTotal, "slate_totals"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to its HTTP status and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidLine):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrNotReady):
		return http.StatusConflict, "not_ready"
	case errors.Is(err, ErrUnprocessable), errors.Is(err, model.ErrConfiguration), errors.Is(err, model.ErrDataIncomplete):
		return http.StatusUnprocessableEntity, "unprocessable"
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrQueueFull), errors.Is(err, repository.ErrStoreFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUnavailable), errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
