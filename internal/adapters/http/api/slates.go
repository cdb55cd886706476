package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/inningsim/internal/adapters/mq/queue"
	"github.com/okian/inningsim/internal/adapters/repository"
	"github.com/okian/inningsim/internal/domain/types"
	"github.com/okian/inningsim/pkg/metrics"
)

// SlatesHandler handles slate submission and lookup.
type SlatesHandler struct {
	deps Dependencies
}

// NewSlatesHandler creates a new slates handler.
func NewSlatesHandler(deps Dependencies) *SlatesHandler {
	return &SlatesHandler{deps: deps}
}

// HandleSubmit handles POST /slates requests.
func (h *SlatesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_slate"
	ctx := r.Context()

	req, err := types.Decode(r.Body)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := req.Matchup()
	if err != nil {
		writeFailure(w, WrapKind(op, ErrUnprocessable, err))
		return
	}

	jobID := uuid.NewString()

	// Idempotency check: a known request id maps to the job it created.
	if req.RequestID != "" {
		if owner, dup := h.deps.Claim(ctx, req.RequestID, jobID); dup {
			metrics.RecordJobDuplicate()
			status := repository.StatusQueued
			if rec, err := h.deps.Job(ctx, owner); err == nil {
				status = rec.Status
			}
			writeJSON(w, http.StatusOK, types.SubmitResponse{JobID: owner, Status: status, Duplicate: true})
			return
		}
	}

	job := queue.Job{ID: jobID, Matchup: m, Replications: req.Replications, Seed: req.Seed}
	if err := h.deps.Submit(ctx, job); err != nil {
		// Release the claim so the client can retry the same request id.
		if req.RequestID != "" {
			h.deps.Release(ctx, req.RequestID)
		}
		writeFailure(w, fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, types.SubmitResponse{JobID: jobID, Status: repository.StatusQueued})
}

// HandleGet handles GET /slates/{id} requests.
func (h *SlatesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	resp := types.JobResponse{
		JobID:    rec.ID,
		GameID:   rec.GameID,
		Status:   rec.Status,
		Error:    rec.Err,
		Attempts: rec.Attempts,
	}
	if rec.Result != nil {
		resp.Result = rec.Result.ToMap()
	}
	if rec.Board != nil {
		resp.Markets = rec.Board.ToMap()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleTotal handles GET /slates/{id}/totals?line=X requests.
func (h *SlatesHandler) HandleTotal(w http.ResponseWriter, r *http.Request) {
	const op = "api.slate_total"

	raw := r.URL.Query().Get("line")
	if raw == "" {
		writeFailure(w, WrapKind(op, ErrBadRequest, errMissingLine))
		return
	}
	line, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	rec, err := h.deps.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	if rec.Status != repository.StatusDone || rec.Result == nil {
		writeFailure(w, NewKind(op, ErrNotReady))
		return
	}

	market, err := h.deps.Total(rec.Result, line)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, market.ToMap())
}
