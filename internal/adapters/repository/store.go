// Package repository keeps slate jobs and their results in memory.
package repository

import (
	"context"
	"time"

	"github.com/okian/inningsim/internal/domain/pricing"
	"github.com/okian/inningsim/internal/domain/slate"
)

// Job status values.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Record is the stored state of one slate job.
type Record struct {
	ID          string
	GameID      string
	Status      string
	Attempts    int
	Err         string
	Result      *slate.Result
	Board       *pricing.Board
	SubmittedAt time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Terminal reports whether the job will not change again.
func (r *Record) Terminal() bool {
	return r.Status == StatusDone || r.Status == StatusFailed
}

// Store provides read/write access to slate jobs.
type Store interface {
	// Create registers a queued job. Returns ErrExists for a known id and
	// ErrStoreFull when no finished job can be evicted to make room.
	Create(ctx context.Context, id, gameID string) error

	// Start marks a job running.
	Start(ctx context.Context, id string) error

	// Complete stores the result and prices of a successful run.
	Complete(ctx context.Context, id string, res *slate.Result, board *pricing.Board) error

	// Fail marks a job failed with the given cause.
	Fail(ctx context.Context, id string, cause error) error

	// Delete forgets a job. Deleting an unknown job is not an error.
	Delete(ctx context.Context, id string) error

	// Get returns a copy of the job record.
	// Returns ErrNotFound if the job is unknown.
	Get(ctx context.Context, id string) (Record, error)

	// Count returns the number of jobs tracked.
	Count(ctx context.Context) int

	// CountByStatus returns the number of jobs per status.
	CountByStatus(ctx context.Context) map[string]int
}
