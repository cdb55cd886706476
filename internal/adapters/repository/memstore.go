package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/inningsim/internal/domain/pricing"
	"github.com/okian/inningsim/internal/domain/slate"
	"github.com/okian/inningsim/pkg/metrics"
)

// MemoryStore is a bounded Store. When full, the oldest finished job is
// evicted; queued and running jobs are never evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	records  map[string]*list.Element
	order    *list.List // of *Record, oldest first
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		capacity: defaultCapacity,
		records:  make(map[string]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateResultsStored(0)
	return s
}

// Create registers a queued job.
func (s *MemoryStore) Create(ctx context.Context, id, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; ok {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	if s.order.Len() >= s.capacity && !s.evictLocked() {
		metrics.RecordErrorByComponent("repository", "store_full")
		return ErrStoreFull
	}
	rec := &Record{ID: id, GameID: gameID, Status: StatusQueued, SubmittedAt: time.Now()}
	s.records[id] = s.order.PushBack(rec)
	metrics.UpdateResultsStored(s.order.Len())
	return nil
}

// evictLocked drops the oldest terminal record. Caller holds the lock.
func (s *MemoryStore) evictLocked() bool {
	for e := s.order.Front(); e != nil; e = e.Next() {
		rec, _ := e.Value.(*Record)
		if rec.Terminal() {
			s.order.Remove(e)
			delete(s.records, rec.ID)
			metrics.RecordResultEvicted()
			return true
		}
	}
	return false
}

// Start marks a job running and counts the attempt.
func (s *MemoryStore) Start(_ context.Context, id string) error {
	return s.update(id, func(r *Record) error {
		if r.Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrTransition, id, r.Status)
		}
		r.Status = StatusRunning
		r.Attempts++
		r.StartedAt = time.Now()
		return nil
	})
}

// Complete stores the result of a successful run.
func (s *MemoryStore) Complete(_ context.Context, id string, res *slate.Result, board *pricing.Board) error {
	return s.update(id, func(r *Record) error {
		if r.Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrTransition, id, r.Status)
		}
		r.Status = StatusDone
		r.Result = res
		r.Board = board
		r.Err = ""
		r.FinishedAt = time.Now()
		return nil
	})
}

// Fail marks a job failed.
func (s *MemoryStore) Fail(_ context.Context, id string, cause error) error {
	return s.update(id, func(r *Record) error {
		if r.Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrTransition, id, r.Status)
		}
		r.Status = StatusFailed
		if cause != nil {
			r.Err = cause.Error()
		}
		r.FinishedAt = time.Now()
		return nil
	})
}

func (s *MemoryStore) update(id string, fn func(r *Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rec, _ := e.Value.(*Record)
	return fn(rec)
}

// Delete forgets a job.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.records[id]; ok {
		s.order.Remove(e)
		delete(s.records, id)
		metrics.UpdateResultsStored(s.order.Len())
	}
	return nil
}

// Get returns a copy of the job record.
func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rec, _ := e.Value.(*Record)
	return *rec, nil
}

// Count returns the number of jobs tracked.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}

// CountByStatus returns the number of jobs per status.
func (s *MemoryStore) CountByStatus(_ context.Context) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]int{StatusQueued: 0, StatusRunning: 0, StatusDone: 0, StatusFailed: 0}
	for e := s.order.Front(); e != nil; e = e.Next() {
		rec, _ := e.Value.(*Record)
		out[rec.Status]++
	}
	return out
}
