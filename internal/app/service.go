// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/inningsim/internal/adapters/mq/queue"
	"github.com/okian/inningsim/internal/adapters/mq/worker"
	"github.com/okian/inningsim/internal/adapters/repository"
	"github.com/okian/inningsim/internal/domain/dedupe"
	"github.com/okian/inningsim/internal/domain/game"
	"github.com/okian/inningsim/internal/domain/model"
	"github.com/okian/inningsim/internal/domain/pricing"
	"github.com/okian/inningsim/internal/domain/slate"
	"github.com/okian/inningsim/pkg/logger"
	"github.com/okian/inningsim/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// Service implements the API dependencies for the slate simulator.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    *repository.MemoryStore
	deduper  dedupe.Deduper
	jobQueue *queue.InMemoryQueue
	pool     *worker.Pool
	pricer   *pricing.Pricer

	// Configuration
	jobWorkers      int
	queueSize       int
	dedupeSize      int
	storeSize       int
	maxReplications int
	gameOpts        []game.Option
	slateOpts       []slate.Option
	pricerOpts      []pricing.Option

	// State
	started bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		jobWorkers:      defaultJobWorkers,
		queueSize:       defaultQueueSize,
		dedupeSize:      defaultDedupeSize,
		storeSize:       defaultStoreSize,
		maxReplications: defaultMaxReplications,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.pricer = pricing.NewPricer(s.pricerOpts...)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting slate service...")

	s.store = repository.NewMemoryStore(repository.WithCapacity(s.storeSize))
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	runnerOpts := make([]slate.Option, 0, len(s.slateOpts)+1)
	runnerOpts = append(runnerOpts, s.slateOpts...)
	runnerOpts = append(runnerOpts, slate.WithGameOptions(s.gameOpts...))
	s.pool = worker.NewPool(s.jobWorkers, s.jobQueue, worker.NewSlateRunner(runnerOpts...), s.pricer, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "slate service started",
		logger.Int("job_workers", s.jobWorkers),
		logger.Int("queue_size", s.queueSize),
		logger.Int("result_store_size", s.storeSize),
	)
	return nil
}

// Stop gracefully shuts down the service. Queued jobs that have not started
// are dropped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping slate service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "slate service stopped")
}

// Claim records which job a request id belongs to.
func (s *Service) Claim(ctx context.Context, key, jobID string) (string, bool) {
	return s.deduper.Claim(ctx, key, jobID)
}

// Release forgets a request id.
func (s *Service) Release(ctx context.Context, key string) {
	s.deduper.Release(ctx, key)
}

// Lookup returns the job a request id belongs to.
func (s *Service) Lookup(ctx context.Context, key string) (string, bool) {
	return s.deduper.Lookup(ctx, key)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Submit validates the job's matchup against the game rules, registers it
// and enqueues it.
func (s *Service) Submit(ctx context.Context, job queue.Job) error {
	const op = "service.submit"

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return fmt.Errorf("%s: %w", op, queue.ErrClosed)
	}

	if job.Replications > s.maxReplications {
		return model.NewConfigurationError("%s: replications %d above limit %d", op, job.Replications, s.maxReplications)
	}
	if _, err := game.New(job.Matchup, s.gameOpts...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Create(ctx, job.ID, job.Matchup.GameID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		_ = s.store.Delete(ctx, job.ID)
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordJobSubmitted()
	s.logger.Debug(ctx, "slate job queued",
		logger.String("job_id", job.ID),
		logger.String("game_id", job.Matchup.GameID),
		logger.Int("replications", job.Replications),
	)
	return nil
}

// Job returns the stored state of a slate job.
func (s *Service) Job(ctx context.Context, id string) (repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return repository.Record{}, fmt.Errorf("service.job: %w: %s", repository.ErrNotFound, id)
	}
	return s.store.Get(ctx, id)
}

// Total prices a total at an arbitrary line.
func (s *Service) Total(res *slate.Result, line float64) (pricing.TotalMarket, error) {
	return s.pricer.Total(res, line)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":          s.started,
		"job_workers":      s.jobWorkers,
		"queue_size":       s.queueSize,
		"dedupe_size":      s.dedupeSize,
		"dedupe_entries":   s.deduper.Size(),
		"max_replications": s.maxReplications,
	}
	if replications, err := metrics.ReplicationsTotal(); err == nil {
		stats["replications_total"] = replications
	}

	if s.started {
		stats["queue_length"] = s.jobQueue.Len(ctx)
		stats["active_workers"] = s.pool.Active()
		stats["jobs"] = s.store.Count(ctx)
		byStatus := make(map[string]any)
		for k, v := range s.store.CountByStatus(ctx) {
			byStatus[k] = v
		}
		stats["jobs_by_status"] = byStatus
	}
	return stats
}
