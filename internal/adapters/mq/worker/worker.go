// Package worker runs queued slate jobs and records their outcome.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/inningsim/internal/adapters/mq/queue"
	"github.com/okian/inningsim/internal/domain/model"
	"github.com/okian/inningsim/internal/domain/pricing"
	"github.com/okian/inningsim/internal/domain/slate"
	"github.com/okian/inningsim/pkg/logger"
	"github.com/okian/inningsim/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = queue.Job

// Simulator plays the replications of one job.
type Simulator interface {
	Simulate(ctx context.Context, job Job) (*slate.Result, error)
}

// Pricer turns a slate result into fair prices.
type Pricer interface {
	Price(res *slate.Result) (*pricing.Board, error)
}

// Recorder tracks job state.
type Recorder interface {
	Start(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, res *slate.Result, board *pricing.Board) error
	Fail(ctx context.Context, id string, cause error) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// SlateRunner adapts slate.Simulator to Simulator. Per-job replications and
// seed override the base options when set.
type SlateRunner struct {
	base []slate.Option
}

// NewSlateRunner creates a runner with options applied to every job.
func NewSlateRunner(opts ...slate.Option) *SlateRunner {
	return &SlateRunner{base: opts}
}

// Simulate runs the job's matchup.
func (r *SlateRunner) Simulate(ctx context.Context, job Job) (*slate.Result, error) {
	if job.Matchup == nil {
		return nil, model.NewConfigurationError("job %s has no matchup", job.ID)
	}
	opts := make([]slate.Option, 0, len(r.base)+2)
	opts = append(opts, r.base...)
	if job.Replications > 0 {
		opts = append(opts, slate.WithReplications(job.Replications))
	}
	if job.Seed != 0 {
		opts = append(opts, slate.WithSeed(job.Seed))
	}
	return slate.New(opts...).Run(ctx, job.Matchup)
}

// Worker processes jobs from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	sim      Simulator
	pricer   Pricer
	recorder Recorder
	name     string
	active   *atomic.Int64

	// Shutdown control
	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, sim Simulator, pricer Pricer, rec Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		sim:      sim,
		pricer:   pricer,
		recorder: rec,
		name:     "worker", // default name
		active:   &atomic.Int64{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				// Channel closed, worker should stop
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Warn(ctx, "slate job failed",
					logger.String("job_id", job.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one job and records its outcome. Only the store can make a
// job fail silently, so a store error is returned alongside the run error.
func (w *InMemoryWorker) process(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.recorder.Start(ctx, job.ID); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("start job %s: %w", job.ID, err)
	}

	res, err := w.sim.Simulate(ctx, job)
	if err != nil {
		return w.fail(ctx, job, "simulation_error", fmt.Errorf("simulate: %w", err))
	}

	board, err := w.pricer.Price(res)
	if err != nil {
		return w.fail(ctx, job, "pricing_error", fmt.Errorf("price: %w", err))
	}

	if err := w.recorder.Complete(ctx, job.ID, res, board); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("complete job %s: %w", job.ID, err)
	}

	w.logger.Info(ctx, "slate job done",
		logger.String("job_id", job.ID),
		logger.String("game_id", res.GameID),
		logger.Int64("completed", res.Completed),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (w *InMemoryWorker) fail(ctx context.Context, job Job, kind string, cause error) error { //nolint:gocritic // hugeParam
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
	if err := w.recorder.Fail(ctx, job.ID, cause); err != nil {
		return errors.Join(cause, fmt.Errorf("record failure of job %s: %w", job.ID, err))
	}
	return cause
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	active  *atomic.Int64

	logger logger.Logger
}

// NewPool creates a new worker pool. A count below one uses the number of CPUs.
func NewPool(workerCount int, q Queue, sim Simulator, pricer Pricer, rec Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		active:  &atomic.Int64{},
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		w := NewInMemoryWorker(q, sim, pricer, rec, WithName("worker-"+strconv.Itoa(i)))
		w.active = pool.active
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Active returns the number of workers running a job.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, when it can be closed, and waits for workers.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
