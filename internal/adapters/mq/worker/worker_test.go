package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/inningsim/internal/adapters/mq/queue"
	"github.com/okian/inningsim/internal/adapters/mq/worker"
	"github.com/okian/inningsim/internal/adapters/repository"
	"github.com/okian/inningsim/internal/domain/model"
	"github.com/okian/inningsim/internal/domain/pricing"
	"github.com/okian/inningsim/internal/domain/slate"
	logging "github.com/okian/inningsim/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	jobs chan queue.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(_ context.Context) <-chan queue.Job {
	return mq.jobs
}

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

type mockSimulator struct {
	mu     sync.Mutex
	errors map[string]error
	calls  []string
}

func newMockSimulator() *mockSimulator {
	return &mockSimulator{errors: make(map[string]error)}
}

func (ms *mockSimulator) Simulate(_ context.Context, job queue.Job) (*slate.Result, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.calls = append(ms.calls, job.ID)
	if err, ok := ms.errors[job.ID]; ok {
		return nil, err
	}
	return &slate.Result{RunID: "run-" + job.ID, GameID: "g-" + job.ID, Requested: job.Replications, Completed: int64(job.Replications)}, nil
}

func (ms *mockSimulator) setError(id string, err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.errors[id] = err
}

type mockPricer struct {
	err error
}

func (mp *mockPricer) Price(res *slate.Result) (*pricing.Board, error) {
	if mp.err != nil {
		return nil, mp.err
	}
	return &pricing.Board{RunID: res.RunID, GameID: res.GameID}, nil
}

// waitFor polls until the job reaches a terminal status.
func waitFor(store *repository.MemoryStore, id string) repository.Record {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := store.Get(context.Background(), id)
		if err == nil && rec.Terminal() {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	rec, _ := store.Get(context.Background(), id)
	return rec
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker wired to a job store", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		sim := newMockSimulator()
		pricer := &mockPricer{}
		store := repository.NewMemoryStore()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := worker.NewInMemoryWorker(q, sim, pricer, store, worker.WithName("test-worker"))
		go w.Run(ctx)

		convey.Convey("When a job succeeds", func() {
			convey.So(store.Create(ctx, "job-1", "g-job-1"), convey.ShouldBeNil)
			q.jobs <- queue.Job{ID: "job-1", Replications: 100}
			rec := waitFor(store, "job-1")

			convey.Convey("Then the result and prices are stored", func() {
				convey.So(rec.Status, convey.ShouldEqual, repository.StatusDone)
				convey.So(rec.Attempts, convey.ShouldEqual, 1)
				convey.So(rec.Result.Completed, convey.ShouldEqual, int64(100))
				convey.So(rec.Board.RunID, convey.ShouldEqual, "run-job-1")
			})
		})

		convey.Convey("When the simulation fails", func() {
			convey.So(store.Create(ctx, "job-2", "g"), convey.ShouldBeNil)
			sim.setError("job-2", model.NewConfigurationError("no replications"))
			q.jobs <- queue.Job{ID: "job-2"}
			rec := waitFor(store, "job-2")

			convey.Convey("Then the job is failed with the cause", func() {
				convey.So(rec.Status, convey.ShouldEqual, repository.StatusFailed)
				convey.So(rec.Err, convey.ShouldContainSubstring, "no replications")
				convey.So(rec.Result, convey.ShouldBeNil)
			})
		})

		convey.Convey("When pricing fails", func() {
			pricer.err = errors.New("no winner distribution")
			convey.So(store.Create(ctx, "job-3", "g"), convey.ShouldBeNil)
			q.jobs <- queue.Job{ID: "job-3"}
			rec := waitFor(store, "job-3")

			convey.Convey("Then the job is failed", func() {
				convey.So(rec.Status, convey.ShouldEqual, repository.StatusFailed)
				convey.So(rec.Err, convey.ShouldContainSubstring, "price")
			})
		})

		convey.Convey("When the job is unknown to the store", func() {
			convey.So(store.Create(ctx, "after", "g"), convey.ShouldBeNil)
			q.jobs <- queue.Job{ID: "ghost"}
			q.jobs <- queue.Job{ID: "after"}
			rec := waitFor(store, "after")

			convey.Convey("Then it is skipped and the worker keeps going", func() {
				convey.So(rec.Status, convey.ShouldEqual, repository.StatusDone)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)

			convey.Convey("Then a second shutdown is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		sim := newMockSimulator()
		store := repository.NewMemoryStore()

		convey.Convey("When created with a count below one", func() {
			pool := worker.NewPool(0, q, sim, &mockPricer{}, store)

			convey.Convey("Then it still has workers", func() {
				convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
				convey.So(pool.Active(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When processing several jobs", func() {
			pool := worker.NewPool(3, q, sim, &mockPricer{}, store)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			ids := []string{"a", "b", "c", "d", "e"}
			for _, id := range ids {
				convey.So(store.Create(ctx, id, "g"), convey.ShouldBeNil)
				q.jobs <- queue.Job{ID: id, Replications: 10}
			}

			convey.Convey("Then every job is done", func() {
				for _, id := range ids {
					convey.So(waitFor(store, id).Status, convey.ShouldEqual, repository.StatusDone)
				}
			})

			convey.Convey("Then shutdown closes the queue and drains workers", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
				defer shutdownCancel()
				convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerConcurrency(t *testing.T) {
	convey.Convey("Given a pool with a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		sim := newMockSimulator()
		store := repository.NewMemoryStore()
		pool := worker.NewPool(4, q, sim, &mockPricer{}, store)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		const n = 50
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("job-%d", i)
			convey.So(store.Create(ctx, id, "g"), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, queue.Job{ID: id}), convey.ShouldBeNil)
		}

		convey.Convey("Then each job runs exactly once", func() {
			for i := 0; i < n; i++ {
				convey.So(waitFor(store, fmt.Sprintf("job-%d", i)).Status, convey.ShouldEqual, repository.StatusDone)
			}
			sim.mu.Lock()
			defer sim.mu.Unlock()
			convey.So(len(sim.calls), convey.ShouldEqual, n)
		})
	})
}

func TestSlateRunner(t *testing.T) {
	convey.Convey("Given a slate runner", t, func() {
		r := worker.NewSlateRunner(slate.WithReplications(10))

		convey.Convey("When the job has no matchup", func() {
			_, err := r.Simulate(context.Background(), queue.Job{ID: "j"})

			convey.Convey("Then it is a configuration error", func() {
				convey.So(errors.Is(err, model.ErrConfiguration), convey.ShouldBeTrue)
			})
		})
	})
}
