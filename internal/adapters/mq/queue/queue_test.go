package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Test empty queue
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, Job{ID: "job1", Replications: 100}); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	jobs := q.Dequeue(ctx)
	j := <-jobs
	if j.ID != "job1" {
		t.Errorf("expected job1, got %v", j.ID)
	}
	if j.EnqueuedAt.IsZero() {
		t.Error("expected enqueue time to be stamped")
	}
	if j.Replications != 100 {
		t.Errorf("expected 100 replications, got %d", j.Replications)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}

	for _, id := range []string{"job1", "job2"} {
		if err := q.Enqueue(ctx, Job{ID: id}); err != nil {
			t.Errorf("expected enqueue to succeed, got %v", err)
		}
	}

	// Try to enqueue when full
	if err := q.Enqueue(ctx, Job{ID: "job3"}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_InvalidCapacityKeepsDefault(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(0))
	if q.Capacity() != defaultQueueCapacity {
		t.Errorf("expected default capacity, got %d", q.Capacity())
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, Job{ID: "job1"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_PreservesOrder(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 5; i++ {
		if err := q.Enqueue(ctx, Job{ID: fmt.Sprintf("job%d", i)}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	jobs := q.Dequeue(ctx)
	for i := 0; i < 5; i++ {
		j := <-jobs
		if want := fmt.Sprintf("job%d", i); j.ID != want {
			t.Errorf("expected %s, got %s", want, j.ID)
		}
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	numGoroutines := 10
	numJobs := 100

	// Start producer goroutines
	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			for j := 0; j < numJobs; j++ {
				job := Job{ID: fmt.Sprintf("job%d_%d", id, j)}
				for q.Enqueue(ctx, job) != nil {
					time.Sleep(time.Millisecond)
				}
			}
			done <- true
		}(i)
	}

	// Start consumer goroutines
	consumed := make(chan string, numGoroutines*numJobs)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			for job := range q.Dequeue(ctx) {
				consumed <- job.ID
			}
		}()
	}

	// Wait for producers to finish
	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	seen := make(map[string]bool, numGoroutines*numJobs)
	timeout := time.After(5 * time.Second)
	for len(seen) < numGoroutines*numJobs {
		select {
		case id := <-consumed:
			if seen[id] {
				t.Fatalf("job %s delivered twice", id)
			}
			seen[id] = true
		case <-timeout:
			t.Fatalf("consumed %d of %d jobs", len(seen), numGoroutines*numJobs)
		}
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if err := q.Enqueue(ctx, Job{ID: "job1"}); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}

	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}

	// Try to enqueue after closing (should fail)
	if err := q.Enqueue(ctx, Job{ID: "job2"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Buffered jobs drain, then the channel closes.
	jobs := q.Dequeue(ctx)
	var drained int
	timeout := time.After(time.Second)
	for open := true; open; {
		select {
		case _, ok := <-jobs:
			if !ok {
				open = false
				continue
			}
			drained++
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
	if drained != 1 {
		t.Errorf("expected 1 drained job, got %d", drained)
	}

	// Close again should not error
	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
