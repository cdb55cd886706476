// Package dedupe tracks submission request ids so a retried request maps to
// the job it already created.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper remembers which job a request id was assigned to.
type Deduper interface {
	// Claim records key -> jobID unless key is already known. It returns the
	// job id now owning the key and whether the key was already claimed.
	Claim(ctx context.Context, key, jobID string) (owner string, duplicate bool)

	// Release forgets key, allowing it to be submitted again. It is used when
	// a claimed submission could not be enqueued.
	Release(ctx context.Context, key string)

	// Lookup returns the job id for key.
	Lookup(ctx context.Context, key string) (string, bool)

	Size() int64
}

type entry struct {
	key   string
	jobID string
}

// inMemoryDeduper keeps claims in insertion order and evicts the oldest once
// maxSize is reached. maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	claims  map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.claims = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, key, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[key]; ok {
		return el.Value.(*entry).jobID, true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.claims[key] = d.order.PushBack(&entry{key: key, jobID: jobID})
	return jobID, false
}

func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[key]; ok {
		d.order.Remove(el)
		delete(d.claims, key)
	}
}

func (d *inMemoryDeduper) Lookup(_ context.Context, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.claims[key]
	if !ok {
		return "", false
	}
	return el.Value.(*entry).jobID, true
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.claims, front.Value.(*entry).key)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
