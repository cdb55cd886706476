package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/inningsim/internal/domain/slate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore(WithCapacity(4))

		Convey("When a job is created", func() {
			So(s.Create(ctx, "job-1", "g1"), ShouldBeNil)

			Convey("Then it is queued", func() {
				rec, err := s.Get(ctx, "job-1")
				So(err, ShouldBeNil)
				So(rec.Status, ShouldEqual, StatusQueued)
				So(rec.GameID, ShouldEqual, "g1")
				So(rec.Attempts, ShouldEqual, 0)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then creating it again fails", func() {
				So(errors.Is(s.Create(ctx, "job-1", "g1"), ErrExists), ShouldBeTrue)
			})

			Convey("And it runs to completion", func() {
				So(s.Start(ctx, "job-1"), ShouldBeNil)
				res := &slate.Result{RunID: "run-1", GameID: "g1"}
				So(s.Complete(ctx, "job-1", res, nil), ShouldBeNil)

				rec, err := s.Get(ctx, "job-1")
				So(err, ShouldBeNil)
				So(rec.Status, ShouldEqual, StatusDone)
				So(rec.Attempts, ShouldEqual, 1)
				So(rec.Result.RunID, ShouldEqual, "run-1")
				So(rec.FinishedAt.IsZero(), ShouldBeFalse)

				Convey("Then it cannot change again", func() {
					So(errors.Is(s.Fail(ctx, "job-1", errors.New("late")), ErrTransition), ShouldBeTrue)
					So(errors.Is(s.Start(ctx, "job-1"), ErrTransition), ShouldBeTrue)
				})
			})

			Convey("And it fails", func() {
				So(s.Start(ctx, "job-1"), ShouldBeNil)
				So(s.Fail(ctx, "job-1", errors.New("boom")), ShouldBeNil)

				rec, _ := s.Get(ctx, "job-1")
				So(rec.Status, ShouldEqual, StatusFailed)
				So(rec.Err, ShouldEqual, "boom")
			})
		})

		Convey("When a job is deleted", func() {
			So(s.Create(ctx, "job-2", "g2"), ShouldBeNil)
			So(s.Delete(ctx, "job-2"), ShouldBeNil)

			Convey("Then it is gone and deleting again is harmless", func() {
				_, err := s.Get(ctx, "job-2")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(s.Delete(ctx, "job-2"), ShouldBeNil)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When an unknown job is read", func() {
			_, err := s.Get(ctx, "nope")

			Convey("Then it is not found", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(s.Start(ctx, "nope"), ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore_Eviction(t *testing.T) {
	Convey("Given a store with capacity two", t, func() {
		ctx := context.Background()
		s := NewMemoryStore(WithCapacity(2))
		So(s.Create(ctx, "a", "g"), ShouldBeNil)
		So(s.Create(ctx, "b", "g"), ShouldBeNil)

		Convey("When every job is still active", func() {
			err := s.Create(ctx, "c", "g")

			Convey("Then the store refuses new jobs", func() {
				So(errors.Is(err, ErrStoreFull), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the newer job has finished", func() {
			So(s.Start(ctx, "b"), ShouldBeNil)
			So(s.Complete(ctx, "b", &slate.Result{}, nil), ShouldBeNil)
			So(s.Create(ctx, "c", "g"), ShouldBeNil)

			Convey("Then the finished job is evicted and the active one kept", func() {
				_, err := s.Get(ctx, "b")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				_, err = s.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(s.CountByStatus(ctx), ShouldResemble, map[string]int{
					StatusQueued: 2, StatusRunning: 0, StatusDone: 0, StatusFailed: 0,
				})
			})
		})
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	Convey("Given many goroutines writing jobs", t, func() {
		ctx := context.Background()
		s := NewMemoryStore(WithCapacity(1000))
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					id := fmt.Sprintf("job-%d-%d", i, j)
					if s.Create(ctx, id, "g") == nil {
						_ = s.Start(ctx, id)
						_ = s.Complete(ctx, id, &slate.Result{}, nil)
					}
				}
			}(i)
		}
		wg.Wait()

		Convey("Then every job is recorded as done", func() {
			So(s.Count(ctx), ShouldEqual, 200)
			So(s.CountByStatus(ctx)[StatusDone], ShouldEqual, 200)
		})
	})
}
