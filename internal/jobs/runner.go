package jobs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alonmar/books-gen/internal/book"
	"github.com/alonmar/books-gen/internal/workflow"
)

// Runner submits workflow runs as background jobs. It takes the book's
// exclusive lease before queueing, so a busy book is rejected up front
// with ErrBookBusy instead of failing mid-run.
type Runner struct {
	store   *book.Store
	engine  *workflow.Engine
	tracker *Tracker
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewRunner creates a Runner.
func NewRunner(store *book.Store, engine *workflow.Engine, tracker *Tracker, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:   store,
		engine:  engine,
		tracker: tracker,
		logger:  logger,
	}
}

// Submit queues a workflow run for a book and returns its job record.
// The run executes on its own goroutine, detached from the caller's
// cancellation, and holds the book lease until it finishes.
func (r *Runner) Submit(ctx context.Context, jobType string, mode workflow.Mode, bookID, chapterID string) (Record, error) {
	if !r.store.Exists(bookID) {
		return Record{}, book.ErrNotFound
	}

	release, err := r.store.Acquire(bookID)
	if err != nil {
		return Record{}, err
	}

	rec := r.tracker.Create(jobType, bookID, chapterID)
	run := workflow.NewRun(bookID, mode, chapterID)

	runCtx := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer release()

		r.tracker.MarkRunning(rec.ID)
		if err := r.engine.Execute(runCtx, run); err != nil {
			r.tracker.MarkError(rec.ID, err, run.ErrorKind)
			return
		}
		r.tracker.MarkCompleted(rec.ID)
	}()

	return rec, nil
}

// Wait blocks until all submitted runs have finished. Used for graceful
// shutdown and in tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}
