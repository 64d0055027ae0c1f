// Package jobs tracks background generation runs in memory and couples
// them to the per-book store lease. Records live until a sweeper expires
// them; nothing here survives a restart, the book records on disk do.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alonmar/books-gen/internal/workflow"
)

// Status represents the current state of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Terminal reports whether a status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Job type identifiers.
const (
	TypeGenerateIndex   = "generate_index"
	TypeGenerateBook    = "generate_book"
	TypeGenerateChapter = "generate_chapter"
)

// Record is the tracked state of one background run.
type Record struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	BookID      string             `json:"book_id"`
	ChapterID   string             `json:"chapter_id,omitempty"`
	Status      Status             `json:"status"`
	Error       string             `json:"error,omitempty"`
	ErrorKind   workflow.ErrorKind `json:"error_kind,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

// ErrJobNotFound is returned when a job id is unknown or already expired.
var ErrJobNotFound = fmt.Errorf("job not found")

// Tracker is an in-memory job registry. It is created at process start
// and injected wherever jobs are submitted or inspected.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]*Record
	logger  *slog.Logger
	ttl     time.Duration
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTTL sets how long terminal records are kept before the sweeper
// drops them.
func WithTTL(ttl time.Duration) TrackerOption {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		records: make(map[string]*Record),
		logger:  slog.Default(),
		ttl:     time.Hour,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Create registers a queued job and returns its record.
func (t *Tracker) Create(jobType, bookID, chapterID string) Record {
	rec := Record{
		ID:        uuid.New().String(),
		Type:      jobType,
		BookID:    bookID,
		ChapterID: chapterID,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}

	t.mu.Lock()
	t.records[rec.ID] = &rec
	t.mu.Unlock()

	t.logger.Info("job queued", "job_id", rec.ID, "type", jobType, "book_id", bookID)
	return rec
}

// Get returns a copy of a job record.
func (t *Tracker) Get(id string) (Record, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return *rec, nil
}

// List returns copies of all records, newest first.
func (t *Tracker) List() []Record {
	t.mu.RLock()
	out := make([]Record, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, *rec)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// MarkRunning transitions a job to running.
func (t *Tracker) MarkRunning(id string) {
	now := time.Now().UTC()
	t.mu.Lock()
	if rec, ok := t.records[id]; ok {
		rec.Status = StatusRunning
		rec.StartedAt = &now
	}
	t.mu.Unlock()
}

// MarkCompleted transitions a job to completed.
func (t *Tracker) MarkCompleted(id string) {
	now := time.Now().UTC()
	t.mu.Lock()
	if rec, ok := t.records[id]; ok {
		rec.Status = StatusCompleted
		rec.CompletedAt = &now
	}
	t.mu.Unlock()
	t.logger.Info("job completed", "job_id", id)
}

// MarkError transitions a job to error with the run's classification.
func (t *Tracker) MarkError(id string, err error, kind workflow.ErrorKind) {
	now := time.Now().UTC()
	t.mu.Lock()
	if rec, ok := t.records[id]; ok {
		rec.Status = StatusError
		rec.Error = err.Error()
		rec.ErrorKind = kind
		rec.CompletedAt = &now
	}
	t.mu.Unlock()
	t.logger.Warn("job failed", "job_id", id, "error", err, "kind", kind)
}

// StartSweeper runs a background loop that drops terminal records older
// than the TTL. It stops when ctx is cancelled.
func (t *Tracker) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.sweep(time.Now().UTC())
			}
		}
	}()
}

func (t *Tracker) sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, rec := range t.records {
		if rec.Status.Terminal() && rec.CompletedAt != nil && now.Sub(*rec.CompletedAt) > t.ttl {
			delete(t.records, id)
			t.logger.Debug("job record expired", "job_id", id)
		}
	}
}
