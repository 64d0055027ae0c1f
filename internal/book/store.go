package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store reads and writes one JSON record per book in a directory.
// There is no partial-update API: callers load, mutate and save the whole
// record. Writers targeting the same book id must hold the id's lease
// (Acquire) so only one workflow mutates a book at a time.
type Store struct {
	dir    string
	logger *slog.Logger

	mu     sync.Mutex
	leases map[string]bool
}

// NewStore creates a store over the given directory, creating it if
// needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create books directory: %w", err)
	}
	return &Store{
		dir:    dir,
		logger: logger,
		leases: make(map[string]bool),
	}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Exists reports whether a record exists for the given book id.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Load reads a book record. Returns ErrNotFound for unknown ids.
func (s *Store) Load(id string) (*Book, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read book %s: %w", id, err)
	}

	var b Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode book %s: %w", id, err)
	}
	if b.ProcessedChapters == nil {
		b.ProcessedChapters = []string{}
	}
	return &b, nil
}

// Save writes the whole record durably, refreshing updated_at. The write
// goes through a temp file and rename so a crash never leaves a truncated
// record behind.
func (s *Store) Save(b *Book) error {
	if b.ID == "" {
		return fmt.Errorf("%w: book has empty id", ErrValidation)
	}
	b.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode book %s: %w", b.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, b.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write book %s: %w", b.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(b.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to persist book %s: %w", b.ID, err)
	}

	s.logger.Debug("book saved", "id", b.ID, "chapters", len(b.Index.Chapters), "processed", len(b.ProcessedChapters))
	return nil
}

// Create persists a new record, failing with ErrExists if the id is
// already taken.
func (s *Store) Create(b *Book) error {
	if s.Exists(b.ID) {
		return fmt.Errorf("%w: %s", ErrExists, b.ID)
	}
	return s.Save(b)
}

// Delete removes a book record. Returns ErrNotFound for unknown ids.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete book %s: %w", id, err)
	}
	s.logger.Info("book deleted", "id", id)
	return nil
}

// Summary is the listing view of a book record.
type Summary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Synopsis     string    `json:"synopsis"`
	Style        Style     `json:"style"`
	ChapterCount int       `json:"chapter_count"`
	Processed    int       `json:"processed"`
	IsCompleted  bool      `json:"is_completed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// List returns summaries for every readable record, sorted by creation
// time, newest first. Unreadable files are skipped with a warning rather
// than failing the whole listing.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read books directory: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		b, err := s.Load(id)
		if err != nil {
			s.logger.Warn("skipping unreadable book record", "file", name, "error", err)
			continue
		}
		summaries = append(summaries, Summary{
			ID:           b.ID,
			Title:        b.Title,
			Synopsis:     b.Synopsis,
			Style:        b.Style,
			ChapterCount: len(b.Index.Chapters),
			Processed:    len(b.ProcessedChapters),
			IsCompleted:  b.IsCompleted,
			CreatedAt:    b.CreatedAt,
			UpdatedAt:    b.UpdatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Acquire takes the exclusive lease for a book id. It returns a release
// function on success and ErrBookBusy if another run already holds the
// lease. The lease is in-memory: the design assumes a single process owns
// the books directory.
func (s *Store) Acquire(id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.leases[id] {
		return nil, fmt.Errorf("%w: %s", ErrBookBusy, id)
	}
	s.leases[id] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.leases, id)
			s.mu.Unlock()
		})
	}
	return release, nil
}
