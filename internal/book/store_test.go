package book

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	b := threeChapterBook()
	b.Index.Chapters[0].Content = "some prose"
	b.Summary = "a running summary"
	_ = b.MarkProcessed("1")

	if err := s.Save(b); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := s.Load("b1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Save refreshes UpdatedAt, so compare against the saved value.
	if !reflect.DeepEqual(loaded, b) {
		t.Errorf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", b, loaded)
	}
}

func TestStore_LoadNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Exists(t *testing.T) {
	s := newTestStore(t)
	if s.Exists("b1") {
		t.Error("book should not exist yet")
	}
	if err := s.Save(threeChapterBook()); err != nil {
		t.Fatal(err)
	}
	if !s.Exists("b1") {
		t.Error("book should exist after save")
	}
}

func TestStore_Create(t *testing.T) {
	s := newTestStore(t)
	if err := s.Create(threeChapterBook()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Create(threeChapterBook()); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Save(threeChapterBook()); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("b1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Exists("b1") {
		t.Error("book should be gone after delete")
	}
}

func TestStore_List(t *testing.T) {
	s := newTestStore(t)

	first := New("first", "First", "S1", StyleFantasia, 100)
	second := threeChapterBook()
	second.ID = "second"
	_ = second.MarkProcessed("1")

	if err := s.Save(first); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(second); err != nil {
		t.Fatal(err)
	}

	// A stray non-JSON file must not break listing.
	if err := os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	summaries, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	byID := map[string]Summary{}
	for _, sum := range summaries {
		byID[sum.ID] = sum
	}
	if byID["second"].ChapterCount != 3 {
		t.Errorf("expected 3 chapters, got %d", byID["second"].ChapterCount)
	}
	if byID["second"].Processed != 1 {
		t.Errorf("expected 1 processed, got %d", byID["second"].Processed)
	}
}

func TestStore_Acquire(t *testing.T) {
	s := newTestStore(t)

	release, err := s.Acquire("b1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if _, err := s.Acquire("b1"); !errors.Is(err, ErrBookBusy) {
		t.Errorf("expected ErrBookBusy, got %v", err)
	}

	// A different id is independent.
	release2, err := s.Acquire("b2")
	if err != nil {
		t.Fatalf("Acquire(b2) error = %v", err)
	}
	release2()

	release()
	// Release is idempotent and frees the lease.
	release()
	release3, err := s.Acquire("b1")
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	release3()
}
