// Package book defines the durable book record and its JSON file store.
//
// A book moves through a fixed lifecycle: created with an empty index,
// index generated once (chapter stubs, no content), then chapters filled
// in one at a time in index order. The record on disk is the source of
// truth; everything else in the system is advisory.
package book

import (
	"fmt"
	"time"
)

// Style is a literary style from the fixed enumeration.
type Style string

const (
	StyleMisterio       Style = "misterio"
	StyleFantasia       Style = "fantasia"
	StyleCienciaFiccion Style = "ciencia_ficcion"
	StyleRomance        Style = "romance"
	StyleTerror         Style = "terror"
	StyleAventura       Style = "aventura"
	StyleHistorica      Style = "historica"
	StyleInfantil       Style = "infantil"
)

// Styles lists all valid literary styles.
func Styles() []Style {
	return []Style{
		StyleMisterio,
		StyleFantasia,
		StyleCienciaFiccion,
		StyleRomance,
		StyleTerror,
		StyleAventura,
		StyleHistorica,
		StyleInfantil,
	}
}

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	for _, known := range Styles() {
		if s == known {
			return true
		}
	}
	return false
}

// Chapter is a single entry in a book's index.
// ID, Title and Description are generated once with the index and are
// immutable thereafter. Content is empty until generated, then only ever
// appended to by continuation.
type Chapter struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content,omitempty"`
}

// Index is the ordered list of chapter stubs for a book.
type Index struct {
	Chapters []Chapter `json:"chapters"`
}

// Empty reports whether the index has no chapters.
func (i Index) Empty() bool {
	return len(i.Chapters) == 0
}

// Book is the durable per-book record, serialized to <id>.json.
type Book struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Synopsis          string    `json:"synopsis"`
	Style             Style     `json:"style"`
	TargetPages       int       `json:"target_pages"`
	Summary           string    `json:"summary,omitempty"`
	Index             Index     `json:"index"`
	ProcessedChapters []string  `json:"processed_chapters"`
	IsCompleted       bool      `json:"is_completed"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// New creates a book with an empty index and the given identity fields.
func New(id, title, synopsis string, style Style, targetPages int) *Book {
	now := time.Now().UTC()
	return &Book{
		ID:                id,
		Title:             title,
		Synopsis:          synopsis,
		Style:             style,
		TargetPages:       targetPages,
		ProcessedChapters: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// HasIndex reports whether the index has been generated.
func (b *Book) HasIndex() bool {
	return !b.Index.Empty()
}

// Chapter returns the chapter with the given id, or nil.
func (b *Book) Chapter(chapterID string) *Chapter {
	for i := range b.Index.Chapters {
		if b.Index.Chapters[i].ID == chapterID {
			return &b.Index.Chapters[i]
		}
	}
	return nil
}

// IsLastChapter reports whether chapterID is the final chapter by index
// position. Completion order does not matter.
func (b *Book) IsLastChapter(chapterID string) bool {
	n := len(b.Index.Chapters)
	return n > 0 && b.Index.Chapters[n-1].ID == chapterID
}

// ChapterPosition returns the 1-based index position of a chapter, or 0
// if the chapter is not in the index.
func (b *Book) ChapterPosition(chapterID string) int {
	for i := range b.Index.Chapters {
		if b.Index.Chapters[i].ID == chapterID {
			return i + 1
		}
	}
	return 0
}

// IsProcessed reports whether a chapter id is in processed_chapters.
func (b *Book) IsProcessed(chapterID string) bool {
	for _, id := range b.ProcessedChapters {
		if id == chapterID {
			return true
		}
	}
	return false
}

// MarkProcessed appends a chapter id to processed_chapters. The set grows
// monotonically; ids are never duplicated and must exist in the index.
func (b *Book) MarkProcessed(chapterID string) error {
	if b.Chapter(chapterID) == nil {
		return fmt.Errorf("%w: %s", ErrChapterNotFound, chapterID)
	}
	if b.IsProcessed(chapterID) {
		return nil
	}
	b.ProcessedChapters = append(b.ProcessedChapters, chapterID)
	return nil
}

// AllProcessed reports whether every chapter in the index has been
// processed.
func (b *Book) AllProcessed() bool {
	return b.HasIndex() && len(b.ProcessedChapters) == len(b.Index.Chapters)
}

// NextChapter returns the id of the next chapter to work on: the first
// chapter in index order absent from processed_chapters, or the last
// chapter if all have been processed.
func (b *Book) NextChapter() (string, error) {
	if !b.HasIndex() {
		return "", ErrNoIndex
	}
	for _, ch := range b.Index.Chapters {
		if !b.IsProcessed(ch.ID) {
			return ch.ID, nil
		}
	}
	return b.Index.Chapters[len(b.Index.Chapters)-1].ID, nil
}

// ValidateIndex checks that every chapter stub is structurally valid:
// non-empty id, title and description, with unique ids.
func ValidateIndex(idx Index) error {
	if idx.Empty() {
		return fmt.Errorf("%w: index has no chapters", ErrValidation)
	}
	seen := make(map[string]bool, len(idx.Chapters))
	for i, ch := range idx.Chapters {
		if ch.ID == "" {
			return fmt.Errorf("%w: chapter %d has empty id", ErrValidation, i+1)
		}
		if ch.Title == "" {
			return fmt.Errorf("%w: chapter %q has empty title", ErrValidation, ch.ID)
		}
		if ch.Description == "" {
			return fmt.Errorf("%w: chapter %q has empty description", ErrValidation, ch.ID)
		}
		if seen[ch.ID] {
			return fmt.Errorf("%w: duplicate chapter id %q", ErrValidation, ch.ID)
		}
		seen[ch.ID] = true
	}
	return nil
}
