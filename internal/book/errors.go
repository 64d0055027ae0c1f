package book

import "errors"

var (
	// ErrNotFound indicates an unknown book id.
	ErrNotFound = errors.New("book not found")

	// ErrChapterNotFound indicates a chapter id absent from the index.
	ErrChapterNotFound = errors.New("chapter not found")

	// ErrNoIndex indicates an operation that requires a generated index.
	ErrNoIndex = errors.New("book has no index")

	// ErrValidation indicates a structurally invalid record.
	ErrValidation = errors.New("validation failed")

	// ErrBookBusy indicates the book's lease is already held by another
	// workflow run.
	ErrBookBusy = errors.New("book is busy")

	// ErrExists indicates an attempt to create a book with an id that is
	// already on disk.
	ErrExists = errors.New("book already exists")
)
