// Package workflow drives book generation as a typed state machine: index
// generation, chapter selection, drafting and continuation, with every
// transition persisted before the next step runs.
package workflow

import (
	"context"
	"errors"

	"github.com/alonmar/books-gen/internal/book"
	"github.com/alonmar/books-gen/internal/chain"
	"github.com/alonmar/books-gen/internal/providers"
)

// State is a workflow state. The set is closed; there are no user-defined
// states.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateIndexPending    State = "index_pending"
	StateIndexReady      State = "index_ready"
	StateChapterSelect   State = "chapter_select"
	StateChapterDraft    State = "chapter_draft"
	StateChapterContinue State = "chapter_continue"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Mode selects how much of the book a run covers.
type Mode string

const (
	// ModeIndexOnly generates the index if missing and stops.
	ModeIndexOnly Mode = "index_only"
	// ModeSingleChapter processes one chapter (explicit target or the next
	// unprocessed one) and stops.
	ModeSingleChapter Mode = "single_chapter"
	// ModeWholeBook loops until every chapter is processed.
	ModeWholeBook Mode = "whole_book"
)

// ErrorKind classifies a failed run for reporting.
type ErrorKind string

const (
	ErrorKindNone           ErrorKind = ""
	ErrorKindRateLimited    ErrorKind = "rate_limited"
	ErrorKindUpstream       ErrorKind = "upstream"
	ErrorKindMalformedIndex ErrorKind = "malformed_index"
	ErrorKindValidation     ErrorKind = "validation"
	ErrorKindNotFound       ErrorKind = "not_found"
	ErrorKindCanceled       ErrorKind = "canceled"
	ErrorKindInternal       ErrorKind = "internal"
)

// Classify maps an error to its kind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, providers.ErrRateLimited):
		return ErrorKindRateLimited
	case errors.Is(err, chain.ErrMalformedIndex):
		return ErrorKindMalformedIndex
	case errors.Is(err, providers.ErrUpstream):
		return ErrorKindUpstream
	case errors.Is(err, book.ErrValidation), errors.Is(err, book.ErrNoIndex):
		return ErrorKindValidation
	case errors.Is(err, book.ErrNotFound), errors.Is(err, book.ErrChapterNotFound):
		return ErrorKindNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindCanceled
	default:
		return ErrorKindInternal
	}
}

// Run is the mutable record of a single workflow execution.
type Run struct {
	BookID        string
	Mode          Mode
	TargetChapter string

	State     State
	ErrorKind ErrorKind
	Err       error
}

// NewRun creates a run in the initial state.
func NewRun(bookID string, mode Mode, targetChapter string) *Run {
	return &Run{
		BookID:        bookID,
		Mode:          mode,
		TargetChapter: targetChapter,
		State:         StateUninitialized,
	}
}

func (r *Run) fail(err error) error {
	r.State = StateFailed
	r.Err = err
	r.ErrorKind = Classify(err)
	return err
}
