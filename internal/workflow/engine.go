package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alonmar/books-gen/internal/book"
	"github.com/alonmar/books-gen/internal/chain"
	"github.com/alonmar/books-gen/internal/prompts/chapter"
	"github.com/alonmar/books-gen/internal/prompts/continuation"
	"github.com/alonmar/books-gen/internal/prompts/index"
	"github.com/alonmar/books-gen/internal/prompts/summary"
)

// Engine executes workflow runs against a store and an LLM chain.
type Engine struct {
	store        *book.Store
	chain        *chain.Chain
	logger       *slog.Logger
	maxChapters  int
	wordsPerPage int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithMaxChapters bounds the size of generated indexes.
func WithMaxChapters(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxChapters = n
		}
	}
}

// WithWordsPerPage sets the page-to-word conversion used for chapter
// length targets.
func WithWordsPerPage(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.wordsPerPage = n
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(store *book.Store, ch *chain.Chain, opts ...EngineOption) *Engine {
	e := &Engine{
		store:        store,
		chain:        ch,
		logger:       slog.Default(),
		maxChapters:  10,
		wordsPerPage: 250,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute drives a run to a terminal state. The book record is saved after
// every content-bearing transition, so a failed run keeps everything
// written before the failure.
func (e *Engine) Execute(ctx context.Context, run *Run) error {
	log := e.logger.With("book_id", run.BookID, "mode", run.Mode)

	b, err := e.store.Load(run.BookID)
	if err != nil {
		return run.fail(err)
	}

	// Index phase. Skipped entirely when the index already exists.
	if !b.HasIndex() {
		run.State = StateIndexPending
		log.Info("generating index")
		if err := e.generateIndex(ctx, b); err != nil {
			return run.fail(err)
		}
		if err := e.store.Save(b); err != nil {
			return run.fail(err)
		}
	}
	run.State = StateIndexReady

	if run.Mode == ModeIndexOnly {
		run.State = StateDone
		log.Info("index ready", "chapters", len(b.Index.Chapters))
		return nil
	}

	for {
		run.State = StateChapterSelect
		chapterID, err := e.selectChapter(b, run)
		if err != nil {
			return run.fail(err)
		}

		if err := e.processChapter(ctx, run, b, chapterID); err != nil {
			return run.fail(err)
		}
		// The explicit target binds the first pass only; later passes
		// resume index order.
		run.TargetChapter = ""

		if run.Mode == ModeSingleChapter || b.AllProcessed() {
			break
		}
		if err := ctx.Err(); err != nil {
			return run.fail(err)
		}
	}

	if b.AllProcessed() && !b.IsCompleted {
		b.IsCompleted = true
		if err := e.store.Save(b); err != nil {
			return run.fail(err)
		}
	}

	run.State = StateDone
	log.Info("run complete", "processed", len(b.ProcessedChapters), "completed", b.IsCompleted)
	return nil
}

// selectChapter resolves the chapter a pass works on: the explicit target
// when the run has one, otherwise the first unprocessed chapter in index
// order, falling back to the last chapter when everything is processed.
func (e *Engine) selectChapter(b *book.Book, run *Run) (string, error) {
	if run.TargetChapter != "" {
		if b.Chapter(run.TargetChapter) == nil {
			return "", fmt.Errorf("%w: %s", book.ErrChapterNotFound, run.TargetChapter)
		}
		return run.TargetChapter, nil
	}
	return b.NextChapter()
}

// processChapter drafts a chapter without content or continues one that
// already has text.
func (e *Engine) processChapter(ctx context.Context, run *Run, b *book.Book, chapterID string) error {
	ch := b.Chapter(chapterID)
	if ch == nil {
		return fmt.Errorf("%w: %s", book.ErrChapterNotFound, chapterID)
	}

	if ch.Content == "" {
		run.State = StateChapterDraft
		return e.draftChapter(ctx, b, ch)
	}
	run.State = StateChapterContinue
	return e.continueChapter(ctx, b, ch)
}

func (e *Engine) generateIndex(ctx context.Context, b *book.Book) error {
	raw, err := e.chain.JSON(ctx,
		index.SystemPrompt(),
		index.UserPrompt(index.Params{
			Title:       b.Title,
			Synopsis:    b.Synopsis,
			Style:       string(b.Style),
			TargetPages: b.TargetPages,
			MaxChapters: e.maxChapters,
		}),
		index.Schema)
	if err != nil {
		return err
	}

	var result index.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("%w: %v", chain.ErrMalformedIndex, err)
	}
	if len(result.Chapters) > e.maxChapters {
		return fmt.Errorf("%w: %d chapters exceeds the limit of %d",
			chain.ErrMalformedIndex, len(result.Chapters), e.maxChapters)
	}

	idx := book.Index{Chapters: make([]book.Chapter, 0, len(result.Chapters))}
	for _, stub := range result.Chapters {
		idx.Chapters = append(idx.Chapters, book.Chapter{
			ID:          strings.TrimSpace(stub.ID),
			Title:       strings.TrimSpace(stub.Title),
			Description: strings.TrimSpace(stub.Description),
		})
	}
	if err := book.ValidateIndex(idx); err != nil {
		return fmt.Errorf("%w: %v", chain.ErrMalformedIndex, err)
	}

	b.Index = idx
	return nil
}

func (e *Engine) draftChapter(ctx context.Context, b *book.Book, ch *book.Chapter) error {
	log := e.logger.With("book_id", b.ID, "chapter_id", ch.ID)
	log.Info("drafting chapter", "title", ch.Title)

	text, err := e.chain.Text(ctx,
		chapter.SystemPrompt(),
		chapter.UserPrompt(chapter.Params{
			Title:              b.Title,
			Synopsis:           b.Synopsis,
			Style:              string(b.Style),
			Summary:            b.Summary,
			IndexOutline:       indexOutline(b),
			ChapterNumber:      b.ChapterPosition(ch.ID),
			ChapterTitle:       ch.Title,
			ChapterDescription: ch.Description,
			TargetWords:        e.targetWords(b),
			IsLastChapter:      b.IsLastChapter(ch.ID),
		}))
	if err != nil {
		return err
	}

	ch.Content = text
	if err := b.MarkProcessed(ch.ID); err != nil {
		return err
	}
	if err := e.store.Save(b); err != nil {
		return err
	}

	// The running summary keeps later chapters consistent with earlier
	// ones. Losing it degrades quality but never fails the run.
	if err := e.updateSummary(ctx, b, text); err != nil {
		log.Warn("summary update failed", "error", err)
		return nil
	}
	return e.store.Save(b)
}

func (e *Engine) continueChapter(ctx context.Context, b *book.Book, ch *book.Chapter) error {
	log := e.logger.With("book_id", b.ID, "chapter_id", ch.ID)
	log.Info("continuing chapter", "title", ch.Title, "existing_len", len(ch.Content))

	text, err := e.chain.Text(ctx,
		continuation.SystemPrompt(),
		continuation.UserPrompt(continuation.Params{
			Title:              b.Title,
			Synopsis:           b.Synopsis,
			ChapterTitle:       ch.Title,
			ChapterDescription: ch.Description,
			IndexOutline:       indexOutline(b),
			CurrentContent:     ch.Content,
			IsLastChapter:      b.IsLastChapter(ch.ID),
		}))
	if err != nil {
		return err
	}

	// Continuation appends; existing text is never replaced.
	ch.Content = ch.Content + "\n\n" + text
	if err := b.MarkProcessed(ch.ID); err != nil {
		return err
	}
	return e.store.Save(b)
}

// updateSummary creates the running summary from the first chapter and
// extends it with each later one.
func (e *Engine) updateSummary(ctx context.Context, b *book.Book, chapterText string) error {
	params := summary.Params{
		Title:          b.Title,
		Synopsis:       b.Synopsis,
		Style:          string(b.Style),
		Summary:        b.Summary,
		ChapterContent: chapterText,
	}

	var user string
	if b.Summary == "" {
		user = summary.UserPrompt(params)
	} else {
		user = summary.ExtendPrompt(params)
	}

	text, err := e.chain.Text(ctx, summary.SystemPrompt(), user)
	if err != nil {
		return err
	}
	b.Summary = text
	return nil
}

// targetWords derives the per-chapter word budget from the page target.
func (e *Engine) targetWords(b *book.Book) int {
	chapters := len(b.Index.Chapters)
	if chapters == 0 || b.TargetPages <= 0 {
		return e.wordsPerPage * 4
	}
	words := b.TargetPages * e.wordsPerPage / chapters
	if words < 200 {
		words = 200
	}
	return words
}

// indexOutline renders the index as a numbered outline for prompt context.
func indexOutline(b *book.Book) string {
	var sb strings.Builder
	for i, ch := range b.Index.Chapters {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, ch.Title, ch.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}
