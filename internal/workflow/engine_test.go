package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/alonmar/books-gen/internal/book"
	"github.com/alonmar/books-gen/internal/chain"
	"github.com/alonmar/books-gen/internal/providers"
)

const indexResponse = `{"chapters":[
	{"id":"1","title":"La llegada","description":"El protagonista llega al faro."},
	{"id":"2","title":"El hallazgo","description":"Aparece el diario."},
	{"id":"3","title":"La tormenta","description":"Todo se resuelve."}
]}`

func testEngine(t *testing.T, mock *providers.MockClient) (*Engine, *book.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	store, err := book.NewStore(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	ch := chain.New(mock, chain.WithLogger(logger))
	e := NewEngine(store, ch,
		WithLogger(logger),
		WithMaxChapters(10),
		WithWordsPerPage(250))
	return e, store
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func threeChapterBook(processed ...string) *book.Book {
	b := book.New("bk-1", "La Sombra del Faro", "Un guardafaros descubre un secreto.", book.StyleMisterio, 300)
	b.Index = book.Index{Chapters: []book.Chapter{
		{ID: "1", Title: "La llegada", Description: "El protagonista llega al faro."},
		{ID: "2", Title: "El hallazgo", Description: "Aparece el diario."},
		{ID: "3", Title: "La tormenta", Description: "Todo se resuelve."},
	}}
	for _, id := range processed {
		b.ProcessedChapters = append(b.ProcessedChapters, id)
		b.Chapter(id).Content = "Contenido del capitulo " + id + "."
	}
	return b
}

func TestExecute_IndexOnly(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = indexResponse
	e, store := testEngine(t, mock)

	b := book.New("bk-1", "T", "S", book.StyleMisterio, 300)
	if err := store.Create(b); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeIndexOnly, "")
	if err := e.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if run.State != StateDone {
		t.Errorf("state = %s, want done", run.State)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("index generation should be called once, got %d calls", mock.RequestCount())
	}

	got, err := store.Load("bk-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Index.Chapters) != 3 {
		t.Errorf("index not persisted: %+v", got.Index)
	}
	if len(got.ProcessedChapters) != 0 {
		t.Errorf("processed_chapters should stay empty, got %v", got.ProcessedChapters)
	}
	if got.IsCompleted {
		t.Error("book should not be completed")
	}
}

func TestExecute_IndexOnly_ExistingIndexNotRegenerated(t *testing.T) {
	mock := providers.NewMockClient()
	e, store := testEngine(t, mock)

	if err := store.Create(threeChapterBook()); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeIndexOnly, "")
	if err := e.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if mock.RequestCount() != 0 {
		t.Errorf("existing index must not be regenerated, got %d calls", mock.RequestCount())
	}
}

func TestExecute_SingleChapter_SelectsFirstUnprocessed(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		"Nuevo contenido del capitulo dos.", // draft
		"Resumen del libro.",                // summary
	}
	e, store := testEngine(t, mock)

	if err := store.Create(threeChapterBook("1")); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeSingleChapter, "")
	if err := e.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got, err := store.Load("bk-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Chapter("2").Content != "Nuevo contenido del capitulo dos." {
		t.Errorf("chapter 2 should be drafted, got %q", got.Chapter("2").Content)
	}
	if got.Chapter("3").Content != "" {
		t.Error("chapter 3 should be untouched in single-chapter mode")
	}
	if !got.IsProcessed("2") {
		t.Errorf("chapter 2 should be processed, got %v", got.ProcessedChapters)
	}

	reqs := mock.Requests()
	if len(reqs) == 0 || !strings.Contains(reqs[0].Messages[1].Content, `"El hallazgo"`) {
		t.Error("draft prompt should target chapter 2 (first unprocessed)")
	}
}

func TestExecute_UpstreamErrorKeepsPriorContent(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true
	mock.FailErr = providers.ErrUpstream
	e, store := testEngine(t, mock)

	if err := store.Create(threeChapterBook("1")); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeSingleChapter, "2")
	err := e.Execute(context.Background(), run)
	if !errors.Is(err, providers.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if run.State != StateFailed {
		t.Errorf("state = %s, want failed", run.State)
	}
	if run.ErrorKind != ErrorKindUpstream {
		t.Errorf("error kind = %s, want upstream", run.ErrorKind)
	}

	got, loadErr := store.Load("bk-1")
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if got.Chapter("1").Content != "Contenido del capitulo 1." {
		t.Error("chapter 1 content from the prior run must remain untouched")
	}
	if got.Chapter("2").Content != "" {
		t.Error("failed chapter must not gain content")
	}
}

func TestExecute_ContinuationAppendsToLastChapter(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "Y asi termina la historia."
	e, store := testEngine(t, mock)

	b := threeChapterBook("1", "2", "3")
	prior := b.Chapter("3").Content
	if err := store.Create(b); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeSingleChapter, "3")
	if err := e.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if run.State != StateDone {
		t.Errorf("state = %s, want done", run.State)
	}

	got, err := store.Load("bk-1")
	if err != nil {
		t.Fatal(err)
	}
	content := got.Chapter("3").Content
	if len(content) <= len(prior) {
		t.Errorf("continuation must grow the content, before %d after %d", len(prior), len(content))
	}
	if !strings.HasPrefix(content, prior+"\n\n") {
		t.Errorf("continuation must append after a blank line, got %q", content)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	userPrompt := reqs[0].Messages[1].Content
	if !strings.Contains(userPrompt, prior) {
		t.Error("continuation prompt should carry the existing chapter text")
	}
	if !strings.Contains(userPrompt, "final chapter") {
		t.Error("continuation prompt for the last chapter should carry the closing instruction")
	}
}

func TestExecute_WholeBook(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		indexResponse,
		"Capitulo uno.", "Resumen tras uno.",
		"Capitulo dos.", "Resumen tras dos.",
		"Capitulo tres.", "Resumen tras tres.",
	}
	e, store := testEngine(t, mock)

	if err := store.Create(book.New("bk-1", "T", "S", book.StyleFantasia, 100)); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeWholeBook, "")
	if err := e.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if run.State != StateDone {
		t.Errorf("state = %s, want done", run.State)
	}

	got, err := store.Load("bk-1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsCompleted {
		t.Error("book should be completed after a whole-book run")
	}
	if !got.AllProcessed() {
		t.Errorf("all chapters should be processed, got %v", got.ProcessedChapters)
	}
	for _, ch := range got.Index.Chapters {
		if ch.Content == "" {
			t.Errorf("chapter %s has no content", ch.ID)
		}
	}
	if got.Summary != "Resumen tras tres." {
		t.Errorf("summary should track the latest chapter, got %q", got.Summary)
	}
}

func TestExecute_WholeBook_FailsPartway(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{"Capitulo uno.", "Resumen tras uno."}
	mock.FailAfter = 2
	mock.FailErr = providers.ErrRateLimited
	e, store := testEngine(t, mock)

	if err := store.Create(threeChapterBook()); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeWholeBook, "")
	err := e.Execute(context.Background(), run)
	if !errors.Is(err, providers.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if run.ErrorKind != ErrorKindRateLimited {
		t.Errorf("error kind = %s", run.ErrorKind)
	}

	got, loadErr := store.Load("bk-1")
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if got.Chapter("1").Content != "Capitulo uno." {
		t.Error("partial progress must be kept on failure")
	}
	if got.IsCompleted {
		t.Error("failed run must not complete the book")
	}
}

func TestExecute_MalformedIndex(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "I am sorry, I cannot do that."
	e, store := testEngine(t, mock)

	if err := store.Create(book.New("bk-1", "T", "S", book.StyleTerror, 50)); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeIndexOnly, "")
	err := e.Execute(context.Background(), run)
	if !errors.Is(err, chain.ErrMalformedIndex) {
		t.Fatalf("expected ErrMalformedIndex, got %v", err)
	}
	if run.ErrorKind != ErrorKindMalformedIndex {
		t.Errorf("error kind = %s", run.ErrorKind)
	}

	got, loadErr := store.Load("bk-1")
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if got.HasIndex() {
		t.Error("malformed output must not persist an index")
	}
}

func TestExecute_OversizedIndexRejected(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"chapters":[`)
	for i := 1; i <= 12; i++ {
		if i > 1 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"id":"%d","title":"Capitulo %d","description":"Parte %d."}`, i, i, i)
	}
	sb.WriteString(`]}`)

	mock := providers.NewMockClient()
	mock.ResponseText = sb.String()

	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	store, err := book.NewStore(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(store, chain.New(mock, chain.WithLogger(logger)),
		WithLogger(logger),
		WithMaxChapters(3))

	if err := store.Create(book.New("bk-1", "T", "S", book.StyleMisterio, 100)); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeIndexOnly, "")
	err = e.Execute(context.Background(), run)
	if !errors.Is(err, chain.ErrMalformedIndex) {
		t.Fatalf("expected ErrMalformedIndex, got %v", err)
	}
	if run.ErrorKind != ErrorKindMalformedIndex {
		t.Errorf("error kind = %s", run.ErrorKind)
	}

	got, loadErr := store.Load("bk-1")
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if got.HasIndex() {
		t.Errorf("oversized index must not be persisted, got %d chapters", len(got.Index.Chapters))
	}
}

func TestExecute_WholeBookWithTargetChapter(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		"Capitulo dos.", "Resumen tras dos.",
		"Capitulo uno.", "Resumen tras uno.",
		"Capitulo tres.", "Resumen tras tres.",
	}
	e, store := testEngine(t, mock)

	if err := store.Create(threeChapterBook()); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeWholeBook, "2")
	if err := e.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if run.State != StateDone {
		t.Errorf("state = %s, want done", run.State)
	}

	got, err := store.Load("bk-1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsCompleted {
		t.Error("book should be completed after a whole-book run")
	}
	if got.Chapter("2").Content != "Capitulo dos." {
		t.Errorf("targeted chapter should be drafted exactly once, got %q", got.Chapter("2").Content)
	}
	for _, ch := range got.Index.Chapters {
		if ch.Content == "" {
			t.Errorf("chapter %s has no content", ch.ID)
		}
	}
}

func TestExecute_SummaryFailureDoesNotFailRun(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{"Capitulo uno."}
	mock.FailAfter = 1
	mock.FailErr = providers.ErrUpstream
	e, store := testEngine(t, mock)

	if err := store.Create(threeChapterBook()); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeSingleChapter, "")
	if err := e.Execute(context.Background(), run); err != nil {
		t.Fatalf("summary failure should not fail the run: %v", err)
	}

	got, loadErr := store.Load("bk-1")
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if got.Chapter("1").Content != "Capitulo uno." {
		t.Error("draft should be persisted")
	}
	if got.Summary != "" {
		t.Errorf("summary should stay empty when the summary call fails, got %q", got.Summary)
	}
}

func TestExecute_UnknownBook(t *testing.T) {
	mock := providers.NewMockClient()
	e, _ := testEngine(t, mock)

	run := NewRun("missing", ModeWholeBook, "")
	err := e.Execute(context.Background(), run)
	if !errors.Is(err, book.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if run.ErrorKind != ErrorKindNotFound {
		t.Errorf("error kind = %s", run.ErrorKind)
	}
}

func TestExecute_UnknownTargetChapter(t *testing.T) {
	mock := providers.NewMockClient()
	e, store := testEngine(t, mock)

	if err := store.Create(threeChapterBook()); err != nil {
		t.Fatal(err)
	}

	run := NewRun("bk-1", ModeSingleChapter, "99")
	err := e.Execute(context.Background(), run)
	if !errors.Is(err, book.ErrChapterNotFound) {
		t.Fatalf("expected ErrChapterNotFound, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ErrorKindNone},
		{providers.ErrRateLimited, ErrorKindRateLimited},
		{providers.ErrUpstream, ErrorKindUpstream},
		{chain.ErrMalformedIndex, ErrorKindMalformedIndex},
		{book.ErrValidation, ErrorKindValidation},
		{book.ErrNotFound, ErrorKindNotFound},
		{context.Canceled, ErrorKindCanceled},
		{errors.New("boom"), ErrorKindInternal},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
