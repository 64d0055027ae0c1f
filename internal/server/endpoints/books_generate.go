package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/alonmar/books-gen/internal/api"
	"github.com/alonmar/books-gen/internal/jobs"
	"github.com/alonmar/books-gen/internal/svcctx"
	"github.com/alonmar/books-gen/internal/workflow"
)

// GenerateBookEndpoint handles POST /api/books/{id}/generate. It queues a
// whole-book run: index if missing, then every remaining chapter.
type GenerateBookEndpoint struct{}

func (e *GenerateBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/books/{id}/generate", e.handler
}

func (e *GenerateBookEndpoint) RequiresInit() bool { return true }

func (e *GenerateBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	runner := svcctx.RunnerFrom(r.Context())
	if runner == nil {
		writeError(w, http.StatusServiceUnavailable, "server not initialized")
		return
	}

	rec, err := runner.Submit(r.Context(), jobs.TypeGenerateBook, workflow.ModeWholeBook, id, "")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, rec)
}

func (e *GenerateBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <id>",
		Short: "Queue a whole-book generation run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var rec jobs.Record
			if err := client.Post(cmd.Context(), "/api/books/"+args[0]+"/generate", nil, &rec); err != nil {
				return err
			}
			return api.Output(rec)
		},
	}
}

// GenerateChapterEndpoint handles POST /api/books/{id}/chapters/{chapterID}.
// A chapter without content is drafted; one with content is continued.
type GenerateChapterEndpoint struct{}

func (e *GenerateChapterEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/books/{id}/chapters/{chapterID}", e.handler
}

func (e *GenerateChapterEndpoint) RequiresInit() bool { return true }

func (e *GenerateChapterEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	chapterID := r.PathValue("chapterID")
	runner := svcctx.RunnerFrom(r.Context())
	if runner == nil {
		writeError(w, http.StatusServiceUnavailable, "server not initialized")
		return
	}

	rec, err := runner.Submit(r.Context(), jobs.TypeGenerateChapter, workflow.ModeSingleChapter, id, chapterID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, rec)
}

func (e *GenerateChapterEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "chapter <book-id> <chapter-id>",
		Short: "Queue generation of a single chapter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var rec jobs.Record
			if err := client.Post(cmd.Context(), "/api/books/"+args[0]+"/chapters/"+args[1], nil, &rec); err != nil {
				return err
			}
			return api.Output(rec)
		},
	}
}
