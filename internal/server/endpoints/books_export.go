package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/alonmar/books-gen/internal/api"
	"github.com/alonmar/books-gen/internal/book"
	"github.com/alonmar/books-gen/internal/export"
	"github.com/alonmar/books-gen/internal/svcctx"
)

// ExportBookEndpoint handles GET /api/books/{id}/export. The rendered
// document is streamed as a download; nothing is written server-side.
type ExportBookEndpoint struct{}

func (e *ExportBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/books/{id}/export", e.handler
}

func (e *ExportBookEndpoint) RequiresInit() bool { return true }

func (e *ExportBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "server not initialized")
		return
	}

	b, err := store.Load(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	data, err := export.Render(b, format)
	if err != nil {
		// Nothing to export before the index exists.
		if errors.Is(err, book.ErrNoIndex) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"."+format.Extension()))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (e *ExportBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a book as markdown, html or text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			data, err := client.GetRaw(cmd.Context(), "/api/books/"+args[0]+"/export?format="+format)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "Export format: markdown, html or text")
	cmd.Flags().StringVarP(&output, "output-file", "f", "", "Write to file instead of stdout")
	return cmd
}
