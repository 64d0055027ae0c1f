package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/alonmar/books-gen/internal/api"
	"github.com/alonmar/books-gen/internal/book"
	"github.com/alonmar/books-gen/internal/svcctx"
)

// ListBooksResponse wraps the book summary listing.
type ListBooksResponse struct {
	Books []book.Summary `json:"books"`
}

// ListBooksEndpoint handles GET /api/books.
type ListBooksEndpoint struct{}

func (e *ListBooksEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/books", e.handler
}

func (e *ListBooksEndpoint) RequiresInit() bool { return true }

func (e *ListBooksEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "server not initialized")
		return
	}

	summaries, err := store.List()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListBooksResponse{Books: summaries})
}

func (e *ListBooksEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all books",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListBooksResponse
			if err := client.Get(cmd.Context(), "/api/books", &resp); err != nil {
				return err
			}
			return api.Output(resp.Books)
		},
	}
}
