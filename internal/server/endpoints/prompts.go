package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/alonmar/books-gen/internal/api"
	"github.com/alonmar/books-gen/internal/prompts"
	"github.com/alonmar/books-gen/internal/svcctx"
)

// ListPromptsResponse wraps the embedded prompt listing.
type ListPromptsResponse struct {
	Prompts []prompts.EmbeddedPrompt `json:"prompts"`
}

// ListPromptsEndpoint handles GET /api/prompts. It exposes the embedded
// prompt templates with their variables and content hashes.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return true }

func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	catalog := svcctx.CatalogFrom(r.Context())
	if catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "server not initialized")
		return
	}
	writeJSON(w, http.StatusOK, ListPromptsResponse{Prompts: catalog.List()})
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List embedded prompt templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListPromptsResponse
			if err := client.Get(cmd.Context(), "/api/prompts", &resp); err != nil {
				return err
			}
			return api.Output(resp.Prompts)
		},
	}
}
