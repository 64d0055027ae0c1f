package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alonmar/books-gen/internal/api"
	"github.com/alonmar/books-gen/internal/book"
	"github.com/alonmar/books-gen/internal/jobs"
	"github.com/alonmar/books-gen/internal/svcctx"
	"github.com/alonmar/books-gen/internal/workflow"
)

// CreateBookRequest is the payload for POST /api/books.
type CreateBookRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Synopsis    string `json:"synopsis"`
	Style       string `json:"style"`
	TargetPages int    `json:"target_pages"`
}

// CreateBookResponse returns the created record and the queued
// index-generation job.
type CreateBookResponse struct {
	Book *book.Book  `json:"book"`
	Job  jobs.Record `json:"job"`
}

// CreateBookEndpoint handles POST /api/books.
type CreateBookEndpoint struct{}

func (e *CreateBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/books", e.handler
}

func (e *CreateBookEndpoint) RequiresInit() bool { return true }

func (e *CreateBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Synopsis = strings.TrimSpace(req.Synopsis)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Synopsis == "" {
		writeError(w, http.StatusBadRequest, "synopsis is required")
		return
	}
	style := book.Style(req.Style)
	if !style.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid style %q, valid styles: %v", req.Style, book.Styles()))
		return
	}
	if req.TargetPages <= 0 {
		writeError(w, http.StatusBadRequest, "target_pages must be positive")
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	store := svcctx.StoreFrom(r.Context())
	runner := svcctx.RunnerFrom(r.Context())
	if store == nil || runner == nil {
		writeError(w, http.StatusServiceUnavailable, "server not initialized")
		return
	}

	b := book.New(req.ID, req.Title, req.Synopsis, style, req.TargetPages)
	if err := store.Create(b); err != nil {
		writeDomainError(w, err)
		return
	}

	rec, err := runner.Submit(r.Context(), jobs.TypeGenerateIndex, workflow.ModeIndexOnly, b.ID, "")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, CreateBookResponse{Book: b, Job: rec})
}

func (e *CreateBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		id          string
		style       string
		targetPages int
	)
	cmd := &cobra.Command{
		Use:   "create <title> <synopsis>",
		Short: "Create a book and queue index generation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := CreateBookRequest{
				ID:          id,
				Title:       args[0],
				Synopsis:    args[1],
				Style:       style,
				TargetPages: targetPages,
			}
			var resp CreateBookResponse
			if err := client.Post(cmd.Context(), "/api/books", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Book id (generated when empty)")
	cmd.Flags().StringVar(&style, "style", "misterio", "Literary style")
	cmd.Flags().IntVar(&targetPages, "pages", 100, "Approximate page target")
	return cmd
}
