package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/alonmar/books-gen/internal/api"
	"github.com/alonmar/books-gen/internal/jobs"
	"github.com/alonmar/books-gen/internal/svcctx"
)

// ListJobsResponse wraps the job listing.
type ListJobsResponse struct {
	Jobs []jobs.Record `json:"jobs"`
}

// ListJobsEndpoint handles GET /api/jobs.
type ListJobsEndpoint struct{}

func (e *ListJobsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/jobs", e.handler
}

func (e *ListJobsEndpoint) RequiresInit() bool { return true }

func (e *ListJobsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	tracker := svcctx.TrackerFrom(r.Context())
	if tracker == nil {
		writeError(w, http.StatusServiceUnavailable, "server not initialized")
		return
	}
	writeJSON(w, http.StatusOK, ListJobsResponse{Jobs: tracker.List()})
}

func (e *ListJobsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListJobsResponse
			if err := client.Get(cmd.Context(), "/api/jobs", &resp); err != nil {
				return err
			}
			return api.Output(resp.Jobs)
		},
	}
}

// GetJobEndpoint handles GET /api/jobs/{id}.
type GetJobEndpoint struct{}

func (e *GetJobEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/jobs/{id}", e.handler
}

func (e *GetJobEndpoint) RequiresInit() bool { return true }

func (e *GetJobEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	tracker := svcctx.TrackerFrom(r.Context())
	if tracker == nil {
		writeError(w, http.StatusServiceUnavailable, "server not initialized")
		return
	}

	rec, err := tracker.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (e *GetJobEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "job <id>",
		Short: "Poll a background job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var rec jobs.Record
			if err := client.Get(cmd.Context(), "/api/jobs/"+args[0], &rec); err != nil {
				return err
			}
			return api.Output(rec)
		},
	}
}
