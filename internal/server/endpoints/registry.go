package endpoints

import (
	"github.com/alonmar/books-gen/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Book endpoints
		&CreateBookEndpoint{},
		&ListBooksEndpoint{},
		&GetBookEndpoint{},
		&DeleteBookEndpoint{},
		&GenerateBookEndpoint{},
		&GenerateChapterEndpoint{},
		&ExportBookEndpoint{},

		// Job endpoints
		&ListJobsEndpoint{},
		&GetJobEndpoint{},

		// Prompt endpoints
		&ListPromptsEndpoint{},
	}
}
