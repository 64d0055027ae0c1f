package main

import (
	"github.com/spf13/cobra"

	"github.com/alonmar/books-gen/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running booksgen server via HTTP.

These commands require a running server (booksgen serve).
Use --server to specify a custom server URL.

Examples:
  booksgen api health                       # Check server health
  booksgen api books list                   # List all books
  booksgen api books create "T" "synopsis"  # Create a book
  booksgen api books generate <id>          # Queue a whole-book run
  booksgen api job <id>                     # Poll a background job`,
}

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Book management commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8000", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Books as subcommand group
	booksCmd.AddCommand((&endpoints.CreateBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.ListBooksEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.GetBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.DeleteBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.GenerateBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.GenerateChapterEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.ExportBookEndpoint{}).Command(getServerURL))

	// Job polling at top level of api
	apiCmd.AddCommand((&endpoints.ListJobsEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.GetJobEndpoint{}).Command(getServerURL))

	// Prompt inspection
	apiCmd.AddCommand((&endpoints.ListPromptsEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(booksCmd)
	rootCmd.AddCommand(apiCmd)
}
