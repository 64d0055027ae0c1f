package main

import (
	"github.com/spf13/cobra"

	"github.com/alonmar/books-gen/internal/api"
	"github.com/alonmar/books-gen/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "booksgen",
	Short: "LLM-powered book generation service",
	Long: `booksgen generates complete books from a title, synopsis and literary
style using an LLM provider.

The workflow:
  - Index generation (chapter titles and descriptions as strict JSON)
  - Chapter drafting in index order, with a running summary for context
  - Continuation of chapters that already have content
  - Export to markdown, HTML or plain text`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.booksgen/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "booksgen home directory (default: ~/.booksgen)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
