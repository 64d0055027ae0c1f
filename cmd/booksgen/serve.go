package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alonmar/books-gen/internal/config"
	"github.com/alonmar/books-gen/internal/home"
	"github.com/alonmar/books-gen/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the booksgen server",
	Long: `Start the booksgen HTTP server.

Generation runs as background jobs; poll them via /api/jobs/{id}.
The config file is watched and LLM providers are hot-reloaded on change.

Examples:
  booksgen serve                  # Start on default port 8000
  booksgen serve --port 3000      # Start on custom port
  booksgen serve --host 0.0.0.0   # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		host := serveHost
		port := servePort
		if !cmd.Flags().Changed("host") && cm.Get().Server.Host != "" {
			host = cm.Get().Server.Host
		}
		if !cmd.Flags().Changed("port") && cm.Get().Server.Port != 0 {
			port = cm.Get().Server.Port
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			Home:          h,
			ConfigManager: cm,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
