// Package server wires the book store, provider registry, workflow engine
// and job runner into an http.Server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/alonmar/books-gen/internal/api"
	"github.com/alonmar/books-gen/internal/book"
	"github.com/alonmar/books-gen/internal/chain"
	"github.com/alonmar/books-gen/internal/config"
	"github.com/alonmar/books-gen/internal/home"
	"github.com/alonmar/books-gen/internal/jobs"
	"github.com/alonmar/books-gen/internal/prompts"
	chapterprompts "github.com/alonmar/books-gen/internal/prompts/chapter"
	continuationprompts "github.com/alonmar/books-gen/internal/prompts/continuation"
	indexprompts "github.com/alonmar/books-gen/internal/prompts/index"
	summaryprompts "github.com/alonmar/books-gen/internal/prompts/summary"
	"github.com/alonmar/books-gen/internal/providers"
	"github.com/alonmar/books-gen/internal/server/endpoints"
	"github.com/alonmar/books-gen/internal/svcctx"
	"github.com/alonmar/books-gen/internal/workflow"
)

// Server is the booksgen HTTP server.
type Server struct {
	httpServer *http.Server
	store      *book.Store
	tracker    *jobs.Tracker
	runner     *jobs.Runner
	registry   *providers.Registry
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8000)
	Port int
	// Home is the application home directory
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// LLMClient overrides the configured default provider when set.
	// Used by tests to avoid real provider credentials.
	LLMClient providers.LLMClient
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}

	appCfg := cfg.ConfigManager.Get()

	store, err := book.NewStore(cfg.Home.BooksPath(), cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create book store: %w", err)
	}

	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)
	registry.Reload(appCfg.ToProviderRegistryConfig())

	cfg.ConfigManager.OnChange(func(c *config.Config) {
		registry.Reload(c.ToProviderRegistryConfig())
		cfg.Logger.Info("provider registry reloaded from config")
	})

	client := cfg.LLMClient
	if client == nil {
		var err error
		client, err = registry.GetLLM(appCfg.Defaults.LLMProvider)
		if err != nil {
			return nil, fmt.Errorf("default LLM provider %q not available: %w", appCfg.Defaults.LLMProvider, err)
		}
	}

	engine := workflow.NewEngine(store,
		chain.New(client,
			chain.WithTemperature(appCfg.Defaults.Temperature),
			chain.WithLogger(cfg.Logger)),
		workflow.WithLogger(cfg.Logger),
		workflow.WithMaxChapters(appCfg.Defaults.MaxChapters),
		workflow.WithWordsPerPage(appCfg.Defaults.WordsPerPage))

	tracker := jobs.NewTracker(
		jobs.WithTTL(time.Duration(appCfg.Defaults.JobTTLMinutes)*time.Minute),
		jobs.WithLogger(cfg.Logger))
	runner := jobs.NewRunner(store, engine, tracker, cfg.Logger)

	catalog := prompts.NewCatalog()
	indexprompts.RegisterPrompts(catalog)
	chapterprompts.RegisterPrompts(catalog)
	continuationprompts.RegisterPrompts(catalog)
	summaryprompts.RegisterPrompts(catalog)

	s := &Server{
		store:     store,
		tracker:   tracker,
		runner:    runner,
		registry:  registry,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		services: &svcctx.Services{
			Store:         store,
			Tracker:       tracker,
			Runner:        runner,
			Registry:      registry,
			ConfigManager: cfg.ConfigManager,
			Catalog:       catalog,
			Logger:        cfg.Logger,
			Home:          cfg.Home,
		},
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs, then shuts down gracefully, waiting for in-flight
// generation runs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	// Expire finished job records on a schedule.
	s.tracker.StartSweeper(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown: stop accepting requests, then wait
// for running generation jobs so no book is left mid-save.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.logger.Info("waiting for running generation jobs")
	s.runner.Wait()

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Store returns the book store.
func (s *Server) Store() *book.Store {
	return s.store
}

// Tracker returns the job tracker.
func (s *Server) Tracker() *jobs.Tracker {
	return s.tracker
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Handler returns the fully wired HTTP handler. Used by tests to serve
// requests without binding a port.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := svcctx.WithServices(r.Context(), s.services)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil || s.runner == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
