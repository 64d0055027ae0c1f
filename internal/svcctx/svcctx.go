// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/alonmar/books-gen/internal/book"
	"github.com/alonmar/books-gen/internal/config"
	"github.com/alonmar/books-gen/internal/home"
	"github.com/alonmar/books-gen/internal/jobs"
	"github.com/alonmar/books-gen/internal/prompts"
	"github.com/alonmar/books-gen/internal/providers"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Store         *book.Store
	Tracker       *jobs.Tracker
	Runner        *jobs.Runner
	Registry      *providers.Registry
	ConfigManager *config.Manager
	Catalog       *prompts.Catalog
	Logger        *slog.Logger
	Home          *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// StoreFrom extracts the book store from context.
func StoreFrom(ctx context.Context) *book.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Store
	}
	return nil
}

// TrackerFrom extracts the job tracker from context.
func TrackerFrom(ctx context.Context) *jobs.Tracker {
	if s := ServicesFrom(ctx); s != nil {
		return s.Tracker
	}
	return nil
}

// RunnerFrom extracts the job runner from context.
func RunnerFrom(ctx context.Context) *jobs.Runner {
	if s := ServicesFrom(ctx); s != nil {
		return s.Runner
	}
	return nil
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigManager
	}
	return nil
}

// CatalogFrom extracts the prompt catalog from context.
func CatalogFrom(ctx context.Context) *prompts.Catalog {
	if s := ServicesFrom(ctx); s != nil {
		return s.Catalog
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
