// Package server exposes the tool registry and the query catalog over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quenault/pathmine/internal/catalog"
	"github.com/quenault/pathmine/internal/registry"
)

// Server is the pathmine HTTP service.
type Server struct {
	registry *registry.Registry
	catalog  *catalog.Catalog
	listen   string
	release  string
	watch    bool
	toolsDir string
	logger   *slog.Logger
}

// Config holds configuration for the HTTP service.
type Config struct {
	Registry *registry.Registry
	Catalog  *catalog.Catalog
	Listen   string
	Release  string
	Watch    bool
	ToolsDir string
	Logger   *slog.Logger
}

// New creates a server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		registry: cfg.Registry,
		catalog:  cfg.Catalog,
		listen:   cfg.Listen,
		release:  cfg.Release,
		watch:    cfg.Watch,
		toolsDir: cfg.ToolsDir,
		logger:   logger,
	}
}

// Serve starts the HTTP service and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting pathmine server", "addr", s.listen, "tools", s.registry.Count())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.listen,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start manifest watcher if enabled
	if s.watch {
		eg.Go(func() error {
			return s.watchManifests(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
