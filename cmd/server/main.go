// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Command docparse-server serves document upload and extraction over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/leseb/docparse/pkg/adapters/http"
	"github.com/leseb/docparse/pkg/config"
	"github.com/leseb/docparse/pkg/extractor"
	"github.com/leseb/docparse/pkg/filestore"
	_ "github.com/leseb/docparse/pkg/filestore/filesystem"
	_ "github.com/leseb/docparse/pkg/filestore/memory"
	_ "github.com/leseb/docparse/pkg/filestore/s3"
	"github.com/leseb/docparse/pkg/observability/logging"
	"github.com/leseb/docparse/pkg/pipeline"
	"github.com/leseb/docparse/pkg/storage"
	_ "github.com/leseb/docparse/pkg/storage/memory"
	_ "github.com/leseb/docparse/pkg/storage/postgres"
	_ "github.com/leseb/docparse/pkg/storage/sqlite"
)

var (
	// Version is set via ldflags during build
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(serve())
}

func serve() int {
	// Parse command-line flags
	configPath := flag.String("config", "docparse.yaml", "Path to configuration file")
	port := flag.Int("port", 0, "HTTP port to listen on (overrides config)")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	// Print version
	if *version {
		fmt.Printf("docparse server\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		return 0
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	var loadErr error
	if err != nil {
		// If config file doesn't exist, use defaults
		loadErr = err
		cfg = config.Default()
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	// Uploads need a file store.
	if cfg.Source.Type == config.SourceLocal {
		cfg.Source.Type = "memory"
	}

	// Initialize logger
	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	logger.Info("Starting docparse server",
		"version", Version,
		"build_time", BuildTime)
	if loadErr != nil {
		logger.Warn("Failed to load config, using defaults", "error", loadErr)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		return 1
	}

	initCtx := context.Background()

	// Initialize file store
	files, err := filestore.Providers.New(initCtx, cfg.Source.Type, cfg.SourceParams())
	if err != nil {
		logger.Error("Failed to initialize file store", "error", err)
		return 1
	}
	defer files.Close(context.Background())
	logger.Info("Initialized file store", "type", cfg.Source.Type)

	// Initialize result store
	var results storage.ResultStore
	if cfg.Results.Type != config.ResultsNone {
		results, err = storage.Providers.New(initCtx, cfg.Results.Type, cfg.ResultParams())
		if err != nil {
			logger.Error("Failed to initialize result store", "error", err)
			return 1
		}
		defer results.Close()
		logger.Info("Initialized result store", "type", cfg.Results.Type)
	}

	runner := pipeline.Runner{
		Logger:  logger.Logger,
		Workers: cfg.Extraction.Workers,
	}
	runner.ChunkSize, runner.ChunkOverlap = cfg.Extraction.ChunkRunes()
	if cfg.Extraction.Format != "" {
		runner.FormatOverride, _ = extractor.FromName(cfg.Extraction.Format)
	}

	// Initialize HTTP adapter
	handler := httpAdapter.New(logger, httpAdapter.Options{
		Files:          files,
		Results:        results,
		Runner:         runner,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal or a listener failure
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server error", "error", err)
			return 1
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
		return 1
	}

	logger.Info("Server stopped gracefully")
	return 0
}
