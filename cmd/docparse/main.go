// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Command docparse extracts plain text and metadata from documents.
//
//	docparse report.pdf notes.md data.csv
//	docparse -output json -results sqlite -dsn results.db *.docx
//	docparse -source s3 -ingest ./inbox/*
//	docparse -source filesystem -all
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

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

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // at least one document failed
	exitUsage  = 2
)

const defaultConfigPath = "docparse.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	format     string
	source     string
	ingest     bool
	all        bool
	results    string
	dsn        string
	output     string
	workers    int
	logLevel   string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("docparse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: docparse [flags] <path|file-id>...\n\nFlags:\n")
		fs.PrintDefaults()
	}

	o := &options{}
	fs.StringVar(&o.configPath, "config", defaultConfigPath, "Path to configuration file")
	fs.StringVar(&o.format, "format", "", "Force a format (pdf, docx, xlsx, pptx, html, csv, json, xml, txt, md) instead of detecting it")
	fs.StringVar(&o.source, "source", "", "Document source: local, memory, filesystem or s3")
	fs.BoolVar(&o.ingest, "ingest", false, "Upload the given local files to the source store before extracting")
	fs.BoolVar(&o.all, "all", false, "Extract every file in the source store")
	fs.StringVar(&o.results, "results", "", "Result store: none, memory, sqlite or postgres")
	fs.StringVar(&o.dsn, "dsn", "", "Result store connection string")
	fs.StringVar(&o.output, "output", "text", "Output format: text or json")
	fs.IntVar(&o.workers, "workers", 0, "Documents processed in parallel")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs.Args(), nil
}

// loadConfig reads the config file and applies flag overrides. A missing
// default config file is not an error.
func loadConfig(o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		if o.configPath != defaultConfigPath || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.Default()
	}

	if o.format != "" {
		cfg.Extraction.Format = o.format
	}
	if o.source != "" {
		cfg.Source.Type = o.source
	}
	if o.results != "" {
		cfg.Results.Type = o.results
	}
	if o.dsn != "" {
		cfg.Results.DSN = o.dsn
	}
	if o.workers != 0 {
		cfg.Extraction.Workers = o.workers
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if cfg.Results.Type == "sqlite" && cfg.Results.DSN == "" {
		cfg.Results.DSN = "docparse.db"
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, paths, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if o.version {
		fmt.Fprintf(stdout, "docparse\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		return exitOK
	}
	if o.output != "text" && o.output != "json" {
		fmt.Fprintf(stderr, "unknown output format %q\n", o.output)
		return exitUsage
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: stderr,
	})
	logger.Debug("Starting docparse", "version", Version, "build_time", BuildTime)

	local := cfg.Source.Type == config.SourceLocal
	switch {
	case local && (o.ingest || o.all):
		fmt.Fprintln(stderr, "-ingest and -all need a file store source")
		return exitUsage
	case o.all && len(paths) > 0:
		fmt.Fprintln(stderr, "-all takes no arguments")
		return exitUsage
	case !o.all && len(paths) == 0:
		fmt.Fprintln(stderr, "no documents given")
		return exitUsage
	}

	runner := &pipeline.Runner{
		Logger:  logger.Logger,
		Workers: cfg.Extraction.Workers,
	}
	runner.ChunkSize, runner.ChunkOverlap = cfg.Extraction.ChunkRunes()
	if cfg.Extraction.Format != "" {
		runner.FormatOverride, _ = extractor.FromName(cfg.Extraction.Format)
	}

	// Initialize document source
	var inputs []pipeline.Input
	if local {
		for _, p := range paths {
			inputs = append(inputs, pipeline.Input{Path: p})
		}
	} else {
		store, err := filestore.Providers.New(ctx, cfg.Source.Type, cfg.SourceParams())
		if err != nil {
			logger.Error("Failed to initialize file store", "error", err)
			return exitUsage
		}
		defer store.Close(context.Background())
		logger.Info("Initialized file store", "type", cfg.Source.Type)
		runner.Store = store

		switch {
		case o.ingest:
			inputs, err = pipeline.Ingest(ctx, store, paths)
		case o.all:
			inputs, err = pipeline.StoredInputs(ctx, store)
		default:
			for _, id := range paths {
				inputs = append(inputs, pipeline.Input{FileID: id})
			}
		}
		if err != nil {
			logger.Error("Failed to prepare inputs", "error", err)
			return exitFailed
		}
	}

	// Initialize result store
	if cfg.Results.Type != config.ResultsNone {
		results, err := storage.Providers.New(ctx, cfg.Results.Type, cfg.ResultParams())
		if err != nil {
			logger.Error("Failed to initialize result store", "error", err)
			return exitUsage
		}
		defer results.Close()
		logger.Info("Initialized result store", "type", cfg.Results.Type)
		runner.Results = results
	}

	outcomes := runner.Run(ctx, inputs)

	if o.output == "json" {
		err = writeJSON(stdout, outcomes)
	} else {
		err = writeText(stdout, outcomes)
	}
	if err != nil {
		logger.Error("Failed to write output", "error", err)
		return exitFailed
	}

	failed := 0
	for i := range outcomes {
		if outcomes[i].Failed() {
			failed++
		}
	}
	logger.Info("Done", "documents", len(outcomes), "failed", failed)
	if failed > 0 {
		return exitFailed
	}
	return exitOK
}
