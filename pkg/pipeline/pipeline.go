// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline drives extraction over a batch of documents. Documents
// come from local paths or a file store; each one is extracted, chunked
// and recorded independently, so one bad file never stops the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leseb/docparse/pkg/chunker"
	"github.com/leseb/docparse/pkg/extractor"
	"github.com/leseb/docparse/pkg/filestore"
	"github.com/leseb/docparse/pkg/storage"
)

// DefaultWorkers is the parallelism used when Runner.Workers is not set.
const DefaultWorkers = 4

// Upload is a document already held in memory. Name carries the filename
// used for format detection.
type Upload struct {
	Name    string
	Content []byte
}

// Input names one document: an in-memory upload, a file store ID, or a
// local path, checked in that order.
type Input struct {
	Upload *Upload
	FileID string
	Path   string
}

// Source returns the name, ID or path the input was given as.
func (in Input) Source() string {
	switch {
	case in.Upload != nil:
		return in.Upload.Name
	case in.FileID != "":
		return in.FileID
	default:
		return in.Path
	}
}

// SourceError reports a failure that happened before parsing: the document
// could not be fetched, its format is unknown, or its result could not be
// stored.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ErrorKind classifies err for records and output: "io", "encoding" or
// "format" for extractor errors, "source" for everything else. A nil
// error yields "".
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var pe *extractor.ParseError
	if errors.As(err, &pe) {
		return pe.Kind.String()
	}
	return storage.ErrorKindSource
}

// Outcome is the result of processing one Input.
type Outcome struct {
	Input    Input
	Filename string
	Format   extractor.Format // zero when detection failed
	Document *extractor.Document
	Chunks   []string
	RecordID uuid.UUID // zero when no result store is configured
	Err      error
}

// Failed reports whether the document could not be processed.
func (o *Outcome) Failed() bool {
	return o.Err != nil
}

// Runner processes batches of documents.
type Runner struct {
	// Store resolves FileID inputs. It may be nil when only paths are used.
	Store filestore.FileStore
	// Results receives one record per document when set.
	Results storage.ResultStore
	Logger  *slog.Logger

	// ChunkSize and ChunkOverlap are in runes. Zero selects the chunker
	// defaults; a negative ChunkSize disables chunking.
	ChunkSize    int
	ChunkOverlap int

	Workers int
	// FormatOverride forces one format for every input when valid.
	FormatOverride extractor.Format
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Run processes every input and returns one Outcome per input, in input
// order. Inputs not yet started when ctx is cancelled get ctx's error.
func (r *Runner) Run(ctx context.Context, inputs []Input) []Outcome {
	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	out := make([]Outcome, len(inputs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			out[i] = Outcome{Input: in, Err: &SourceError{Source: in.Source(), Err: err}}
			continue
		}
		g.Go(func() error {
			out[i] = r.process(ctx, in)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Runner) process(ctx context.Context, in Input) Outcome {
	log := r.logger().With("source", in.Source())
	start := time.Now()
	o := Outcome{Input: in}

	filename, err := r.resolve(ctx, in)
	o.Filename = filename
	if err != nil {
		o.Err = &SourceError{Source: in.Source(), Err: err}
		r.finish(ctx, log, &o, start)
		return o
	}

	// The format is settled before any content is read, so an unsupported
	// document is reported as such even when it cannot be fetched.
	format := r.FormatOverride
	if !format.Valid() {
		var ok bool
		if format, ok = extractor.FromPath(filename); !ok {
			o.Err = &SourceError{Source: in.Source(), Err: extractor.ErrUnsupportedFormat}
			r.finish(ctx, log, &o, start)
			return o
		}
	}
	o.Format = format

	content, err := r.load(ctx, in)
	if err != nil {
		o.Err = &SourceError{Source: in.Source(), Err: err}
		r.finish(ctx, log, &o, start)
		return o
	}

	log.Debug("extracting", "format", format.String(), "bytes", len(content))
	doc, err := extractor.Extract(format, content)
	if err != nil {
		o.Err = err
		r.finish(ctx, log, &o, start)
		return o
	}
	o.Document = doc
	if r.ChunkSize >= 0 {
		o.Chunks = chunker.Split(doc.Text, r.ChunkSize, r.ChunkOverlap)
	}

	r.finish(ctx, log, &o, start)
	return o
}

// resolve returns the filename used for format detection. File store
// inputs are looked up by metadata only.
func (r *Runner) resolve(ctx context.Context, in Input) (string, error) {
	switch {
	case in.Upload != nil:
		return in.Upload.Name, nil
	case in.FileID != "":
		if r.Store == nil {
			return "", errors.New("no file store configured")
		}
		meta, err := r.Store.GetFile(ctx, in.FileID)
		if err != nil {
			return "", err
		}
		return meta.Filename, nil
	default:
		return in.Path, nil
	}
}

func (r *Runner) load(ctx context.Context, in Input) ([]byte, error) {
	switch {
	case in.Upload != nil:
		return in.Upload.Content, nil
	case in.FileID != "":
		return r.Store.GetFileContent(ctx, in.FileID)
	default:
		return os.ReadFile(in.Path)
	}
}

// finish records the outcome and logs it.
func (r *Runner) finish(ctx context.Context, log *slog.Logger, o *Outcome, start time.Time) {
	if r.Results != nil {
		rec := record(o)
		if err := r.Results.SaveExtraction(ctx, rec); err != nil {
			log.Error("failed to save extraction", "error", err)
			if o.Err == nil {
				o.Err = &SourceError{Source: o.Input.Source(), Err: fmt.Errorf("save result: %w", err)}
			}
		} else {
			o.RecordID = rec.ID
		}
	}

	elapsed := time.Since(start)
	if o.Err != nil {
		log.Warn("extraction failed", "error_kind", ErrorKind(o.Err), "error", o.Err, "duration", elapsed)
		return
	}
	log.Info("extracted",
		"format", o.Format.String(),
		"chars", len(o.Document.Text),
		"chunks", len(o.Chunks),
		"duration", elapsed)
}

func record(o *Outcome) *storage.Extraction {
	e := &storage.Extraction{
		Source: o.Input.Source(),
		Chunks: o.Chunks,
	}
	if o.Filename != "" {
		e.Filename = filepath.Base(o.Filename)
	}
	if o.Format.Valid() {
		e.Format = o.Format.String()
	}
	if o.Document != nil {
		e.Text = o.Document.Text
		e.Metadata = o.Document.Metadata
	}
	if o.Err != nil {
		e.ErrorKind = ErrorKind(o.Err)
		e.Error = o.Err.Error()
	}
	return e
}
