// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage persists extraction results. A record is written for
// every processed document, successful or not, so a batch can be audited
// after the fact.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/leseb/docparse/pkg/provider"
)

// ErrNotFound is returned when an extraction record does not exist.
var ErrNotFound = errors.New("extraction not found")

// Providers is the registry of result store backends:
//
//	import _ "github.com/leseb/docparse/pkg/storage/memory"
//	import _ "github.com/leseb/docparse/pkg/storage/sqlite"
//	import _ "github.com/leseb/docparse/pkg/storage/postgres"
var Providers = provider.NewRegistry[ResultStore]("result_store")

// DefaultListLimit is used when ListExtractions is called with limit <= 0.
const DefaultListLimit = 100

// Error kinds recorded on failed extractions. The first three mirror the
// extractor error kinds; ErrorKindSource covers failures before parsing
// (unreadable file, unknown format).
const (
	ErrorKindIO       = "io"
	ErrorKindEncoding = "encoding"
	ErrorKindFormat   = "format"
	ErrorKindSource   = "source"
)

// Extraction is the stored result of processing one document.
type Extraction struct {
	ID        uuid.UUID
	Source    string // local path or file store ID
	Filename  string
	Format    string // canonical format name; empty when detection failed
	Text      string
	Metadata  map[string]any
	ErrorKind string // empty on success
	Error     string
	Chunks    []string
	CreatedAt time.Time
}

// Failed reports whether the extraction recorded an error.
func (e *Extraction) Failed() bool {
	return e.ErrorKind != ""
}

// Prepare fills in a missing ID and creation time.
func Prepare(e *Extraction) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}

// ResultStore defines the interface for extraction result backends.
// Implementations must be safe for concurrent use.
type ResultStore interface {
	// SaveExtraction stores e, replacing a record with the same ID.
	// A nil ID or zero CreatedAt is filled in before writing.
	SaveExtraction(ctx context.Context, e *Extraction) error
	GetExtraction(ctx context.Context, id uuid.UUID) (*Extraction, error)
	// ListExtractions returns up to limit records, newest first.
	ListExtractions(ctx context.Context, limit int) ([]*Extraction, error)
	Close() error
}
