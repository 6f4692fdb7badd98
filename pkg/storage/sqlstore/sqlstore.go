// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlstore implements storage.ResultStore on top of database/sql.
// The sqlite and postgres backends share it and differ only in their
// Dialect.
package sqlstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leseb/docparse/pkg/storage"
)

// Dialect captures the SQL differences between drivers.
type Dialect struct {
	// Name is used in error messages ("sqlite", "postgres").
	Name string
	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder func(n int) string
}

// Question is the "?" placeholder style.
func Question(int) string { return "?" }

// Dollar is the "$n" placeholder style.
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// created_at holds Unix nanoseconds so ordering and round trips are exact
// on every driver.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS extractions (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL DEFAULT '',
		filename TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		error_kind TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		chunks TEXT NOT NULL DEFAULT '[]',
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_extractions_created ON extractions(created_at)`,
}

var columns = []string{"id", "source", "filename", "format", "text", "metadata", "error_kind", "error", "chunks", "created_at"}

// Store is a database/sql-backed ResultStore.
type Store struct {
	db      *sql.DB
	dialect Dialect

	insertSQL string
	selectSQL string
	listSQL   string
}

// compile-time check
var _ storage.ResultStore = (*Store)(nil)

// New wraps an open database, pings it and creates the schema. The Store
// owns db and closes it on Close.
func New(ctx context.Context, db *sql.DB, d Dialect) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%s ping: %w", d.Name, err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("%s create tables: %w", d.Name, err)
		}
	}

	marks := make([]string, len(columns))
	updates := make([]string, 0, len(columns)-1)
	for i, c := range columns {
		marks[i] = d.Placeholder(i + 1)
		if c != "id" {
			updates = append(updates, c+" = excluded."+c)
		}
	}
	cols := strings.Join(columns, ", ")

	insertSQL := fmt.Sprintf(`INSERT INTO extractions (%s) VALUES (%s)
		ON CONFLICT (id) DO UPDATE SET %s`, cols, strings.Join(marks, ", "), strings.Join(updates, ", "))
	selectSQL := fmt.Sprintf(`SELECT %s FROM extractions WHERE id = %s`, cols, d.Placeholder(1))
	listSQL := fmt.Sprintf(`SELECT %s FROM extractions ORDER BY created_at DESC, id DESC LIMIT %s`, cols, d.Placeholder(1))

	return &Store{
		db:        db,
		dialect:   d,
		insertSQL: insertSQL,
		selectSQL: selectSQL,
		listSQL:   listSQL,
	}, nil
}

// DB exposes the underlying handle for backend-specific tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- helpers ---

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalMetadata keeps numbers as json.Number so integer counts are
// not turned into floats.
func unmarshalMetadata(data string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func unmarshalChunks(data string) ([]string, error) {
	var c []string
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, err
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExtraction(row rowScanner) (*storage.Extraction, error) {
	var (
		e                      storage.Extraction
		id, metaStr, chunksStr string
		createdAt              int64
	)
	err := row.Scan(&id, &e.Source, &e.Filename, &e.Format, &e.Text, &metaStr,
		&e.ErrorKind, &e.Error, &chunksStr, &createdAt)
	if err != nil {
		return nil, err
	}

	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id %q: %w", id, err)
	}
	if e.Metadata, err = unmarshalMetadata(metaStr); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	if e.Chunks, err = unmarshalChunks(chunksStr); err != nil {
		return nil, fmt.Errorf("unmarshal chunks: %w", err)
	}
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	return &e, nil
}

// --- ResultStore ---

// SaveExtraction upserts e.
func (s *Store) SaveExtraction(ctx context.Context, e *storage.Extraction) error {
	storage.Prepare(e)

	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := marshalJSON(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	chunks := e.Chunks
	if chunks == nil {
		chunks = []string{}
	}
	chunksJSON, err := marshalJSON(chunks)
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.insertSQL,
		e.ID.String(), e.Source, e.Filename, e.Format, e.Text, metaJSON,
		e.ErrorKind, e.Error, chunksJSON, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("%s save extraction %s: %w", s.dialect.Name, e.ID, err)
	}
	return nil
}

// GetExtraction loads one record by ID.
func (s *Store) GetExtraction(ctx context.Context, id uuid.UUID) (*storage.Extraction, error) {
	e, err := scanExtraction(s.db.QueryRowContext(ctx, s.selectSQL, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("extraction %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get extraction: %w", err)
	}
	return e, nil
}

// ListExtractions returns the newest records first.
func (s *Store) ListExtractions(ctx context.Context, limit int) ([]*storage.Extraction, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, s.listSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	defer rows.Close()

	var out []*storage.Extraction
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	return out, nil
}
