// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlite provides a ResultStore backed by an embedded SQLite
// database (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/leseb/docparse/pkg/provider"
	"github.com/leseb/docparse/pkg/storage"
	"github.com/leseb/docparse/pkg/storage/sqlstore"
)

// DefaultDSN is used when no dsn parameter is given.
const DefaultDSN = "docparse.db"

// pragmas applied to file databases unless the DSN sets its own.
const pragmas = "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)"

var dialect = sqlstore.Dialect{Name: "sqlite", Placeholder: sqlstore.Question}

func init() {
	storage.Providers.Register("sqlite", func(ctx context.Context, params provider.Params) (storage.ResultStore, error) {
		return New(ctx, params.Get("dsn", DefaultDSN))
	})
}

// New opens (or creates) the database at dsn. dsn is a file path,
// optionally with query parameters, or ":memory:".
func New(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One writer; also keeps a ":memory:" database on a single connection.
	db.SetMaxOpenConns(1)

	s, err := sqlstore.New(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func withPragmas(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragmas
	}
	return dsn + "?" + pragmas
}
