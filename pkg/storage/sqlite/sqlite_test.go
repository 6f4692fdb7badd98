// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leseb/docparse/pkg/provider"
	"github.com/leseb/docparse/pkg/storage"
	"github.com/leseb/docparse/pkg/storage/storagetest"
)

func TestSQLiteConformance(t *testing.T) {
	storagetest.RunConformanceTests(t, func(t *testing.T) storage.ResultStore {
		s, err := New(context.Background(), filepath.Join(t.TempDir(), "results.db"))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return s
	})
}

func TestSQLite_InMemory(t *testing.T) {
	s, err := New(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	var n int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM extractions`).Scan(&n); err != nil {
		t.Fatalf("schema not created: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty table, got %d rows", n)
	}
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	s, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := &storage.Extraction{Source: "a.md", Format: "markdown", Text: "# hi", CreatedAt: time.Now().UTC()}
	if err := s.SaveExtraction(ctx, e); err != nil {
		t.Fatalf("SaveExtraction: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err := storage.Providers.New(ctx, "sqlite", provider.Params{"dsn": path})
	if err != nil {
		t.Fatalf("Providers.New: %v", err)
	}
	defer store.Close()

	got, err := store.GetExtraction(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExtraction after reopen: %v", err)
	}
	if got.Text != "# hi" || got.Format != "markdown" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestWithPragmas(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{":memory:", ":memory:"},
		{"out.db", "out.db?" + pragmas},
		{"out.db?mode=rwc", "out.db?mode=rwc&" + pragmas},
		{"out.db?_pragma=foreign_keys(1)", "out.db?_pragma=foreign_keys(1)"},
	}
	for _, tt := range tests {
		if got := withPragmas(tt.in); got != tt.want {
			t.Errorf("withPragmas(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
