// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package storagetest provides a shared conformance test suite for
// storage.ResultStore implementations.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/leseb/docparse/pkg/storage"
)

func makeExtraction(source string, created time.Time) *storage.Extraction {
	return &storage.Extraction{
		ID:        uuid.New(),
		Source:    source,
		Filename:  source,
		Format:    "txt",
		Text:      "hello\nworld",
		Metadata:  map[string]any{"format": "txt", "line_count": 2},
		Chunks:    []string{"hello\nworld"},
		CreatedAt: created,
	}
}

// RunConformanceTests exercises a ResultStore implementation against the
// shared contract. newStore is called once per sub-test.
func RunConformanceTests(t *testing.T, newStore func(t *testing.T) storage.ResultStore) {
	t.Helper()

	t.Run("SaveAndGet", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		e := makeExtraction("notes.txt", time.Now().UTC().Truncate(time.Microsecond))
		if err := store.SaveExtraction(ctx, e); err != nil {
			t.Fatalf("SaveExtraction: %v", err)
		}

		got, err := store.GetExtraction(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExtraction: %v", err)
		}
		if got.ID != e.ID || got.Source != e.Source || got.Filename != e.Filename ||
			got.Format != e.Format || got.Text != e.Text {
			t.Errorf("GetExtraction returned unexpected record: %+v", got)
		}
		if !got.CreatedAt.Equal(e.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, e.CreatedAt)
		}
		if got.Failed() {
			t.Errorf("successful extraction reported as failed: %q", got.ErrorKind)
		}
		if fmt.Sprint(got.Metadata["line_count"]) != "2" || got.Metadata["format"] != "txt" {
			t.Errorf("metadata = %v", got.Metadata)
		}
		if len(got.Chunks) != 1 || got.Chunks[0] != "hello\nworld" {
			t.Errorf("chunks = %q", got.Chunks)
		}
	})

	t.Run("SaveFailure", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		e := &storage.Extraction{
			Source:    "broken.json",
			Filename:  "broken.json",
			Format:    "json",
			ErrorKind: storage.ErrorKindFormat,
			Error:     "Parse error: Invalid JSON: unexpected EOF",
		}
		if err := store.SaveExtraction(ctx, e); err != nil {
			t.Fatalf("SaveExtraction: %v", err)
		}
		if e.ID == uuid.Nil || e.CreatedAt.IsZero() {
			t.Fatalf("SaveExtraction should assign ID and CreatedAt, got %s / %v", e.ID, e.CreatedAt)
		}

		got, err := store.GetExtraction(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExtraction: %v", err)
		}
		if !got.Failed() || got.ErrorKind != storage.ErrorKindFormat || got.Error != e.Error {
			t.Errorf("unexpected failure record: %+v", got)
		}
		if got.Text != "" || len(got.Chunks) != 0 || len(got.Metadata) != 0 {
			t.Errorf("failed record should carry no result, got %+v", got)
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		e := makeExtraction("a.txt", time.Now().UTC().Truncate(time.Microsecond))
		if err := store.SaveExtraction(ctx, e); err != nil {
			t.Fatalf("SaveExtraction: %v", err)
		}
		e.Text = "updated"
		if err := store.SaveExtraction(ctx, e); err != nil {
			t.Fatalf("second SaveExtraction: %v", err)
		}

		got, err := store.GetExtraction(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExtraction: %v", err)
		}
		if got.Text != "updated" {
			t.Errorf("text = %q, want updated", got.Text)
		}
		list, err := store.ListExtractions(ctx, 10)
		if err != nil {
			t.Fatalf("ListExtractions: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("expected 1 record after replace, got %d", len(list))
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		_, err := store.GetExtraction(context.Background(), uuid.New())
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		var sources []string
		for i := 0; i < 5; i++ {
			src := fmt.Sprintf("doc%d.txt", i)
			sources = append(sources, src)
			if err := store.SaveExtraction(ctx, makeExtraction(src, base.Add(time.Duration(i)*time.Minute))); err != nil {
				t.Fatalf("SaveExtraction[%d]: %v", i, err)
			}
		}

		list, err := store.ListExtractions(ctx, 3)
		if err != nil {
			t.Fatalf("ListExtractions: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 records, got %d", len(list))
		}
		for i, e := range list {
			if want := sources[4-i]; e.Source != want {
				t.Errorf("list[%d].Source = %s, want %s", i, e.Source, want)
			}
		}

		list, err = store.ListExtractions(ctx, 0)
		if err != nil {
			t.Fatalf("ListExtractions: %v", err)
		}
		if len(list) != 5 {
			t.Errorf("default limit returned %d records, want 5", len(list))
		}
	})

	t.Run("ConcurrentSaves", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			go func() {
				errs <- store.SaveExtraction(ctx, makeExtraction(fmt.Sprintf("c%d", i), time.Now().UTC()))
			}()
		}
		for i := 0; i < 8; i++ {
			if err := <-errs; err != nil {
				t.Errorf("concurrent SaveExtraction: %v", err)
			}
		}

		list, err := store.ListExtractions(ctx, 100)
		if err != nil {
			t.Fatalf("ListExtractions: %v", err)
		}
		if len(list) != 8 {
			t.Errorf("expected 8 records, got %d", len(list))
		}
	})
}
