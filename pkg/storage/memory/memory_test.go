// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"testing"

	"github.com/leseb/docparse/pkg/storage"
	"github.com/leseb/docparse/pkg/storage/storagetest"
)

func TestMemoryConformance(t *testing.T) {
	storagetest.RunConformanceTests(t, func(t *testing.T) storage.ResultStore {
		return New()
	})
}

func TestSaveExtraction_Isolated(t *testing.T) {
	s := New()
	ctx := context.Background()

	e := &storage.Extraction{
		Source:   "a.csv",
		Metadata: map[string]any{"row_count": 1},
		Chunks:   []string{"x"},
	}
	if err := s.SaveExtraction(ctx, e); err != nil {
		t.Fatalf("SaveExtraction: %v", err)
	}
	e.Metadata["row_count"] = 99
	e.Chunks[0] = "mutated"

	got, err := s.GetExtraction(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExtraction: %v", err)
	}
	if got.Metadata["row_count"] != 1 || got.Chunks[0] != "x" {
		t.Errorf("stored record shares memory with caller: %+v", got)
	}
}

func TestRegistered(t *testing.T) {
	store, err := storage.Providers.New(context.Background(), "memory", nil)
	if err != nil {
		t.Fatalf("Providers.New: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*Store); !ok {
		t.Errorf("expected *Store, got %T", store)
	}
}
