// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/leseb/docparse/pkg/provider"
	"github.com/leseb/docparse/pkg/storage"
)

func init() {
	storage.Providers.Register("memory", func(_ context.Context, _ provider.Params) (storage.ResultStore, error) {
		return New(), nil
	})
}

// compile-time check
var _ storage.ResultStore = (*Store)(nil)

// Store is an in-memory implementation of ResultStore
type Store struct {
	mu          sync.RWMutex
	extractions map[uuid.UUID]*storage.Extraction
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		extractions: make(map[uuid.UUID]*storage.Extraction),
	}
}

// SaveExtraction stores a copy of e
func (s *Store) SaveExtraction(_ context.Context, e *storage.Extraction) error {
	storage.Prepare(e)
	cp := clone(e)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractions[e.ID] = cp
	return nil
}

// GetExtraction retrieves an extraction by ID
func (s *Store) GetExtraction(_ context.Context, id uuid.UUID) (*storage.Extraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.extractions[id]
	if !exists {
		return nil, fmt.Errorf("extraction %s: %w", id, storage.ErrNotFound)
	}
	return clone(e), nil
}

// ListExtractions returns the newest extractions first
func (s *Store) ListExtractions(_ context.Context, limit int) ([]*storage.Extraction, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	s.mu.RLock()
	all := make([]*storage.Extraction, 0, len(s.extractions))
	for _, e := range s.extractions {
		all = append(all, e)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() > all[j].ID.String()
	})
	if len(all) > limit {
		all = all[:limit]
	}

	out := make([]*storage.Extraction, len(all))
	for i, e := range all {
		out[i] = clone(e)
	}
	return out, nil
}

// Close is a no-op for the in-memory store
func (s *Store) Close() error {
	return nil
}

func clone(e *storage.Extraction) *storage.Extraction {
	cp := *e
	cp.Metadata = maps.Clone(e.Metadata)
	cp.Chunks = append([]string(nil), e.Chunks...)
	return &cp
}
