// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/leseb/docparse/pkg/extractor"
	"github.com/leseb/docparse/pkg/filestore"
)

// NewFileID returns a fresh file store ID.
func NewFileID() string {
	return "doc_" + uuid.NewString()
}

// Ingest uploads local files to store and returns inputs referring to the
// stored copies, in the same order as paths. It stops at the first file
// that cannot be read or stored.
func Ingest(ctx context.Context, store filestore.FileStore, paths []string) ([]Input, error) {
	inputs := make([]Input, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", p, err)
		}

		mime := "application/octet-stream"
		if f, ok := extractor.FromPath(p); ok {
			mime = f.MimeType()
		}
		file := &filestore.File{
			ID:        NewFileID(),
			Filename:  filepath.Base(p),
			MimeType:  mime,
			Bytes:     int64(len(content)),
			Content:   content,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.PutFile(ctx, file); err != nil {
			return nil, fmt.Errorf("ingest %s: %w", p, err)
		}
		inputs = append(inputs, Input{FileID: file.ID})
	}
	return inputs, nil
}

// StoredInputs lists every file in store as an input, oldest first.
func StoredInputs(ctx context.Context, store filestore.FileStore) ([]Input, error) {
	files, err := filestore.ListAll(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	inputs := make([]Input, len(files))
	for i, f := range files {
		inputs[i] = Input{FileID: f.ID}
	}
	return inputs, nil
}
