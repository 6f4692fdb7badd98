// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package filestore defines the document source interface. Documents are
// stored by ID with a small metadata record and fetched back as raw bytes
// for extraction.
package filestore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/leseb/docparse/pkg/provider"
)

// ErrFileNotFound is returned when a file does not exist.
var ErrFileNotFound = errors.New("file not found")

// Providers is the registry of file store backend implementations.
// Import implementation packages with blank imports to register them:
//
//	import _ "github.com/leseb/docparse/pkg/filestore/memory"
//	import _ "github.com/leseb/docparse/pkg/filestore/filesystem"
//	import _ "github.com/leseb/docparse/pkg/filestore/s3"
var Providers = provider.NewRegistry[FileStore]("file_store")

// Default and maximum page sizes for ListFiles.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// File represents a stored document with metadata and content.
type File struct {
	ID        string
	Filename  string
	MimeType  string
	Bytes     int64
	Content   []byte // populated for PutFile input; nil for GetFile output
	CreatedAt time.Time
}

// FileStore defines the interface for pluggable document sources.
type FileStore interface {
	// PutFile stores file, replacing any file with the same ID.
	PutFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, fileID string) (*File, error)
	GetFileContent(ctx context.Context, fileID string) ([]byte, error)
	DeleteFile(ctx context.Context, fileID string) error
	// ListFiles returns up to limit files ordered by CreatedAt then ID,
	// starting after the file with ID after. The bool reports whether more
	// files follow.
	ListFiles(ctx context.Context, after string, limit int) ([]*File, bool, error)
	Close(ctx context.Context) error
}

// Paginate sorts files by CreatedAt then ID and returns the page that
// starts after the cursor ID. An unknown cursor yields an empty page.
func Paginate(files []*File, after string, limit int) ([]*File, bool) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].CreatedAt.Before(files[j].CreatedAt)
		}
		return files[i].ID < files[j].ID
	})

	start := 0
	if after != "" {
		start = len(files)
		for i, f := range files {
			if f.ID == after {
				start = i + 1
				break
			}
		}
	}

	rest := files[start:]
	if len(rest) > limit {
		return rest[:limit], true
	}
	return rest, false
}

// ListAll pages through every file in store.
func ListAll(ctx context.Context, store FileStore) ([]*File, error) {
	var (
		all   []*File
		after string
	)
	for {
		page, more, err := store.ListFiles(ctx, after, MaxListLimit)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if !more || len(page) == 0 {
			return all, nil
		}
		after = page[len(page)-1].ID
	}
}
