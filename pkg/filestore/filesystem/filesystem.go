// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leseb/docparse/pkg/filestore"
	"github.com/leseb/docparse/pkg/provider"
)

func init() {
	filestore.Providers.Register("filesystem", func(_ context.Context, params provider.Params) (filestore.FileStore, error) {
		dir, err := params.Require("base_dir")
		if err != nil {
			return nil, err
		}
		return New(dir)
	})
}

// compile-time check
var _ filestore.FileStore = (*Store)(nil)

// fileMetadata is the on-disk representation stored in metadata.json.
type fileMetadata struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *fileMetadata) file() *filestore.File {
	return &filestore.File{
		ID:        m.ID,
		Filename:  m.Filename,
		MimeType:  m.MimeType,
		Bytes:     m.Bytes,
		CreatedAt: m.CreatedAt,
	}
}

// Store implements filestore.FileStore backed by a local filesystem.
//
// Layout:
//
//	<baseDir>/<file_id>/content        raw file bytes
//	<baseDir>/<file_id>/metadata.json  JSON metadata sidecar
type Store struct {
	baseDir string
}

// New creates a filesystem-backed Store, creating baseDir if it does not exist.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir %s: %w", baseDir, err)
	}
	return &Store{baseDir: baseDir}, nil
}

// dir returns the directory of a file ID. IDs that would escape baseDir
// are rejected.
func (s *Store) dir(fileID string) (string, error) {
	if fileID == "" || fileID == "." || fileID == ".." || strings.ContainsAny(fileID, `/\`) {
		return "", fmt.Errorf("invalid file id %q", fileID)
	}
	return filepath.Join(s.baseDir, fileID), nil
}

// PutFile writes the file content and metadata to disk atomically.
func (s *Store) PutFile(_ context.Context, file *filestore.File) error {
	dir, err := s.dir(file.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create file dir: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, "content"), file.Content); err != nil {
		return fmt.Errorf("write content: %w", err)
	}

	meta := fileMetadata{
		ID:        file.ID,
		Filename:  file.Filename,
		MimeType:  file.MimeType,
		Bytes:     file.Bytes,
		CreatedAt: file.CreatedAt,
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, "metadata.json"), metaBytes); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// writeAtomic writes data to a temp file and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// GetFile returns file metadata (Content is nil).
func (s *Store) GetFile(_ context.Context, fileID string) (*filestore.File, error) {
	meta, err := s.readMetadata(fileID)
	if err != nil {
		return nil, err
	}
	return meta.file(), nil
}

// GetFileContent returns the raw file bytes.
func (s *Store) GetFileContent(_ context.Context, fileID string) ([]byte, error) {
	dir, err := s.dir(fileID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "content"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
		}
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}

// DeleteFile removes the file directory and all its contents.
func (s *Store) DeleteFile(_ context.Context, fileID string) error {
	dir, err := s.dir(fileID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
		}
		return fmt.Errorf("stat file dir: %w", err)
	}
	return os.RemoveAll(dir)
}

// ListFiles reads every metadata sidecar and returns one page.
func (s *Store) ListFiles(_ context.Context, after string, limit int) ([]*filestore.File, bool, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, false, fmt.Errorf("read base dir: %w", err)
	}

	var all []*filestore.File
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.readMetadata(entry.Name())
		if err != nil {
			continue // skip corrupt entries
		}
		all = append(all, meta.file())
	}

	page, more := filestore.Paginate(all, after, limit)
	return page, more, nil
}

// Close is a no-op for the filesystem store.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// readMetadata reads and unmarshals the metadata.json for a file ID.
func (s *Store) readMetadata(fileID string) (*fileMetadata, error) {
	dir, err := s.dir(fileID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta fileMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal metadata for %s: %w", fileID, err)
	}
	return &meta, nil
}
