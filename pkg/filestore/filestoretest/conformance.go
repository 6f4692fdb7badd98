// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package filestoretest provides a shared conformance test suite for
// filestore.FileStore implementations. Each backend should call
// RunConformanceTests from its own _test.go file.
package filestoretest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leseb/docparse/pkg/filestore"
)

func newFile(id, name, content string, created time.Time) *filestore.File {
	return &filestore.File{
		ID:        id,
		Filename:  name,
		MimeType:  "text/plain",
		Bytes:     int64(len(content)),
		Content:   []byte(content),
		CreatedAt: created,
	}
}

// RunConformanceTests exercises a FileStore implementation against the shared
// contract. The newStore function is called once per sub-test to provide an
// isolated store instance.
func RunConformanceTests(t *testing.T, newStore func(t *testing.T) filestore.FileStore) {
	t.Helper()

	t.Run("PutAndGet", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		f := newFile("doc_abc123", "hello.txt", "hello", time.Now().UTC().Truncate(time.Millisecond))
		if err := store.PutFile(ctx, f); err != nil {
			t.Fatalf("PutFile: %v", err)
		}

		got, err := store.GetFile(ctx, f.ID)
		if err != nil {
			t.Fatalf("GetFile: %v", err)
		}

		if got.ID != f.ID || got.Filename != f.Filename || got.MimeType != f.MimeType || got.Bytes != f.Bytes {
			t.Errorf("GetFile returned unexpected metadata: %+v", got)
		}
		if !got.CreatedAt.Equal(f.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, f.CreatedAt)
		}

		// Content should be nil from GetFile (metadata-only)
		if got.Content != nil {
			t.Errorf("expected Content to be nil from GetFile, got %d bytes", len(got.Content))
		}
	})

	t.Run("GetContent", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		content := "%PDF-1.7 binary\x00\xff payload"
		f := newFile("doc_content1", "data.pdf", content, time.Now().UTC().Truncate(time.Millisecond))
		f.MimeType = "application/pdf"

		if err := store.PutFile(ctx, f); err != nil {
			t.Fatalf("PutFile: %v", err)
		}

		got, err := store.GetFileContent(ctx, f.ID)
		if err != nil {
			t.Fatalf("GetFileContent: %v", err)
		}
		if string(got) != content {
			t.Errorf("content mismatch: got %q, want %q", got, content)
		}
	})

	t.Run("PutReplaces", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		created := time.Now().UTC().Truncate(time.Millisecond)
		if err := store.PutFile(ctx, newFile("doc_dup1", "v1.txt", "one", created)); err != nil {
			t.Fatalf("first PutFile: %v", err)
		}
		if err := store.PutFile(ctx, newFile("doc_dup1", "v2.txt", "two!", created)); err != nil {
			t.Fatalf("second PutFile: %v", err)
		}

		got, err := store.GetFile(ctx, "doc_dup1")
		if err != nil {
			t.Fatalf("GetFile: %v", err)
		}
		if got.Filename != "v2.txt" || got.Bytes != 4 {
			t.Errorf("expected replaced metadata, got %+v", got)
		}
		content, err := store.GetFileContent(ctx, "doc_dup1")
		if err != nil {
			t.Fatalf("GetFileContent: %v", err)
		}
		if string(content) != "two!" {
			t.Errorf("content = %q, want %q", content, "two!")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		f := newFile("doc_del1", "del.txt", "del", time.Now().UTC().Truncate(time.Millisecond))
		if err := store.PutFile(ctx, f); err != nil {
			t.Fatalf("PutFile: %v", err)
		}

		if err := store.DeleteFile(ctx, f.ID); err != nil {
			t.Fatalf("DeleteFile: %v", err)
		}

		_, err := store.GetFile(ctx, f.ID)
		if !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound after delete, got: %v", err)
		}
		_, err = store.GetFileContent(ctx, f.ID)
		if !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound for content after delete, got: %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		_, err := store.GetFile(ctx, "doc_nonexistent")
		if !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("GetFile expected ErrFileNotFound, got: %v", err)
		}

		_, err = store.GetFileContent(ctx, "doc_nonexistent")
		if !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("GetFileContent expected ErrFileNotFound, got: %v", err)
		}

		err = store.DeleteFile(ctx, "doc_nonexistent")
		if !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("DeleteFile expected ErrFileNotFound, got: %v", err)
		}
	})

	t.Run("ListPaginated", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		// Insert out of order; two files share a timestamp and sort by ID.
		baseTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		offsets := []int{3, 0, 1, 1, 2}
		for i, off := range offsets {
			id := fmt.Sprintf("doc_list%c", 'a'+i)
			f := newFile(id, id+".txt", "x", baseTime.Add(time.Duration(off)*time.Second))
			if err := store.PutFile(ctx, f); err != nil {
				t.Fatalf("PutFile[%d]: %v", i, err)
			}
		}
		want := []string{"doc_listb", "doc_listc", "doc_listd", "doc_liste", "doc_lista"}

		files, hasMore, err := store.ListFiles(ctx, "", 10)
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		if hasMore {
			t.Errorf("expected hasMore=false")
		}
		if len(files) != len(want) {
			t.Fatalf("expected %d files, got %d", len(want), len(files))
		}
		for i, f := range files {
			if f.ID != want[i] {
				t.Errorf("files[%d] = %s, want %s", i, f.ID, want[i])
			}
			if f.Content != nil {
				t.Errorf("ListFiles should not return content for %s", f.ID)
			}
		}

		files, hasMore, err = store.ListFiles(ctx, "", 3)
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		if len(files) != 3 || !hasMore {
			t.Fatalf("expected 3 files with more, got %d (hasMore=%v)", len(files), hasMore)
		}

		files, hasMore, err = store.ListFiles(ctx, files[2].ID, 3)
		if err != nil {
			t.Fatalf("ListFiles after cursor: %v", err)
		}
		if len(files) != 2 || hasMore {
			t.Fatalf("expected final 2 files, got %d (hasMore=%v)", len(files), hasMore)
		}
		if files[0].ID != want[3] || files[1].ID != want[4] {
			t.Errorf("second page = [%s %s], want %v", files[0].ID, files[1].ID, want[3:])
		}

		all, err := filestore.ListAll(ctx, store)
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if len(all) != len(want) {
			t.Errorf("ListAll returned %d files, want %d", len(all), len(want))
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())

		files, hasMore, err := store.ListFiles(context.Background(), "", 10)
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		if len(files) != 0 || hasMore {
			t.Errorf("expected empty listing, got %d files (hasMore=%v)", len(files), hasMore)
		}
	})
}
