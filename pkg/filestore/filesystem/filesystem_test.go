// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leseb/docparse/pkg/filestore"
	"github.com/leseb/docparse/pkg/filestore/filestoretest"
	"github.com/leseb/docparse/pkg/filestore/filesystem"
	"github.com/leseb/docparse/pkg/provider"
)

func TestFilesystemConformance(t *testing.T) {
	filestoretest.RunConformanceTests(t, func(t *testing.T) filestore.FileStore {
		store, err := filesystem.New(t.TempDir())
		if err != nil {
			t.Fatalf("filesystem.New: %v", err)
		}
		return store
	})
}

func TestFilesystem_RejectsTraversal(t *testing.T) {
	store, err := filesystem.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, id := range []string{"../escape", "a/b", "..", ""} {
		if err := store.PutFile(ctx, &filestore.File{ID: id, Content: []byte("x")}); err == nil {
			t.Errorf("PutFile(%q) should fail", id)
		}
	}
}

func TestFilesystem_SkipsCorruptEntries(t *testing.T) {
	base := t.TempDir()
	store, err := filesystem.New(base)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := store.PutFile(ctx, &filestore.File{ID: "good", Filename: "a.txt", Content: []byte("a"), CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(base, "broken"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "broken", "metadata.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, _, err := store.ListFiles(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0].ID != "good" {
		t.Errorf("expected only the good entry, got %d files", len(files))
	}
}

func TestFilesystem_RequiresBaseDir(t *testing.T) {
	_, err := filestore.Providers.New(context.Background(), "filesystem", provider.Params{})
	if err == nil {
		t.Fatal("expected error without base_dir")
	}

	store, err := filestore.Providers.New(context.Background(), "filesystem", provider.Params{"base_dir": t.TempDir()})
	if err != nil {
		t.Fatalf("Providers.New: %v", err)
	}
	defer store.Close(context.Background())
}
