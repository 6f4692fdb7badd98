// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leseb/docparse/pkg/extractor"
	"github.com/leseb/docparse/pkg/filestore"
	fsmemory "github.com/leseb/docparse/pkg/filestore/memory"
	"github.com/leseb/docparse/pkg/storage"
	resultmemory "github.com/leseb/docparse/pkg/storage/memory"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRun_ContinuesAfterFailures(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"good.txt":    "line one\nline two\n",
		"bad.json":    "{",
		"program.exe": "MZ",
		"data.csv":    "a,b\n1,2\n",
	})
	inputs := []Input{
		{Path: filepath.Join(dir, "good.txt")},
		{Path: filepath.Join(dir, "bad.json")},
		{Path: filepath.Join(dir, "program.exe")},
		{Path: filepath.Join(dir, "missing.txt")},
		{Path: filepath.Join(dir, "data.csv")},
	}

	results := resultmemory.New()
	r := &Runner{Results: results, Workers: 2}
	outcomes := r.Run(context.Background(), inputs)

	if len(outcomes) != len(inputs) {
		t.Fatalf("expected %d outcomes, got %d", len(inputs), len(outcomes))
	}
	wantKinds := []string{"", "format", "source", "source", ""}
	for i, o := range outcomes {
		if o.Input != inputs[i] {
			t.Errorf("outcome %d is for %v, want %v", i, o.Input, inputs[i])
		}
		if got := ErrorKind(o.Err); got != wantKinds[i] {
			t.Errorf("outcome %d kind = %q, want %q (err=%v)", i, got, wantKinds[i], o.Err)
		}
	}

	if outcomes[0].Document.Text != "line one\nline two\n" {
		t.Errorf("text = %q", outcomes[0].Document.Text)
	}
	if outcomes[0].Format != extractor.FormatText {
		t.Errorf("format = %v", outcomes[0].Format)
	}
	if !errors.Is(outcomes[2].Err, extractor.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", outcomes[2].Err)
	}
	if !errors.Is(outcomes[3].Err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", outcomes[3].Err)
	}
	if outcomes[4].Document.Metadata["row_count"] != 1 {
		t.Errorf("row_count = %v", outcomes[4].Document.Metadata["row_count"])
	}

	records, err := results.ListExtractions(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(inputs) {
		t.Fatalf("expected %d records, got %d", len(inputs), len(records))
	}
	rec, err := results.GetExtraction(context.Background(), outcomes[1].RecordID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ErrorKind != storage.ErrorKindFormat || !strings.HasPrefix(rec.Error, "Parse error: Invalid JSON") {
		t.Errorf("failure record = %+v", rec)
	}
	if rec.Filename != "bad.json" || rec.Format != "json" {
		t.Errorf("record filename/format = %q/%q", rec.Filename, rec.Format)
	}
}

func TestRun_PreservesOrder(t *testing.T) {
	files := make(map[string]string)
	var inputs []Input
	dir := t.TempDir()
	for i := 0; i < 25; i++ {
		name := fmt.Sprintf("doc%02d.txt", i)
		files[name] = fmt.Sprintf("document %d", i)
		inputs = append(inputs, Input{Path: filepath.Join(dir, name)})
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	outcomes := (&Runner{Workers: 3}).Run(context.Background(), inputs)
	for i, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("outcome %d: %v", i, o.Err)
		}
		if want := fmt.Sprintf("document %d", i); o.Document.Text != want {
			t.Errorf("outcome %d text = %q, want %q", i, o.Document.Text, want)
		}
	}
}

func TestRun_FromFileStore(t *testing.T) {
	ctx := context.Background()
	dir := writeFiles(t, map[string]string{
		"page.html": "<h1>Title</h1><p>Body</p>",
		"feed.xml":  "<feed><title>News</title></feed>",
	})

	store := fsmemory.New()
	inputs, err := Ingest(ctx, store, []string{filepath.Join(dir, "page.html"), filepath.Join(dir, "feed.xml")})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(inputs) != 2 || !strings.HasPrefix(inputs[0].FileID, "doc_") {
		t.Fatalf("unexpected inputs: %+v", inputs)
	}

	meta, err := store.GetFile(ctx, inputs[0].FileID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Filename != "page.html" || meta.MimeType != "text/html" {
		t.Errorf("stored metadata = %+v", meta)
	}

	outcomes := (&Runner{Store: store}).Run(ctx, inputs)
	if outcomes[0].Err != nil || outcomes[0].Document.Text != "# Title\n\nBody" {
		t.Errorf("html outcome = %+v", outcomes[0])
	}
	if outcomes[1].Err != nil || outcomes[1].Document.Text != "News" {
		t.Errorf("xml outcome = %+v", outcomes[1])
	}
	if outcomes[0].Filename != "page.html" {
		t.Errorf("filename = %q", outcomes[0].Filename)
	}

	listed, err := StoredInputs(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 {
		t.Errorf("StoredInputs returned %d inputs", len(listed))
	}
}

func TestRun_FileIDErrors(t *testing.T) {
	ctx := context.Background()

	outcomes := (&Runner{}).Run(ctx, []Input{{FileID: "doc_1"}})
	if ErrorKind(outcomes[0].Err) != storage.ErrorKindSource {
		t.Errorf("expected source error without a store, got %v", outcomes[0].Err)
	}

	outcomes = (&Runner{Store: fsmemory.New()}).Run(ctx, []Input{{FileID: "doc_missing"}})
	if ErrorKind(outcomes[0].Err) != storage.ErrorKindSource {
		t.Errorf("expected source error for missing file, got %v", outcomes[0].Err)
	}
}

func TestRun_FormatOverride(t *testing.T) {
	dir := writeFiles(t, map[string]string{"payload.dat": `{"b":1,"a":2}`})
	r := &Runner{FormatOverride: extractor.FormatJSON}
	outcomes := r.Run(context.Background(), []Input{{Path: filepath.Join(dir, "payload.dat")}})
	if outcomes[0].Err != nil {
		t.Fatal(outcomes[0].Err)
	}
	if outcomes[0].Document.Text != "{\n  \"a\": 2,\n  \"b\": 1\n}" {
		t.Errorf("text = %q", outcomes[0].Document.Text)
	}
}

func TestRun_InMemoryContent(t *testing.T) {
	in := []Input{
		{Upload: &Upload{Name: "upload.csv", Content: []byte("a,b\n1,2\n")}},
		{Upload: &Upload{Name: "upload.bin", Content: []byte{0x01}}},
		{Upload: &Upload{Name: "empty.txt"}},
	}
	outcomes := (&Runner{}).Run(context.Background(), in)
	if outcomes[0].Err != nil {
		t.Fatal(outcomes[0].Err)
	}
	if outcomes[0].Document.Text != "a\tb\n1\t2" {
		t.Errorf("text = %q", outcomes[0].Document.Text)
	}
	if outcomes[0].Input.Source() != "upload.csv" || outcomes[0].Filename != "upload.csv" {
		t.Errorf("source/filename = %q/%q", outcomes[0].Input.Source(), outcomes[0].Filename)
	}
	if !errors.Is(outcomes[1].Err, extractor.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want unsupported format", outcomes[1].Err)
	}
	// An empty upload is extracted from memory, never read from disk.
	if outcomes[2].Err != nil || outcomes[2].Document.Text != "" {
		t.Errorf("empty upload outcome = %+v", outcomes[2])
	}
}

// contentlessStore serves metadata but fails every content read.
type contentlessStore struct {
	filestore.FileStore
}

func (contentlessStore) GetFileContent(context.Context, string) ([]byte, error) {
	return nil, errors.New("content unavailable")
}

func TestRun_FormatCheckedBeforeRead(t *testing.T) {
	ctx := context.Background()
	store := fsmemory.New()
	for _, f := range []*filestore.File{
		{ID: "doc_exe", Filename: "program.exe", Content: []byte("MZ")},
		{ID: "doc_txt", Filename: "notes.txt", Content: []byte("hi")},
	} {
		if err := store.PutFile(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	r := &Runner{Store: contentlessStore{store}}
	outcomes := r.Run(ctx, []Input{
		{Path: filepath.Join(t.TempDir(), "missing.exe")},
		{FileID: "doc_exe"},
		{FileID: "doc_txt"},
	})

	for i := 0; i < 2; i++ {
		if !errors.Is(outcomes[i].Err, extractor.ErrUnsupportedFormat) {
			t.Errorf("outcome %d: err = %v, want unsupported format", i, outcomes[i].Err)
		}
	}
	if outcomes[1].Filename != "program.exe" {
		t.Errorf("filename = %q", outcomes[1].Filename)
	}
	if outcomes[2].Format != extractor.FormatText || !strings.Contains(fmt.Sprint(outcomes[2].Err), "content unavailable") {
		t.Errorf("outcome 2 = format %v, err %v", outcomes[2].Format, outcomes[2].Err)
	}
}

func TestRun_Chunking(t *testing.T) {
	dir := writeFiles(t, map[string]string{"long.txt": strings.Repeat("abcdefghij", 3)})
	in := []Input{{Path: filepath.Join(dir, "long.txt")}}

	outcomes := (&Runner{ChunkSize: 10, ChunkOverlap: 0}).Run(context.Background(), in)
	if len(outcomes[0].Chunks) != 3 || outcomes[0].Chunks[2] != "abcdefghij" {
		t.Errorf("chunks = %q", outcomes[0].Chunks)
	}

	outcomes = (&Runner{ChunkSize: -1}).Run(context.Background(), in)
	if outcomes[0].Chunks != nil {
		t.Errorf("chunking should be disabled, got %q", outcomes[0].Chunks)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := (&Runner{}).Run(ctx, []Input{{Path: "a.txt"}, {Path: "b.txt"}})
	for i, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("outcome %d: expected context.Canceled, got %v", i, o.Err)
		}
	}
}

func TestErrorKind(t *testing.T) {
	_, parseErr := extractor.Extract(extractor.FormatText, []byte{0xff})
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{parseErr, "encoding"},
		{fmt.Errorf("wrapped: %w", parseErr), "encoding"},
		{&SourceError{Source: "x", Err: os.ErrNotExist}, "source"},
		{errors.New("other"), "source"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
