// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"github.com/google/uuid"

	"github.com/leseb/docparse/pkg/extractor"
	"github.com/leseb/docparse/pkg/filestore"
	"github.com/leseb/docparse/pkg/pipeline"
	"github.com/leseb/docparse/pkg/storage"
)

// File represents an uploaded document
type File struct {
	ID        string `json:"id"`     // Format: "doc_{uuid}"
	Object    string `json:"object"` // Always "file"
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"` // Unix timestamp
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
}

func toFile(f *filestore.File) File {
	return File{
		ID:        f.ID,
		Object:    "file",
		Bytes:     f.Bytes,
		CreatedAt: f.CreatedAt.Unix(),
		Filename:  f.Filename,
		MimeType:  f.MimeType,
	}
}

// ListFilesResponse represents a page of files
type ListFilesResponse struct {
	Object  string `json:"object"` // Always "list"
	Data    []File `json:"data"`
	FirstID string `json:"first_id,omitempty"`
	LastID  string `json:"last_id,omitempty"`
	HasMore bool   `json:"has_more"`
}

// DeleteFileResponse represents the response from deleting a file
type DeleteFileResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"` // Always "file.deleted"
	Deleted bool   `json:"deleted"`
}

// Extraction is the result of extracting one document. ID is empty when
// no result store is configured.
type Extraction struct {
	ID        string         `json:"id,omitempty"`
	Object    string         `json:"object"` // Always "extraction"
	Source    string         `json:"source"`
	Filename  string         `json:"filename,omitempty"`
	Format    string         `json:"format,omitempty"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Chunks    []string       `json:"chunks,omitempty"`
	ErrorKind string         `json:"error_kind,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt int64          `json:"created_at,omitempty"`
}

func fromOutcome(o *pipeline.Outcome) Extraction {
	e := Extraction{
		Object:   "extraction",
		Source:   o.Input.Source(),
		Filename: o.Filename,
		Chunks:   o.Chunks,
	}
	if o.RecordID != uuid.Nil {
		e.ID = o.RecordID.String()
	}
	if o.Format.Valid() {
		e.Format = o.Format.String()
	}
	if o.Document != nil {
		e.Text = o.Document.Text
		e.Metadata = o.Document.Metadata
	}
	if o.Err != nil {
		e.ErrorKind = pipeline.ErrorKind(o.Err)
		e.Error = o.Err.Error()
	}
	return e
}

func fromRecord(r *storage.Extraction) Extraction {
	return Extraction{
		ID:        r.ID.String(),
		Object:    "extraction",
		Source:    r.Source,
		Filename:  r.Filename,
		Format:    r.Format,
		Text:      r.Text,
		Metadata:  r.Metadata,
		Chunks:    r.Chunks,
		ErrorKind: r.ErrorKind,
		Error:     r.Error,
		CreatedAt: r.CreatedAt.Unix(),
	}
}

// ListExtractionsResponse represents the newest extraction records
type ListExtractionsResponse struct {
	Object string       `json:"object"` // Always "list"
	Data   []Extraction `json:"data"`
}

// FormatInfo describes one supported document format
type FormatInfo struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

func formatInfos() []FormatInfo {
	formats := extractor.Formats()
	out := make([]FormatInfo, len(formats))
	for i, f := range formats {
		out[i] = FormatInfo{Name: f.String(), MimeType: f.MimeType()}
	}
	return out
}
