// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"path"
	"strings"
)

// Format identifies one of the supported document encodings.
// The zero value is not a valid format.
type Format int

const (
	FormatPDF Format = iota + 1
	FormatDocx
	FormatXlsx
	FormatPptx
	FormatHTML
	FormatCSV
	FormatJSON
	FormatXML
	FormatText
	FormatMarkdown
)

var formatNames = map[Format]string{
	FormatPDF:      "pdf",
	FormatDocx:     "docx",
	FormatXlsx:     "xlsx",
	FormatPptx:     "pptx",
	FormatHTML:     "html",
	FormatCSV:      "csv",
	FormatJSON:     "json",
	FormatXML:      "xml",
	FormatText:     "txt",
	FormatMarkdown: "markdown",
}

var mimeTypes = map[Format]string{
	FormatPDF:      "application/pdf",
	FormatDocx:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatXlsx:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPptx:     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	FormatHTML:     "text/html",
	FormatCSV:      "text/csv",
	FormatJSON:     "application/json",
	FormatXML:      "application/xml",
	FormatText:     "text/plain",
	FormatMarkdown: "text/markdown",
}

// extensions maps a lowercased file extension (without the dot) to a format.
var extensions = map[string]Format{
	"pdf":      FormatPDF,
	"docx":     FormatDocx,
	"xlsx":     FormatXlsx,
	"pptx":     FormatPptx,
	"html":     FormatHTML,
	"htm":      FormatHTML,
	"csv":      FormatCSV,
	"json":     FormatJSON,
	"xml":      FormatXML,
	"txt":      FormatText,
	"text":     FormatText,
	"log":      FormatText,
	"md":       FormatMarkdown,
	"markdown": FormatMarkdown,
}

// Formats returns every supported format in declaration order.
func Formats() []Format {
	return []Format{
		FormatPDF, FormatDocx, FormatXlsx, FormatPptx, FormatHTML,
		FormatCSV, FormatJSON, FormatXML, FormatText, FormatMarkdown,
	}
}

// String returns the canonical format name, the value stored under the
// "format" metadata key.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

// MimeType returns the media type recorded for stored files of this format.
func (f Format) MimeType() string {
	if m, ok := mimeTypes[f]; ok {
		return m
	}
	return "application/octet-stream"
}

// FromPath detects the format of a file path or URL from its extension.
// Anything after a '?' is ignored so query strings do not hide the
// extension. The second result is false for missing or unknown extensions.
func FromPath(p string) (Format, bool) {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return 0, false
	}
	base := path.Base(p)
	// A dot at position zero marks a hidden file, not an extension.
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return 0, false
	}
	f, ok := extensions[strings.ToLower(base[dot+1:])]
	return f, ok
}

// FromName resolves a bare format name such as "json" or "htm". It goes
// through the same extension table as FromPath.
func FromName(name string) (Format, bool) {
	return FromPath("file." + name)
}
