// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package extractor turns document bytes into plain text plus metadata.
//
// Each supported format has one extraction function. All of them return
// the same *Document shape or a *ParseError, so callers can process files
// of any format through a single call:
//
//	format, ok := extractor.FromPath("report.docx")
//	if !ok {
//		// unsupported
//	}
//	doc, err := extractor.Extract(format, content)
//
// Extraction is synchronous and keeps no state between calls; concurrent
// calls on different buffers are safe.
package extractor

import (
	"fmt"
)

// Func extracts a Document from raw bytes.
type Func func(content []byte) (*Document, error)

// Lookup returns the extraction function for a format.
func Lookup(format Format) (Func, bool) {
	switch format {
	case FormatText:
		return extractText, true
	case FormatMarkdown:
		return extractMarkdown, true
	case FormatCSV:
		return extractCSV, true
	case FormatJSON:
		return extractJSON, true
	case FormatXML:
		return extractXML, true
	case FormatHTML:
		return extractHTML, true
	case FormatDocx:
		return extractDocx, true
	case FormatPptx:
		return extractPptx, true
	case FormatXlsx:
		return extractXlsx, true
	case FormatPDF:
		return extractPDF, true
	}
	return nil, false
}

// Extract runs the extractor registered for format. It never panics: a
// panic inside a decoder is reported as a KindFormat error.
func Extract(format Format, content []byte) (doc *Document, err error) {
	fn, ok := Lookup(format)
	if !ok {
		return nil, formatErrorf("no extractor for format %d", int(format))
	}

	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, formatErrorf("%s extractor panicked: %v", format, r)
		}
	}()
	return fn(content)
}

// ExtractFile detects the format from filename and extracts content.
// Unknown extensions return ErrUnsupportedFormat.
func ExtractFile(content []byte, filename string) (*Document, error) {
	format, ok := FromPath(filename)
	if !ok {
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
	return Extract(format, content)
}
