// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF extracts the plain text of every page, pages joined by '\n'.
// The reader can panic on malformed files; a panic becomes a format error.
func extractPDF(content []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, formatErrorf("PDF extraction failed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, formatError("PDF extraction failed", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; ok {
				continue
			}
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, formatError(fmt.Sprintf("PDF extraction failed on page %d", i), err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}

	return newDocument(FormatPDF, sb.String(), Metadata{"page_count": numPages}), nil
}
