// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// extractCSV reads CSV content and returns it as tab-separated text.
// The first record is the header; rows may have differing field counts.
func extractCSV(content []byte) (*Document, error) {
	if !utf8.Valid(content) {
		return nil, formatErrorf("CSV header error: invalid utf-8 at byte offset %d", invalidUTF8Offset(content))
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable field counts

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return newDocument(FormatCSV, "", Metadata{"column_count": 0, "row_count": 0}), nil
	}
	if err != nil {
		return nil, formatError("CSV header error", err)
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(header, "\t"))

	rowCount := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, formatError("CSV row error", err)
		}
		sb.WriteString("\n")
		sb.WriteString(strings.Join(record, "\t"))
		rowCount++
	}

	return newDocument(FormatCSV, sb.String(), Metadata{
		"column_count": len(header),
		"row_count":    rowCount,
	}), nil
}
