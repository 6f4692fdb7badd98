// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXlsx renders each worksheet as tab-separated rows under a
// "--- Sheet: name ---" header. A sheet whose rows cannot be read is left
// out of the text but still listed in sheet_names.
func extractXlsx(content []byte) (*Document, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, formatError("XLSX open failed", err)
	}
	defer wb.Close()

	names := wb.GetSheetList()
	var lines []string
	for _, name := range names {
		rows, err := wb.GetRows(name)
		if err != nil {
			continue
		}
		lines = append(lines, "--- Sheet: "+name+" ---")
		for _, row := range rows {
			lines = append(lines, strings.Join(row, "\t"))
		}
	}

	if names == nil {
		names = []string{}
	}
	return newDocument(FormatXlsx, strings.Join(lines, "\n"), Metadata{
		"sheet_names": names,
		"sheet_count": len(names),
	}), nil
}
