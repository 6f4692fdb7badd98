// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"errors"
)

const docxMainPart = "word/document.xml"

var docxRuns = textRuns{
	run:       wordText,
	paragraph: &wordParagraph,
}

// extractDocx reads word/document.xml from the archive. Any XML defect is
// fatal: a truncated body would be misleading.
func extractDocx(content []byte) (*Document, error) {
	zr, err := openZip(content, "DOCX")
	if err != nil {
		return nil, err
	}

	for _, entry := range zr.File {
		if entry.Name != docxMainPart {
			continue
		}
		data, err := readZipEntry(entry)
		if err != nil {
			return nil, ioError("read "+docxMainPart, err)
		}
		text, err := docxRuns.extract(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return newDocument(FormatDocx, text, nil), nil
	}

	return nil, formatError("Missing "+docxMainPart, errors.New("file not found in archive"))
}
