// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import "strings"

// extractText returns UTF-8 validated content as-is.
func extractText(content []byte) (*Document, error) {
	return lineDocument(FormatText, content)
}

// extractMarkdown is a plain-text pass-through; markup is not interpreted.
func extractMarkdown(content []byte) (*Document, error) {
	return lineDocument(FormatMarkdown, content)
}

func lineDocument(format Format, content []byte) (*Document, error) {
	text, err := decodeUTF8(content)
	if err != nil {
		return nil, err
	}
	return newDocument(format, text, Metadata{"line_count": countLines(text)}), nil
}

// countLines counts '\n'-terminated lines. A final line without a newline
// counts; a trailing newline does not open an extra empty line.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
