// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

// Metadata holds format-specific attributes of an extracted document.
// The "format" key is always present.
type Metadata map[string]any

// Format returns the value of the "format" key.
func (m Metadata) Format() string {
	s, _ := m["format"].(string)
	return s
}

// Document is the uniform result of every extractor. Text uses '\n' as the
// line, row and paragraph separator.
type Document struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

func newDocument(format Format, text string, fields Metadata) *Document {
	meta := Metadata{"format": format.String()}
	for k, v := range fields {
		meta[k] = v
	}
	return &Document{Text: text, Metadata: meta}
}
