// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// extractJSON parses a single JSON value and pretty-prints it with a
// two-space indent. Object keys come out sorted, so output is stable.
func extractJSON(content []byte) (*Document, error) {
	text, err := decodeUTF8(content)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, formatError("Invalid JSON", err)
	}
	// Only whitespace may follow the value.
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after top-level value")
		}
		return nil, formatError("Invalid JSON", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return nil, formatError("JSON re-encode failed", err)
	}

	return newDocument(FormatJSON, strings.TrimSuffix(buf.String(), "\n"), Metadata{
		"type": jsonTypeSummary(value),
	}), nil
}

func jsonTypeSummary(v any) string {
	switch t := v.(type) {
	case []any:
		return fmt.Sprintf("array[%d]", len(t))
	case map[string]any:
		return fmt.Sprintf("object{%d keys}", len(t))
	default:
		return "scalar"
	}
}
