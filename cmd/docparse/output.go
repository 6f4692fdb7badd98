// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/leseb/docparse/pkg/extractor"
	"github.com/leseb/docparse/pkg/pipeline"
)

// outcomeJSON is the JSON shape of one processed document.
type outcomeJSON struct {
	Source    string             `json:"source"`
	Format    string             `json:"format,omitempty"`
	Text      string             `json:"text"`
	Metadata  extractor.Metadata `json:"metadata,omitempty"`
	Chunks    int                `json:"chunks,omitempty"`
	RecordID  string             `json:"record_id,omitempty"`
	ErrorKind string             `json:"error_kind,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func toJSON(o *pipeline.Outcome) outcomeJSON {
	j := outcomeJSON{
		Source: o.Input.Source(),
		Chunks: len(o.Chunks),
	}
	if o.Format.Valid() {
		j.Format = o.Format.String()
	}
	if o.Document != nil {
		j.Text = o.Document.Text
		j.Metadata = o.Document.Metadata
	}
	if o.RecordID != uuid.Nil {
		j.RecordID = o.RecordID.String()
	}
	if o.Err != nil {
		j.ErrorKind = pipeline.ErrorKind(o.Err)
		j.Error = o.Err.Error()
	}
	return j
}

func writeJSON(w io.Writer, outcomes []pipeline.Outcome) error {
	out := make([]outcomeJSON, len(outcomes))
	for i := range outcomes {
		out[i] = toJSON(&outcomes[i])
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeText prints each document under a header line. A single successful
// document is printed bare.
func writeText(w io.Writer, outcomes []pipeline.Outcome) error {
	if len(outcomes) == 1 && !outcomes[0].Failed() {
		_, err := fmt.Fprintln(w, outcomes[0].Document.Text)
		return err
	}
	for i := range outcomes {
		o := &outcomes[i]
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if o.Failed() {
			if _, err := fmt.Fprintf(w, "==> %s <==\nerror [%s]: %v\n", o.Input.Source(), pipeline.ErrorKind(o.Err), o.Err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "==> %s (%s) <==\n%s\n", o.Input.Source(), o.Format, o.Document.Text); err != nil {
			return err
		}
	}
	return nil
}
