// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nsWordML    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsDrawingML = "http://schemas.openxmlformats.org/drawingml/2006/main"
)

// qname is a prefixed element name such as w:t. It matches the decoded
// name whether or not the prefix was bound to its namespace.
type qname struct {
	prefix string
	space  string
	local  string
}

func (q qname) matches(n xml.Name) bool {
	return n.Local == q.local && (n.Space == q.space || n.Space == q.prefix)
}

func (q qname) String() string { return q.prefix + ":" + q.local }

var (
	wordText      = qname{prefix: "w", space: nsWordML, local: "t"}
	wordParagraph = qname{prefix: "w", space: nsWordML, local: "p"}
	drawingText   = qname{prefix: "a", space: nsDrawingML, local: "t"}
)

// textRuns streams OOXML and concatenates the character data found inside
// every run element, in document order.
type textRuns struct {
	run qname
	// paragraph, when set, emits a newline each time the element closes.
	paragraph *qname
	sep       string
	// lenient stops at the first syntax error and keeps what was read.
	lenient bool
}

func (tr textRuns) extract(r io.Reader) (string, error) {
	dec := newXMLDecoder(r)
	var parts []string
	inRun := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if tr.lenient {
				break
			}
			return "", formatError("XML parse error", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if tr.run.matches(t.Name) {
				inRun = true
			}
		case xml.CharData:
			if inRun {
				parts = append(parts, string(t))
			}
		case xml.EndElement:
			switch {
			case tr.run.matches(t.Name):
				inRun = false
			case tr.paragraph != nil && tr.paragraph.matches(t.Name):
				parts = append(parts, "\n")
			}
		}
	}
	return strings.Join(parts, tr.sep), nil
}

// openZip opens content as an in-memory ZIP archive.
func openZip(content []byte, kind string) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, formatError(fmt.Sprintf("Not a valid %s/ZIP", kind), err)
	}
	return zr, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
