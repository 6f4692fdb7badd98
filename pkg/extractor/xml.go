// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// xmlEncodingDecl matches the encoding attribute of a leading XML
// declaration.
var xmlEncodingDecl = regexp.MustCompile(`^\s*<\?xml[^>]*?\sencoding\s*=\s*["']([^"']+)["']`)

// extractXML collects every non-blank text node in document order, one per
// line. Malformed markup is a format error; nothing partial is returned.
// Documents declaring a non-UTF-8 encoding are transcoded by the decoder.
func extractXML(content []byte) (*Document, error) {
	if !declaresForeignCharset(content) {
		if _, err := decodeUTF8(content); err != nil {
			return nil, err
		}
	}

	dec := newXMLDecoder(bytes.NewReader(content))
	var lines []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				return nil, pe
			}
			return nil, formatError("XML parse error", err)
		}
		if cd, ok := tok.(xml.CharData); ok {
			if s := strings.TrimSpace(string(cd)); s != "" {
				lines = append(lines, s)
			}
		}
	}

	return newDocument(FormatXML, strings.Join(lines, "\n"), nil), nil
}

// declaresForeignCharset reports whether content opens with an XML
// declaration naming an encoding other than UTF-8.
func declaresForeignCharset(content []byte) bool {
	head := content[:min(len(content), 256)]
	m := xmlEncodingDecl.FindSubmatch(head)
	if m == nil {
		return false
	}
	label := strings.ToLower(string(m[1]))
	return label != "utf-8" && label != "utf8"
}

// newXMLDecoder returns a strict decoder that understands the charset
// labels found in XML declarations. Unknown labels are encoding errors.
func newXMLDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		cr, err := charset.NewReaderLabel(label, input)
		if err != nil {
			return nil, &ParseError{Kind: KindEncoding, Msg: "unsupported charset " + label, Err: err}
		}
		return cr, nil
	}
	return dec
}
