// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned by ExtractFile when the filename does not
// map to a known format.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// KindIO covers failures reading the underlying byte stream.
	KindIO ErrorKind = iota + 1
	// KindEncoding means the bytes are not valid UTF-8 where text is required.
	KindEncoding
	// KindFormat covers structural problems specific to a format.
	KindFormat
)

// String returns a short lowercase name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindEncoding:
		return "encoding"
	case KindFormat:
		return "format"
	default:
		return "unknown"
	}
}

// ParseError is the only error type returned by the extractors.
type ParseError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	var prefix string
	switch e.Kind {
	case KindIO:
		prefix = "IO error"
	case KindEncoding:
		prefix = "UTF-8 decoding error"
	default:
		prefix = "Parse error"
	}
	switch {
	case e.Msg == "" && e.Err != nil:
		return prefix + ": " + e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	default:
		return prefix + ": " + e.Msg
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsKind reports whether err wraps a ParseError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == kind
}

func ioError(msg string, err error) error {
	return &ParseError{Kind: KindIO, Msg: msg, Err: err}
}

func formatError(msg string, err error) error {
	return &ParseError{Kind: KindFormat, Msg: msg, Err: err}
}

func formatErrorf(format string, args ...any) error {
	return &ParseError{Kind: KindFormat, Msg: fmt.Sprintf(format, args...)}
}

// decodeUTF8 returns content as a string or a KindEncoding error naming the
// first invalid byte offset.
func decodeUTF8(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	return "", &ParseError{
		Kind: KindEncoding,
		Msg:  fmt.Sprintf("invalid utf-8 sequence at byte offset %d", invalidUTF8Offset(content)),
	}
}

func invalidUTF8Offset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}
