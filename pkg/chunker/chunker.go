// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunker splits extracted text into overlapping windows for
// downstream indexing. Sizes are counted in runes, so a multi-byte
// character is never cut in half.
package chunker

// DefaultSize is the default chunk size in runes.
const DefaultSize = 800

// DefaultOverlap is the default overlap between chunks in runes.
const DefaultOverlap = 200

// Split splits text into fixed-size chunks with overlap.
// If size <= 0, DefaultSize is used. If overlap < 0 or >= size,
// DefaultOverlap is used, clamped to size/4 when it does not fit.
// Empty text yields nil.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}

	if text == "" {
		return nil
	}

	// offsets[i] is the byte offset of rune i; the final entry is len(text).
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	n := len(offsets)
	offsets = append(offsets, len(text))

	step := size - overlap
	if step <= 0 {
		step = 1
	}

	var chunks []string
	for start := 0; start < n; start += step {
		end := min(start+size, n)
		chunks = append(chunks, text[offsets[start]:offsets[end]])
		if end == n {
			break
		}
	}
	return chunks
}

// TokensToRunes converts a token count to an approximate rune count
// using a ~4:1 ratio.
func TokensToRunes(tokens int) int {
	return tokens * 4
}
