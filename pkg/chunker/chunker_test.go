// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_EmptyInput(t *testing.T) {
	result := Split("", 100, 10)
	if result != nil {
		t.Errorf("expected nil for empty input, got %v", result)
	}
}

func TestSplit_ShortText(t *testing.T) {
	text := "hello"
	chunks := Split(text, 100, 10)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("expected %q, got %q", text, chunks[0])
	}
}

func TestSplit_ExactSize(t *testing.T) {
	text := "abcde"
	chunks := Split(text, 5, 0)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("expected [%q], got %q", text, chunks)
	}
}

func TestSplit_BasicChunking(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		size      int
		overlap   int
		wantCount int
	}{
		{"no overlap", "abcdefghij", 5, 0, 2},
		{"with overlap", "abcdefghij", 5, 2, 3},
		{"large overlap", "abcdefghij", 5, 4, 6}, // step=1, starts at 0..5 then end==len
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.text, tt.size, tt.overlap)
			if len(chunks) != tt.wantCount {
				t.Errorf("expected %d chunks, got %d: %v", tt.wantCount, len(chunks), chunks)
			}
			for i, c := range chunks {
				if len(c) > tt.size {
					t.Errorf("chunk[%d] length %d exceeds size %d", i, len(c), tt.size)
				}
			}
			if tt.overlap > 0 {
				step := tt.size - tt.overlap
				for i := 0; i < len(chunks)-1; i++ {
					suffixLen := len(chunks[i]) - step
					if suffixLen > 0 && suffixLen <= len(chunks[i+1]) {
						if chunks[i][step:] != chunks[i+1][:suffixLen] {
							t.Errorf("overlap mismatch between chunk[%d] and chunk[%d]", i, i+1)
						}
					}
				}
			}
		})
	}
}

func TestSplit_MultiByteRunes(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 10) // 70 runes, 210 bytes
	chunks := Split(text, 16, 4)

	var rebuilt strings.Builder
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk[%d] is not valid UTF-8: %q", i, c)
		}
		if n := utf8.RuneCountInString(c); n > 16 {
			t.Errorf("chunk[%d] has %d runes, want <= 16", i, n)
		}
		if i == 0 {
			rebuilt.WriteString(c)
			continue
		}
		r := []rune(c)
		if len(r) > 4 {
			rebuilt.WriteString(string(r[4:]))
		}
	}
	if rebuilt.String() != text {
		t.Errorf("chunks do not reassemble the input")
	}
	if got := []rune(chunks[0]); string(got[12:]) != string([]rune(chunks[1])[:4]) {
		t.Errorf("rune overlap mismatch: %q vs %q", string(got[12:]), string([]rune(chunks[1])[:4]))
	}
}

func TestSplit_DefaultSize(t *testing.T) {
	text := strings.Repeat("x", 500)
	for _, size := range []int{0, -1} {
		if chunks := Split(text, size, 0); len(chunks) != 1 {
			t.Errorf("size %d: expected 1 chunk with default size (%d), got %d", size, DefaultSize, len(chunks))
		}
	}

	longText := strings.Repeat("y", DefaultSize+100)
	if chunks := Split(longText, 0, 0); len(chunks) < 2 {
		t.Errorf("expected at least 2 chunks for text longer than DefaultSize, got %d", len(chunks))
	}
}

func TestSplit_OverlapClamping(t *testing.T) {
	text := strings.Repeat("a", 100)
	for _, overlap := range []int{-5, 20, 30} {
		chunks := Split(text, 20, overlap)
		// clamped overlap is 20/4 = 5, step 15, so ceil(100/15) chunks
		if len(chunks) != 7 {
			t.Errorf("overlap %d: expected 7 chunks, got %d", overlap, len(chunks))
		}
	}
}

func TestSplit_MinimalSize(t *testing.T) {
	chunks := Split("abc", 1, 0)
	if len(chunks) != 3 || chunks[0] != "a" || chunks[1] != "b" || chunks[2] != "c" {
		t.Errorf("unexpected chunks: %v", chunks)
	}
}

func TestSplit_LargeText(t *testing.T) {
	text := strings.Repeat("x", 2000)
	chunks := Split(text, DefaultSize, DefaultOverlap)

	// step=600: [0,800), [600,1400), [1200,2000)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != DefaultSize || len(chunks[2]) != DefaultSize {
		t.Errorf("expected full-size first and last chunks, got %d and %d", len(chunks[0]), len(chunks[2]))
	}
	step := DefaultSize - DefaultOverlap
	if chunks[0][step:] != chunks[1][:DefaultOverlap] {
		t.Errorf("overlap region mismatch between chunk 0 and 1")
	}
}

func TestTokensToRunes(t *testing.T) {
	tests := []struct {
		tokens int
		want   int
	}{
		{100, 400},
		{0, 0},
		{1, 4},
	}
	for _, tt := range tests {
		if got := TokensToRunes(tt.tokens); got != tt.want {
			t.Errorf("TokensToRunes(%d) = %d, want %d", tt.tokens, got, tt.want)
		}
	}
}
