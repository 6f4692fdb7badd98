// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func renderHTML(t *testing.T, src string) string {
	t.Helper()
	doc, err := Extract(FormatHTML, []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	return doc.Text
}

func TestExtractHTML_Blocks(t *testing.T) {
	got := renderHTML(t, "<html><body><h1>Title</h1><p>Hello World</p></body></html>")
	if got != "# Title\n\nHello World" {
		t.Errorf("text = %q", got)
	}
}

func TestExtractHTML_Links(t *testing.T) {
	got := renderHTML(t, `<p>See <a href="https://example.com">the docs</a> now.</p>`)
	if got != "See [the docs](https://example.com) now." {
		t.Errorf("text = %q", got)
	}
}

func TestExtractHTML_NoScript(t *testing.T) {
	got := renderHTML(t, "<html><head><title>T</title><style>body{}</style></head><body><p>Content here</p><script>alert(1)</script></body></html>")
	if strings.Contains(got, "body{}") || strings.Contains(got, "alert") {
		t.Errorf("script/style content leaked: %q", got)
	}
	if got != "Content here" {
		t.Errorf("text = %q", got)
	}
}

func TestExtractHTML_Lists(t *testing.T) {
	got := renderHTML(t, "<ul><li>one</li><li>two<ul><li>inner</li></ul></li></ul><ol><li>first</li><li>second</li></ol>")
	for _, want := range []string{"- one\n", "- two\n", "  - inner", "1. first\n", "2. second"} {
		if !strings.Contains(got, want) {
			t.Errorf("text %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "THE END") {
		t.Errorf("list separator comment leaked: %q", got)
	}
}

func TestExtractHTML_InlineWhitespace(t *testing.T) {
	got := renderHTML(t, "<p>  lots   of\n\tspace <b>bold</b> text<br>next line </p>")
	if !strings.Contains(got, "lots of space **bold** text") {
		t.Errorf("text = %q", got)
	}
	lines := strings.Split(got, "\n")
	if lines[len(lines)-1] != "next line" {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}
	for i, l := range lines {
		if strings.TrimRight(l, " ") != l {
			t.Errorf("line %d has trailing spaces: %q", i, l)
		}
	}
}

func TestExtractHTML_Pre(t *testing.T) {
	got := renderHTML(t, "<p>code:</p><pre>  a := 1\n    b := 2</pre>")
	if !strings.HasPrefix(got, "code:\n\n") || !strings.Contains(got, "  a := 1\n    b := 2") {
		t.Errorf("text = %q", got)
	}
}

func TestExtractHTML_Wrap(t *testing.T) {
	words := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	got := renderHTML(t, "<blockquote><p>"+words+"</p></blockquote>")
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapped output, got %d line(s)", len(lines))
	}
	for i, l := range lines {
		if w := runewidth.StringWidth(l); w > htmlWrapWidth {
			t.Errorf("line %d is %d columns wide", i, w)
		}
		if !strings.HasPrefix(l, "> ") {
			t.Errorf("line %d lost quote prefix: %q", i, l)
		}
	}
}

func TestExtractHTML_Table(t *testing.T) {
	got := renderHTML(t, "<table><tr><th>Name</th><th>Age</th></tr><tr><td>Alice</td><td>30</td></tr></table>")
	for _, want := range []string{"| Name", "| Alice", "|--"} {
		if !strings.Contains(got, want) {
			t.Errorf("text %q missing %q", got, want)
		}
	}
}

func TestExtractHTML_AngleBrackets(t *testing.T) {
	got := renderHTML(t, "<p>if a &lt; b &amp;&amp; c &gt; d</p>")
	if got != "if a < b && c > d" {
		t.Errorf("text = %q", got)
	}
}

func TestWrapMarkdown(t *testing.T) {
	long := strings.Repeat("x", 30)
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"short lines kept", "# Title\n\nbody", 80, "# Title\n\nbody"},
		{"trailing spaces", "one  \ntwo", 80, "one\ntwo"},
		{"bullet hanging indent", "- aaa bbb ccc ddd eee", 12, "- aaa bbb\n  ccc ddd\n  eee"},
		{"ordered hanging indent", "10. aaa bbb ccc", 10, "10. aaa\n    bbb\n    ccc"},
		{"quote prefix", "> aaa bbb ccc", 9, "> aaa bbb\n> ccc"},
		{"fenced code verbatim", "```\n" + long + " " + long + "  \n```", 20, "```\n" + long + " " + long + "  \n```"},
		{"table verbatim", "| " + long + " | " + long + " |", 20, "| " + long + " | " + long + " |"},
		{"unescape outside code", "a &lt;b&gt;\n```\n&lt;\n```", 80, "a <b>\n```\n&lt;\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapMarkdown(tt.in, tt.width); got != tt.want {
				t.Errorf("wrapMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("aaa bbb ccc ddd", 8, "- ", "  ")
	want := []string{"- aaa", "  bbb", "  ccc", "  ddd"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("wrapText() = %q, want %q", got, want)
	}

	got = wrapText("averyveryverylongword x", 5, "", "")
	if got[0] != "averyveryverylongword" || got[1] != "x" {
		t.Errorf("long words should sit on their own line, got %q", got)
	}
}
