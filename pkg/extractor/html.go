// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/mattn/go-runewidth"
)

// htmlWrapWidth is the column width of rendered HTML text.
const htmlWrapWidth = 120

// htmlConverter is safe for concurrent use.
var htmlConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(
			commonmark.WithListEndComment(false),
		),
		table.NewTablePlugin(),
	),
	converter.WithEscapeMode(converter.EscapeModeDisabled),
)

// extractHTML renders the page as Markdown wrapped at htmlWrapWidth
// columns. Scripts, styles and the document head are dropped.
func extractHTML(content []byte) (*Document, error) {
	md, err := htmlConverter.ConvertReader(bytes.NewReader(content))
	if err != nil {
		return nil, formatError("HTML render failed", err)
	}
	return newDocument(FormatHTML, wrapMarkdown(string(md), htmlWrapWidth), nil), nil
}

// markdownPrefix matches the quote markers and list marker that open a
// Markdown line.
var markdownPrefix = regexp.MustCompile(`^(\s*(?:> ?)*)((?:[-*+]|\d+\.) )?`)

var markdownUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">")

// wrapMarkdown wraps prose lines to width columns, keeping quote and list
// prefixes on continuation lines. Fenced code, tables and headings are
// left as they are.
func wrapMarkdown(md string, width int) string {
	var out []string
	fence := ""
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if fence != "" {
			out = append(out, line)
			if strings.TrimRight(trimmed, " ") == fence {
				fence = ""
			}
			continue
		}
		if f := openingFence(trimmed); f != "" {
			fence = f
			out = append(out, line)
			continue
		}

		line = markdownUnescaper.Replace(strings.TrimRight(line, " \t"))
		if runewidth.StringWidth(line) <= width ||
			strings.HasPrefix(trimmed, "|") || strings.HasPrefix(trimmed, "#") {
			out = append(out, line)
			continue
		}

		m := markdownPrefix.FindStringSubmatch(line)
		first := m[0]
		rest := m[1] + strings.Repeat(" ", len(m[2]))
		out = append(out, wrapText(line[len(first):], width, first, rest)...)
	}
	return strings.Join(out, "\n")
}

// openingFence returns the backtick or tilde run that opens a code block,
// or "" when line does not open one.
func openingFence(line string) string {
	for _, c := range []byte{'`', '~'} {
		n := 0
		for n < len(line) && line[n] == c {
			n++
		}
		if n >= 3 {
			return line[:n]
		}
	}
	return ""
}

// wrapText greedily fills lines up to width display columns. Hard breaks in
// text are kept. Words wider than a line are placed on a line of their own.
func wrapText(text string, width int, first, rest string) []string {
	var out []string
	prefix := first
	for _, hard := range strings.Split(text, "\n") {
		line := prefix
		empty := true
		for _, word := range strings.Fields(hard) {
			if !empty && runewidth.StringWidth(line)+1+runewidth.StringWidth(word) > width {
				out = append(out, line)
				line, empty = rest, true
			}
			if !empty {
				line += " "
			}
			line += word
			empty = false
		}
		out = append(out, strings.TrimRight(line, " "))
		prefix = rest
	}
	return out
}
