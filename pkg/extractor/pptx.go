// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	slidePrefix = "ppt/slides/slide"
	slideSuffix = ".xml"
)

var pptxRuns = textRuns{
	run:     drawingText,
	sep:     " ",
	lenient: true,
}

// extractPptx emits the text of every slide under a "--- Slide N ---"
// header. Slides that cannot be read are skipped rather than failing the
// whole deck.
func extractPptx(content []byte) (*Document, error) {
	zr, err := openZip(content, "PPTX")
	if err != nil {
		return nil, err
	}

	var blocks []string
	for _, entry := range slideEntries(zr) {
		data, err := readZipEntry(entry)
		if err != nil {
			continue
		}
		text, err := pptxRuns.extract(bytes.NewReader(data))
		if err != nil {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("--- Slide %d ---\n%s", len(blocks)+1, text))
	}

	return newDocument(FormatPptx, strings.Join(blocks, "\n\n"), Metadata{
		"slide_count": len(blocks),
	}), nil
}

// slideEntries returns the slide parts ordered by slide number, so that
// slide10 follows slide9.
func slideEntries(zr *zip.Reader) []*zip.File {
	type slide struct {
		num   int
		entry *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, slidePrefix) || !strings.HasSuffix(f.Name, slideSuffix) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(f.Name, slidePrefix), slideSuffix))
		if err != nil {
			num = -1
		}
		slides = append(slides, slide{num: num, entry: f})
	}
	sort.SliceStable(slides, func(i, j int) bool {
		if slides[i].num != slides[j].num {
			return slides[i].num < slides[j].num
		}
		return slides[i].entry.Name < slides[j].entry.Name
	})

	out := make([]*zip.File, len(slides))
	for i, s := range slides {
		out[i] = s.entry
	}
	return out
}
