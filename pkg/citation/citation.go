// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation rewrites the opaque inline citation markers embedded by
// the hosted assistant into compact numbered markers, and produces an
// ordered, per-file deduplicated source list.
//
// The service annotates generated text with references like
// 【4:0†source】 at character spans it reports alongside the message. This
// package replaces each span with a [n] marker where n identifies the
// cited source file, and resolves file IDs back to the relative paths
// recorded at upload time.
package citation

import (
	"fmt"
	"sort"
	"strings"
)

// UnknownFilename is used when an annotation's file ID is not in the
// lookup and the service supplied no filename of its own.
const UnknownFilename = "Unknown"

// Annotation is one inline citation reported by the hosted service.
type Annotation struct {
	// FileID identifies the uploaded file the citation points at.
	FileID string
	// Filename is the service-reported name, used only when FileID cannot
	// be resolved locally.
	Filename string
	// Quote is the excerpt the citation is based on, when provided.
	Quote string
	// Text is the literal marker substring embedded in the answer.
	Text string
	// StartIndex and EndIndex delimit the marker's span in the answer as
	// rune offsets. Nil when the service did not report a span.
	StartIndex *int
	EndIndex   *int
}

// Citation is one resolved source in the normalized answer.
type Citation struct {
	// Marker is the bracketed number, e.g. "[1]".
	Marker string `json:"marker"`
	// Filename is the relative path of the cited document.
	Filename string `json:"filename"`
	// Quote is the first non-empty excerpt seen for this file.
	Quote string `json:"quote,omitempty"`
}

// entry is an annotation during normalization, with resolved metadata.
type entry struct {
	order    int
	filename string
	quote    string
	text     string
	start    *int
	end      *int
	marker   string
	placed   bool
}

// Normalize rewrites text so every citation annotation appears as a [n]
// marker, and returns the ordered, deduplicated source list.
//
// Markers are numbered by the position of each file's first citation in
// the text; all citations of the same file share one number. Annotations
// without a usable span are matched by their literal marker text; anything
// still unplaced is appended to the end of the text so no citation is
// silently dropped.
func Normalize(text string, annotations []Annotation, fileIDLookup map[string]string) (string, []Citation) {
	if len(annotations) == 0 {
		return text, nil
	}

	runes := []rune(text)

	entries := make([]*entry, 0, len(annotations))
	for i, ann := range annotations {
		filename := ""
		if ann.FileID != "" {
			filename = fileIDLookup[ann.FileID]
		}
		if filename == "" {
			filename = ann.Filename
		}
		if filename == "" {
			filename = UnknownFilename
		}
		entries = append(entries, &entry{
			order:    i,
			filename: filename,
			quote:    ann.Quote,
			text:     ann.Text,
			start:    ann.StartIndex,
			end:      ann.EndIndex,
		})
	}

	// Recover spans for annotations that only carry marker text.
	for _, e := range entries {
		if e.start != nil && e.end != nil {
			continue
		}
		if e.text == "" {
			continue
		}
		if idx := runeIndex(runes, e.text); idx >= 0 {
			start := idx
			end := idx + len([]rune(e.text))
			e.start, e.end = &start, &end
		}
	}

	// Order by span position; annotations without a span sort last, ties
	// keep input order.
	ordered := make([]*entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		si, sj := spanKey(ordered[i]), spanKey(ordered[j])
		if si != sj {
			return si < sj
		}
		return ordered[i].order < ordered[j].order
	})

	// One marker per distinct file, numbered by first appearance.
	markers := make(map[string]string)
	var citations []Citation
	for _, e := range ordered {
		if m, ok := markers[e.filename]; ok {
			e.marker = m
			if e.quote != "" {
				for i := range citations {
					if citations[i].Filename == e.filename && citations[i].Quote == "" {
						citations[i].Quote = e.quote
					}
				}
			}
			continue
		}
		m := fmt.Sprintf("[%d]", len(markers)+1)
		markers[e.filename] = m
		e.marker = m
		citations = append(citations, Citation{Marker: m, Filename: e.filename, Quote: e.quote})
	}

	// Splice spans right to left so earlier offsets stay valid.
	spanned := make([]*entry, 0, len(entries))
	for _, e := range entries {
		if e.start != nil && e.end != nil {
			spanned = append(spanned, e)
		}
	}
	sort.SliceStable(spanned, func(i, j int) bool { return *spanned[i].start > *spanned[j].start })
	for _, e := range spanned {
		start, end := *e.start, *e.end
		if start < 0 || end < start || end > len(runes) {
			continue
		}
		out := make([]rune, 0, len(runes)-(end-start)+len(e.marker))
		out = append(out, runes[:start]...)
		out = append(out, []rune(e.marker)...)
		out = append(out, runes[end:]...)
		runes = out
		e.placed = true
	}

	// Fall back to replacing the literal marker text once.
	result := string(runes)
	for _, e := range entries {
		if e.placed || e.text == "" {
			continue
		}
		if strings.Contains(result, e.text) {
			result = strings.Replace(result, e.text, e.marker, 1)
			e.placed = true
		}
	}

	// Never drop a citation: append whatever is left.
	for _, e := range entries {
		if !e.placed {
			result = result + " " + e.marker
			e.placed = true
		}
	}

	return result, citations
}

// RenderSources formats the source list printed under an answer.
//
// Compact mode puts every "[n] file" pair on one line. Verbose mode gives
// each source its own line with the quoted excerpt indented beneath it.
func RenderSources(citations []Citation, withQuotes bool) []string {
	if len(citations) == 0 {
		return nil
	}

	if withQuotes {
		lines := []string{"Sources:"}
		for _, c := range citations {
			lines = append(lines, fmt.Sprintf("%s %s", c.Marker, c.Filename))
			if c.Quote != "" {
				lines = append(lines, fmt.Sprintf("    %q", c.Quote))
			}
		}
		return lines
	}

	parts := make([]string, 0, len(citations))
	for _, c := range citations {
		parts = append(parts, fmt.Sprintf("%s %s", c.Marker, c.Filename))
	}
	return []string{"Sources:", strings.Join(parts, "  ")}
}

// spanKey returns the sort position of an entry; entries without a span
// sort after every positioned entry.
func spanKey(e *entry) int {
	if e.start == nil {
		return int(^uint(0) >> 1)
	}
	return *e.start
}

// runeIndex locates substr in runes and returns its rune offset, or -1.
func runeIndex(runes []rune, substr string) int {
	byteIdx := strings.Index(string(runes), substr)
	if byteIdx < 0 {
		return -1
	}
	return len([]rune(string(runes)[:byteIdx]))
}
