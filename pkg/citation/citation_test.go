package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestNormalize_NoAnnotations(t *testing.T) {
	text, citations := Normalize("Plain answer.", nil, nil)
	assert.Equal(t, "Plain answer.", text)
	assert.Nil(t, citations)
}

func TestNormalize_SpliceSpans(t *testing.T) {
	text := "Go ships binaries【4:0†a】 and caches builds【4:1†b】."
	runes := []rune(text)
	startA := 17
	endA := startA + 7 // 【4:0†a】
	startB := len(runes) - 8
	endB := startB + 7

	anns := []Annotation{
		{FileID: "f-1", StartIndex: intp(startA), EndIndex: intp(endA)},
		{FileID: "f-2", StartIndex: intp(startB), EndIndex: intp(endB)},
	}
	lookup := map[string]string{"f-1": "build.md", "f-2": "cache.md"}

	got, citations := Normalize(text, anns, lookup)
	assert.Equal(t, "Go ships binaries[1] and caches builds[2].", got)
	assert.Equal(t, []Citation{
		{Marker: "[1]", Filename: "build.md"},
		{Marker: "[2]", Filename: "cache.md"},
	}, citations)
}

func TestNormalize_DedupeSameFile(t *testing.T) {
	text := "First【a】 then second【b】."
	anns := []Annotation{
		{FileID: "f-1", Text: "【a】", Quote: "first excerpt"},
		{FileID: "f-1", Text: "【b】"},
	}
	lookup := map[string]string{"f-1": "doc.md"}

	got, citations := Normalize(text, anns, lookup)
	assert.Equal(t, "First[1] then second[1].", got)
	assert.Equal(t, []Citation{
		{Marker: "[1]", Filename: "doc.md", Quote: "first excerpt"},
	}, citations)
}

func TestNormalize_MarkerNumbersFollowTextOrder(t *testing.T) {
	// The annotation list arrives out of document order; numbering follows
	// span position, not list position.
	text := "alpha【x】 beta【y】"
	anns := []Annotation{
		{FileID: "f-2", Text: "【y】"},
		{FileID: "f-1", Text: "【x】"},
	}
	lookup := map[string]string{"f-1": "a.md", "f-2": "b.md"}

	got, citations := Normalize(text, anns, lookup)
	assert.Equal(t, "alpha[1] beta[2]", got)
	assert.Equal(t, "a.md", citations[0].Filename)
	assert.Equal(t, "b.md", citations[1].Filename)
}

func TestNormalize_FilenameFallbacks(t *testing.T) {
	got, citations := Normalize("x【m】", []Annotation{
		{FileID: "f-missing", Filename: "reported.md", Text: "【m】"},
	}, map[string]string{})
	assert.Equal(t, "x[1]", got)
	assert.Equal(t, "reported.md", citations[0].Filename)

	_, citations = Normalize("y【m】", []Annotation{
		{FileID: "f-missing", Text: "【m】"},
	}, nil)
	assert.Equal(t, UnknownFilename, citations[0].Filename)
}

func TestNormalize_InvalidSpanFallsBackToText(t *testing.T) {
	text := "See 【4:0†source】 here."
	end := 1000
	start := 4
	anns := []Annotation{
		{FileID: "f-1", Text: "【4:0†source】", StartIndex: intp(start), EndIndex: &end},
	}
	got, citations := Normalize(text, anns, map[string]string{"f-1": "doc.md"})
	assert.Equal(t, "See [1] here.", got)
	assert.Len(t, citations, 1)
}

func TestNormalize_UnplacedAppended(t *testing.T) {
	// No span and marker text absent from the answer: the marker is
	// appended rather than dropped.
	got, citations := Normalize("Answer without markers.", []Annotation{
		{FileID: "f-1", Text: "【gone】"},
	}, map[string]string{"f-1": "doc.md"})
	assert.Equal(t, "Answer without markers. [1]", got)
	assert.Equal(t, "[1]", citations[0].Marker)
}

func TestNormalize_RuneOffsets(t *testing.T) {
	// Offsets count runes, not bytes: the multibyte prefix must not shift
	// the splice point.
	text := "héllo wörld【m】!"
	runes := []rune(text)
	start := len(runes) - 4
	end := start + 3
	anns := []Annotation{
		{FileID: "f-1", StartIndex: intp(start), EndIndex: intp(end)},
	}
	got, _ := Normalize(text, anns, map[string]string{"f-1": "doc.md"})
	assert.Equal(t, "héllo wörld[1]!", got)
}

func TestNormalize_QuoteBackfill(t *testing.T) {
	// The first citation of a file carries no quote; a later one does. The
	// source list picks up the later quote.
	text := "a【x】 b【y】"
	anns := []Annotation{
		{FileID: "f-1", Text: "【x】"},
		{FileID: "f-1", Text: "【y】", Quote: "late excerpt"},
	}
	_, citations := Normalize(text, anns, map[string]string{"f-1": "doc.md"})
	assert.Equal(t, "late excerpt", citations[0].Quote)
}

func TestRenderSources_Compact(t *testing.T) {
	lines := RenderSources([]Citation{
		{Marker: "[1]", Filename: "a.md", Quote: "q"},
		{Marker: "[2]", Filename: "b.md"},
	}, false)
	assert.Equal(t, []string{"Sources:", "[1] a.md  [2] b.md"}, lines)
}

func TestRenderSources_WithQuotes(t *testing.T) {
	lines := RenderSources([]Citation{
		{Marker: "[1]", Filename: "a.md", Quote: "an excerpt"},
		{Marker: "[2]", Filename: "b.md"},
	}, true)
	assert.Equal(t, []string{
		"Sources:",
		"[1] a.md",
		`    "an excerpt"`,
		"[2] b.md",
	}, lines)
}

func TestRenderSources_Empty(t *testing.T) {
	assert.Nil(t, RenderSources(nil, false))
	assert.Nil(t, RenderSources(nil, true))
}
