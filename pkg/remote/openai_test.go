package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAnnotations_NestedFileCitation(t *testing.T) {
	raw := []any{
		map[string]any{
			"type":        "file_citation",
			"text":        "【4:0†source】",
			"start_index": float64(10),
			"end_index":   float64(22),
			"file_citation": map[string]any{
				"file_id": "file-abc",
				"quote":   "an excerpt",
			},
		},
	}

	anns := decodeAnnotations(raw)
	require.Len(t, anns, 1)
	assert.Equal(t, "file-abc", anns[0].FileID)
	assert.Equal(t, "an excerpt", anns[0].Quote)
	assert.Equal(t, "【4:0†source】", anns[0].Text)
	require.NotNil(t, anns[0].StartIndex)
	assert.Equal(t, 10, *anns[0].StartIndex)
	require.NotNil(t, anns[0].EndIndex)
	assert.Equal(t, 22, *anns[0].EndIndex)
}

func TestDecodeAnnotations_InlinedFields(t *testing.T) {
	raw := []any{
		map[string]any{
			"type":    "file_citation",
			"text":    "【1:2†source】",
			"file_id": "file-xyz",
			"quote":   "inline quote",
		},
	}

	anns := decodeAnnotations(raw)
	require.Len(t, anns, 1)
	assert.Equal(t, "file-xyz", anns[0].FileID)
	assert.Equal(t, "inline quote", anns[0].Quote)
	assert.Nil(t, anns[0].StartIndex)
}

func TestDecodeAnnotations_SkipsNonFileCitations(t *testing.T) {
	raw := []any{
		map[string]any{"type": "file_path", "text": "sandbox:/x"},
		map[string]any{
			"type":          "file_citation",
			"text":          "【m】",
			"file_citation": map[string]any{"file_id": "file-1"},
		},
	}

	anns := decodeAnnotations(raw)
	require.Len(t, anns, 1)
	assert.Equal(t, "file-1", anns[0].FileID)
}

func TestDecodeAnnotations_Empty(t *testing.T) {
	assert.Nil(t, decodeAnnotations(nil))
	assert.Nil(t, decodeAnnotations([]any{}))
}
