package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *State {
	return &State{
		AssistantID:   "asst_123",
		VectorStoreID: "vs_456",
		FileIDs:       []string{"file-a", "file-b"},
		FileNames:     []string{"a.md", "b.md"},
		FileIDMap:     map[string]string{"a.md": "file-a", "b.md": "file-b"},
		Folder:        "/tmp/docs",
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".agsearch", "state.json")

	require.NoError(t, Save(sampleState(), path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "state.json"))
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotInitialized)
}

func TestFileIDLookup(t *testing.T) {
	lookup := sampleState().FileIDLookup()
	assert.Equal(t, map[string]string{"file-a": "a.md", "file-b": "b.md"}, lookup)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, Save(sampleState(), path))

	require.NoError(t, Remove(path))
	assert.False(t, Exists(path))

	// Removing again is not an error.
	assert.NoError(t, Remove(path))
}

func TestExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	assert.False(t, Exists(path))
	require.NoError(t, Save(sampleState(), path))
	assert.True(t, Exists(path))
}
