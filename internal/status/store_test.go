package status

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/exercise"
)

func newSet(t *testing.T, names ...string) *exercise.Set {
	t.Helper()
	exercises := make([]*exercise.Exercise, len(names))
	for i, name := range names {
		exercises[i] = &exercise.Exercise{Name: name, Path: name + ".rs"}
	}
	set, err := exercise.NewSet(exercises)
	require.NoError(t, err)
	return set
}

func completedMap(set *exercise.Set) map[string]bool {
	out := make(map[string]bool, set.Len())
	for _, ex := range set.All() {
		out[ex.Name] = ex.Completed
	}
	return out
}

func TestLoadMissingFileIsNoop(t *testing.T) {
	set := newSet(t, "e1", "e2")
	set.At(1).Completed = true

	err := Load(filepath.Join(t.TempDir(), DefaultFile), set)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"e1": false, "e2": true}, completedMap(set))
}

func TestLoadOverlaysByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := "e2 = true\n" +
		"unknown = true\n" +
		"garbage line\n" +
		"e1 = maybe\n" +
		"e3 = false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set := newSet(t, "e1", "e2", "e3")
	set.At(2).Completed = true

	require.NoError(t, Load(path, set))
	assert.Equal(t, map[string]bool{"e1": false, "e2": true, "e3": false}, completedMap(set))
}

func TestLoadUnreadableFile(t *testing.T) {
	// a directory cannot be read as a file regardless of privileges
	path := t.TempDir()

	err := Load(path, newSet(t, "e1"))
	require.Error(t, err)
	assert.True(t, jerrors.IsIOError(err))
	assert.Contains(t, err.Error(), path)
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	set := newSet(t, "e1", "e2")
	set.At(0).Completed = true

	require.NoError(t, Save(set, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "e1 = true\ne2 = false\n", string(data))
}

func TestSaveOverwritesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("old = true\nold2 = true\nold3 = true\n"), 0o644))

	set := newSet(t, "e1")
	require.NoError(t, Save(set, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "e1 = false\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state", DefaultFile)
	require.NoError(t, Save(newSet(t, "e1"), path))
	assert.FileExists(t, path)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	saved := newSet(t, "e1", "e2", "e3", "e4")
	saved.At(0).Completed = true
	saved.At(3).Completed = true
	require.NoError(t, Save(saved, path))

	fresh := newSet(t, "e1", "e2", "e3", "e4")
	require.NoError(t, Load(path, fresh))
	assert.Equal(t, completedMap(saved), completedMap(fresh))
}

func TestLoadIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("e1 = true\ne2 = false\n"), 0o644))

	set := newSet(t, "e1", "e2")
	require.NoError(t, Load(path, set))
	once := completedMap(set)
	require.NoError(t, Load(path, set))
	assert.Equal(t, once, completedMap(set))
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Save(newSet(t, "e1"), path))

	existed, err := Reset(path)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.NoFileExists(t, path)

	existed, err = Reset(path)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestParseToleratesCRLF(t *testing.T) {
	entries := Parse([]byte("e1 = true\r\ne2 = false\r\n"))
	assert.Equal(t, map[string]bool{"e1": true, "e2": false}, entries)
}
