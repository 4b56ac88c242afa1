package fingerprint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFile_IdenticalContentSameFingerprint(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.mp3")
	pathB := filepath.Join(dir, "renamed copy.wav")
	content := []byte("identical media bytes")
	require.NoError(t, os.WriteFile(pathA, content, 0o644))
	require.NoError(t, os.WriteFile(pathB, content, 0o644))

	fpA, err := FromFile(pathA)
	require.NoError(t, err)
	fpB, err := FromFile(pathB)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB)
	assert.Len(t, fpA.String(), 64)
}

func TestFromFile_DifferentContentDifferentFingerprint(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.mp3")
	pathB := filepath.Join(dir, "b.mp3")
	require.NoError(t, os.WriteFile(pathA, []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(pathB, []byte("two"), 0o644))

	fpA, err := FromFile(pathA)
	require.NoError(t, err)
	fpB, err := FromFile(pathB)
	require.NoError(t, err)

	assert.NotEqual(t, fpA, fpB)
}

func TestFromFile_MissingFileFails(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "gone.mp3"))
	require.Error(t, err)
}

func TestFromReader_Deterministic(t *testing.T) {
	first, err := FromReader(strings.NewReader("payload"))
	require.NoError(t, err)
	second, err := FromReader(strings.NewReader("payload"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
