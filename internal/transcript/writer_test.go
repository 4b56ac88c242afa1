package transcript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_NameDerivedFromDisplayName(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	path, err := w.Write("My Talk (final)!.mp3", "content")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "My Talk final_transcript.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestWriter_CollisionGetsNumericSuffix(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	first, err := w.Write("talk.mp3", "one")
	require.NoError(t, err)
	second, err := w.Write("talk.wav", "two")
	require.NoError(t, err)
	third, err := w.Write("talk.flac", "three")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "talk_transcript.txt"), first)
	assert.Equal(t, filepath.Join(dir, "talk_transcript_1.txt"), second)
	assert.Equal(t, filepath.Join(dir, "talk_transcript_2.txt"), third)
}

func TestWriter_EmptySanitizedNameFallsBack(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	path, err := w.Write("???.mp3", "content")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "transcript_transcript.txt"), path)
}

func TestWriter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "transcripts")
	w := NewWriter(dir)

	_, err := w.Write("a.mp3", "content")
	require.NoError(t, err)
}
