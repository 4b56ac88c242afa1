package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScan_FindsSupportedMediaOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp3"))
	touch(t, filepath.Join(dir, "B.MP4"))
	touch(t, filepath.Join(dir, "nested", "c.flac"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "image.png"))

	files, err := Scan(context.Background(), dir)
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
		assert.False(t, f.DiscoveredAt.IsZero())
	}
	assert.ElementsMatch(t, []string{"a.mp3", "B.MP4", "c.flac"}, names)
}

func TestScan_MissingRootFails(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("/media/a.mp3"))
	assert.True(t, IsSupported("/media/a.MKV"))
	assert.False(t, IsSupported("/media/a.srt"))
	assert.False(t, IsSupported("/media/noext"))
}
