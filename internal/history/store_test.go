package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/batch-transcriber/internal/fingerprint"
)

func TestStore_LoadMissingFileStartsEmpty(t *testing.T) {
	store := Load(filepath.Join(t.TempDir(), "history.json"))
	assert.Equal(t, 0, store.Len())
}

func TestStore_UpsertIsDurable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := Load(path)

	fp := fingerprint.Fingerprint("abc123")
	rec := Record{
		Filename: "a.mp3",
		Language: "en",
		Date:     time.Now().UTC().Truncate(time.Second),
		Duration: 42.5,
		Status:   StatusCompleted,
	}
	require.NoError(t, store.Upsert(fp, rec))

	// A fresh load must already see the record, without any explicit persist.
	reloaded := Load(path)
	got, ok := reloaded.Lookup(fp)
	require.True(t, ok)
	assert.Equal(t, rec.Filename, got.Filename)
	assert.Equal(t, rec.Status, got.Status)
	assert.Equal(t, rec.Duration, got.Duration)
}

func TestStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"abc": {"filename": "a.mp`), 0o644))

	store := Load(path)
	assert.Equal(t, 0, store.Len())

	// The degraded store must still accept new records.
	require.NoError(t, store.Upsert("def", Record{Filename: "b.mp3", Status: StatusCompleted}))
	assert.Equal(t, 1, store.Len())
}

func TestStore_UnknownFieldsSurviveRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	seed := `{
		"aaa": {"filename": "old.wav", "status": "completed", "custom_note": "keep me"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	store := Load(path)
	require.Equal(t, 1, store.Len())

	// Touch a different fingerprint; the untouched entry rewrites verbatim.
	require.NoError(t, store.Upsert("bbb", Record{Filename: "new.mp3", Status: StatusFailed}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Contains(t, entries, "aaa")
	assert.Equal(t, "keep me", entries["aaa"]["custom_note"])
}

func TestStore_PartiallyBadEntriesDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	seed := `{
		"good": {"filename": "a.mp3", "status": "completed"},
		"bad": 42
	}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	store := Load(path)
	assert.Equal(t, 1, store.Len())
	_, ok := store.Lookup("good")
	assert.True(t, ok)
}

func TestStore_PersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := Load(path)
	require.NoError(t, store.Upsert("xyz", Record{Filename: "x.mp3", Status: StatusCompleted}))
	require.NoError(t, store.Persist())

	reloaded := Load(path)
	assert.Equal(t, 1, reloaded.Len())
}

func TestStore_OverwriteFailedWithCompleted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := Load(path)

	fp := fingerprint.Fingerprint("retry-me")
	require.NoError(t, store.Upsert(fp, Record{Filename: "c.wav", Status: StatusFailed, Error: "boom"}))
	require.NoError(t, store.Upsert(fp, Record{Filename: "c.wav", Status: StatusCompleted}))

	got, ok := store.Lookup(fp)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Empty(t, got.Error)
	assert.Equal(t, 1, store.Len())
}

func TestStore_DeleteMakesFingerprintUnseen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := Load(path)

	fp := fingerprint.Fingerprint("gone-soon")
	require.NoError(t, store.Upsert(fp, Record{Filename: "d.mp3", Status: StatusCompleted}))
	require.NoError(t, store.Delete(fp))

	_, ok := store.Lookup(fp)
	assert.False(t, ok)

	reloaded := Load(path)
	_, ok = reloaded.Lookup(fp)
	assert.False(t, ok)
}
