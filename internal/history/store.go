package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MimeLyc/batch-transcriber/internal/fingerprint"
	"github.com/MimeLyc/batch-transcriber/pkg/log"
)

// Store is the durable fingerprint → Record mapping backing deduplication.
// It is a single JSON file so that history can be inspected and hand-edited;
// deleting an entry makes its fingerprint unseen again.
//
// Every Upsert rewrites the file atomically (temp file + rename) before
// returning, so a crash right after a successful transcription never loses
// the fact that it succeeded, and a crash mid-write never corrupts
// previously committed records.
type Store struct {
	path string

	mu      sync.Mutex
	records map[fingerprint.Fingerprint]Record
	// raw keeps the verbatim JSON of entries loaded from disk so that
	// unknown fields written by newer versions (or by hand) survive a
	// rewrite untouched. Upserted entries drop their raw form.
	raw map[fingerprint.Fingerprint]json.RawMessage
}

// Load reads the store at path. A missing file yields an empty store. An
// unparseable file also yields an empty store with a logged warning: losing
// history is recoverable by re-transcribing, refusing to run is not.
func Load(path string) *Store {
	s := &Store{
		path:    path,
		records: make(map[fingerprint.Fingerprint]Record),
		raw:     make(map[fingerprint.Fingerprint]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("History store %s unreadable, starting empty: %v", path, err)
		}
		return s
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn("History store %s corrupt, starting empty: %v", path, err)
		return s
	}

	for key, rawEntry := range entries {
		var rec Record
		if err := json.Unmarshal(rawEntry, &rec); err != nil {
			log.Warn("History entry %s unparseable, dropping: %v", key, err)
			continue
		}
		fp := fingerprint.Fingerprint(key)
		s.records[fp] = rec
		s.raw[fp] = rawEntry
	}
	return s
}

// Lookup returns the record for fp, if any.
func (s *Store) Lookup(fp fingerprint.Fingerprint) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[fp]
	return rec, ok
}

// Upsert inserts or replaces the record for fp. The store is persisted before
// the call returns.
func (s *Store) Upsert(fp fingerprint.Fingerprint, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[fp] = rec
	delete(s.raw, fp)
	return s.persistLocked()
}

// Delete removes the record for fp, after which the fingerprint is treated as
// unseen. Persisted before returning.
func (s *Store) Delete(fp fingerprint.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[fp]; !ok {
		return nil
	}
	delete(s.records, fp)
	delete(s.raw, fp)
	return s.persistLocked()
}

// Len reports the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Persist forces a write of the current state.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	entries := make(map[string]json.RawMessage, len(s.records))
	for fp, rec := range s.records {
		if rawEntry, ok := s.raw[fp]; ok {
			entries[fp.String()] = rawEntry
			continue
		}
		encoded, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode history entry %s: %w", fp, err)
		}
		entries[fp.String()] = encoded
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write history store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync history store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close history store: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace history store: %w", err)
	}
	return nil
}
