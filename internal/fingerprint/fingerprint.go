package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Fingerprint is the content-derived identity of a file. Two files with
// identical bytes always produce the same fingerprint, regardless of their
// name, path or discovery order. Filenames are never part of the identity.
type Fingerprint string

func (f Fingerprint) String() string {
	return string(f)
}

// FromReader hashes the full byte stream in a single pass.
func FromReader(r io.Reader) (Fingerprint, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// FromFile hashes the raw bytes of the file at path. The file is streamed,
// never fully loaded, and never decoded as audio.
func FromFile(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fp, err := FromReader(f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return fp, nil
}
