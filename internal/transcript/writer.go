package transcript

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MimeLyc/batch-transcriber/pkg/file"
)

// Writer persists rendered transcripts under a single output directory.
// Artifact names derive from the source display name, not from content, so
// two distinct files with the same stem get numeric suffixes.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write stores content under a name derived from displayName and returns the
// artifact path.
func (w *Writer) Write(displayName string, content string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcripts directory: %w", err)
	}

	safe := file.SanitizeBaseName(file.Stem(displayName))
	if safe == "" {
		safe = "transcript"
	}

	outputFile := filepath.Join(w.dir, safe+"_transcript.txt")
	for counter := 1; ; counter++ {
		if _, err := os.Stat(outputFile); os.IsNotExist(err) {
			break
		}
		outputFile = filepath.Join(w.dir, fmt.Sprintf("%s_transcript_%d.txt", safe, counter))
	}

	if err := os.WriteFile(outputFile, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write transcript %s: %w", outputFile, err)
	}
	return outputFile, nil
}
