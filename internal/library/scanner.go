package library

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/MimeLyc/batch-transcriber/pkg/log"
)

// MediaFile is one discovered input. It only exists for the duration of a
// batch run; identity for deduplication is the content fingerprint, never
// the path.
type MediaFile struct {
	Path         string
	Name         string
	DiscoveredAt time.Time
}

var mediaExts = []string{
	".mp3", ".mp4", ".wav", ".m4a", ".opus", ".ogg", ".flac",
	".avi", ".mov", ".mkv", ".webm", ".aac", ".wma", ".m4b",
	".3gp", ".mpeg", ".mpg", ".wmv", ".flv",
}

// IsSupported reports whether the file extension is a known media container.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(mediaExts, ext)
}

// SupportedExtensions lists the recognized media extensions, sorted.
func SupportedExtensions() []string {
	ret := slices.Clone(mediaExts)
	slices.Sort(ret)
	return ret
}

// Scan walks root and returns every supported media file. Unreadable
// entries are logged and excluded rather than failing the scan.
func Scan(ctx context.Context, root string) ([]MediaFile, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	ret := make([]MediaFile, 0)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn("Skipping unreadable entry %s: %v", path, err)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}
		if !IsSupported(path) {
			return nil
		}
		ret = append(ret, MediaFile{
			Path:         path,
			Name:         d.Name(),
			DiscoveredAt: time.Now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
