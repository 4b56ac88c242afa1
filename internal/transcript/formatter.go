package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/MimeLyc/batch-transcriber/internal/engine"
)

const headerWidth = 80

// Metadata is the record side of a rendered transcript.
type Metadata struct {
	Name     string
	Date     time.Time
	Language string
}

// Format renders segments plus metadata into the transcript artifact text.
// It is a pure function: same inputs, same output. Segment timestamps are
// rendered as given; out-of-order or overlapping spans are the engine's
// problem and are passed through untouched.
func Format(meta Metadata, segments []engine.Segment) string {
	var b strings.Builder

	bar := strings.Repeat("═", headerWidth)
	b.WriteString(bar + "\n")
	b.WriteString("TRANSCRIPT: " + meta.Name + "\n")
	b.WriteString("Date: " + meta.Date.Format("2006-01-02 15:04:05") + "\n")
	language := meta.Language
	if language == "" {
		language = "unknown"
	}
	b.WriteString("Language: " + strings.ToUpper(language) + "\n")
	b.WriteString(bar + "\n")
	b.WriteString("\n")

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		b.WriteString(fmt.Sprintf("[%s → %s]\n", FormatTimestamp(seg.Start), FormatTimestamp(seg.End)))
		b.WriteString(text + "\n")
		b.WriteString("\n")
		texts = append(texts, text)
	}

	dashBar := strings.Repeat("-", headerWidth)
	b.WriteString(dashBar + "\n")
	b.WriteString("FULL TEXT (WITHOUT TIMESTAMPS):\n")
	b.WriteString(dashBar + "\n")
	b.WriteString(strings.Join(texts, " "))

	return b.String()
}

// FormatTimestamp renders seconds as mm:ss.mmm, widening to hh:mm:ss.mmm
// past one hour.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds * float64(time.Second))

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, milliseconds)
	}
	return fmt.Sprintf("%02d:%02d.%03d", minutes, secs, milliseconds)
}
