package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/MimeLyc/batch-transcriber/pkg/log"
)

// Config holds the configuration for the whisper engine adapter.
type Config struct {
	WhisperCmd string
	ModelPath  string
	FfmpegCmd  string
	FfprobeCmd string
}

// WhisperEngine runs whisper.cpp on ffmpeg-preprocessed audio. It is the
// production Engine implementation; the orchestrator only sees the Engine
// interface.
type WhisperEngine struct {
	whisperCmd string
	modelPath  string
	ff         ffmpeg
	runner     commandRunner
	mkdirTemp  func(dir, pattern string) (string, error)
	readFile   func(name string) ([]byte, error)
}

func NewWhisperEngine(cfg Config) *WhisperEngine {
	runner := &execRunner{}
	whisperCmd := cfg.WhisperCmd
	if whisperCmd == "" {
		whisperCmd = "whisper-cli"
	}
	return &WhisperEngine{
		whisperCmd: whisperCmd,
		modelPath:  cfg.ModelPath,
		ff:         newFfmpeg(cfg.FfmpegCmd, cfg.FfprobeCmd, runner),
		runner:     runner,
		mkdirTemp:  os.MkdirTemp,
		readFile:   os.ReadFile,
	}
}

// Transcribe decodes the media file to wav, runs whisper with JSON output
// and parses the result into ordered segments.
func (e *WhisperEngine) Transcribe(ctx context.Context, mediaPath string) (Result, error) {
	tempDir, err := e.mkdirTemp("", "transcribe-*")
	if err != nil {
		return Result{}, &EngineError{Stage: "prepare", Message: "create temp dir", Err: err}
	}
	defer os.RemoveAll(tempDir)

	wavPath := filepath.Join(tempDir, "audio.wav")
	if err := e.ff.DecodeToWav(ctx, mediaPath, wavPath); err != nil {
		return Result{}, &EngineError{Stage: "preprocess", Message: fmt.Sprintf("decode %s", filepath.Base(mediaPath)), Err: err}
	}

	cmdPath, err := exec.LookPath(e.whisperCmd)
	if err != nil {
		return Result{}, &EngineError{Stage: "transcribe", Message: "whisper not found", Err: err}
	}

	outBase := filepath.Join(tempDir, "transcript")
	args := []string{
		"-m", e.modelPath,
		"-f", wavPath,
		"-l", "auto",
		"-oj",
		"-of", outBase,
	}
	if _, err := e.runner.Run(ctx, cmdPath, args...); err != nil {
		return Result{}, &EngineError{Stage: "transcribe", Message: fmt.Sprintf("whisper failed on %s", filepath.Base(mediaPath)), Err: err}
	}

	raw, err := e.readFile(outBase + ".json")
	if err != nil {
		return Result{}, &EngineError{Stage: "collect", Message: "read whisper output", Err: err}
	}

	result, err := parseWhisperJSON(raw)
	if err != nil {
		return Result{}, &EngineError{Stage: "collect", Message: "parse whisper output", Err: err}
	}

	if result.Language == "" {
		result.Language = DetectLanguage(fullText(result.Segments))
	}
	if result.Duration == 0 {
		duration, err := e.ff.ProbeDuration(ctx, mediaPath)
		if err != nil {
			log.Warn("Failed to probe duration of %s: %v", mediaPath, err)
		} else {
			result.Duration = duration
		}
	}
	return result, nil
}

// whisperOutput mirrors the whisper.cpp -oj JSON layout.
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperJSON(raw []byte) (Result, error) {
	var out whisperOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, err
	}

	ret := Result{
		Language: normalizeWhisperLanguage(out.Result.Language),
		Segments: make([]Segment, 0, len(out.Transcription)),
	}
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		ret.Segments = append(ret.Segments, Segment{
			// offsets are milliseconds
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  text,
		})
	}
	if n := len(ret.Segments); n > 0 {
		ret.Duration = ret.Segments[n-1].End
	}
	return ret, nil
}

func normalizeWhisperLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == "auto" || lang == "und" {
		return ""
	}
	return NormalizeLanguage(lang)
}

func fullText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}
