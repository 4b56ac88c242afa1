package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/MimeLyc/batch-transcriber/pkg/log"
)

type ffmpeg struct {
	ffmpegCmd  string
	ffprobeCmd string
	runner     commandRunner
}

func newFfmpeg(ffmpegCmd, ffprobeCmd string, runner commandRunner) ffmpeg {
	if ffmpegCmd == "" {
		ffmpegCmd = "ffmpeg"
	}
	if ffprobeCmd == "" {
		ffprobeCmd = "ffprobe"
	}
	if runner == nil {
		runner = &execRunner{}
	}
	return ffmpeg{
		ffmpegCmd:  ffmpegCmd,
		ffprobeCmd: ffprobeCmd,
		runner:     runner,
	}
}

// DecodeToWav demuxes and resamples the media file to 16 kHz mono PCM, the
// input format whisper expects.
func (ff ffmpeg) DecodeToWav(ctx context.Context, mediaPath, outPath string) error {
	cmdPath, err := exec.LookPath(ff.ffmpegCmd)
	if err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}

	_, err = ff.runner.Run(ctx, cmdPath, ff.decodeArgs(mediaPath, outPath)...)
	return err
}

func (ffmpeg) decodeArgs(mediaPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", mediaPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		outPath,
	}
}

// ProbeDuration reads the container duration in seconds via ffprobe.
func (ff ffmpeg) ProbeDuration(ctx context.Context, mediaPath string) (float64, error) {
	cmdPath, err := exec.LookPath(ff.ffprobeCmd)
	if err != nil {
		return 0, fmt.Errorf("ffprobe not found: %w", err)
	}

	result, err := ff.runner.Run(ctx, cmdPath, ff.probeArgs(mediaPath)...)
	if err != nil {
		log.Error("Failed to run ffprobe: %v", err)
		return 0, err
	}

	var probeResult struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &probeResult); err != nil {
		log.Error("Failed to parse ffprobe output: %v", err)
		return 0, err
	}
	if probeResult.Format.Duration == "" {
		return 0, fmt.Errorf("no duration in probe output")
	}

	duration, err := strconv.ParseFloat(probeResult.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", probeResult.Format.Duration, err)
	}
	return duration, nil
}

func (ffmpeg) probeArgs(path string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	}
}
