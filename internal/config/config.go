package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all application configuration
// Includes media directory, whisper engine and batch configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// Media Directory Configuration:
// - INPUT_DIR: Directory scanned for media files (default: Input)
// - OUTPUT_DIR: Directory for transcripts and history (default: Output)
// - HISTORY_FILE: History store path (default: <OUTPUT_DIR>/transcription_history.json)
// - RUNLOG_DB: Batch run log database path (default: <OUTPUT_DIR>/runlog.db)
//
// Engine Configuration:
// - WHISPER_CMD: Whisper CLI binary (default: whisper-cli)
// - WHISPER_MODEL: Whisper model file path (default: models/ggml-medium.bin)
// - FFMPEG_CMD: ffmpeg binary (default: ffmpeg)
// - FFPROBE_CMD: ffprobe binary (default: ffprobe)
// - ENGINE_TIMEOUT: Per-file transcription timeout in seconds, 0 disables (default: 0)
//
// Batch Configuration:
// - BATCH_WORKERS: Parallel file processing workers (default: 1)
// - CRON_EXPR: Schedule for repeated batch runs (default: 0 * * * *)

type Config struct {
	// Media Directory Configuration
	Media MediaConfig `json:"media"`

	// Engine Configuration
	Engine EngineConfig `json:"engine"`

	// Batch Configuration
	Batch BatchConfig `json:"batch"`
}

// MediaConfig holds the input and output locations
type MediaConfig struct {
	InputDir    string `json:"input_dir"`
	OutputDir   string `json:"output_dir"`
	HistoryFile string `json:"history_file"`
	RunLogDB    string `json:"runlog_db"`
}

// TranscriptsDir is where rendered transcripts are written.
func (c MediaConfig) TranscriptsDir() string {
	return filepath.Join(c.OutputDir, "transcripts")
}

// EngineConfig holds the configuration for the whisper engine adapter
type EngineConfig struct {
	WhisperCmd  string `json:"whisper_cmd"`
	ModelPath   string `json:"model_path"`
	FfmpegCmd   string `json:"ffmpeg_cmd"`
	FfprobeCmd  string `json:"ffprobe_cmd"`
	TimeoutSecs int    `json:"timeout_secs"`
}

// BatchConfig holds the configuration for batch orchestration
type BatchConfig struct {
	Workers  int    `json:"workers"`
	CronExpr string `json:"cron_expr"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	outputDir := getEnvString("OUTPUT_DIR", "Output")

	config := &Config{
		Media: MediaConfig{
			InputDir:    getEnvString("INPUT_DIR", "Input"),
			OutputDir:   outputDir,
			HistoryFile: getEnvString("HISTORY_FILE", filepath.Join(outputDir, "transcription_history.json")),
			RunLogDB:    getEnvString("RUNLOG_DB", filepath.Join(outputDir, "runlog.db")),
		},
		Engine: EngineConfig{
			WhisperCmd:  getEnvString("WHISPER_CMD", "whisper-cli"),
			ModelPath:   getEnvString("WHISPER_MODEL", filepath.Join("models", "ggml-medium.bin")),
			FfmpegCmd:   getEnvString("FFMPEG_CMD", "ffmpeg"),
			FfprobeCmd:  getEnvString("FFPROBE_CMD", "ffprobe"),
			TimeoutSecs: getEnvInt("ENGINE_TIMEOUT", 0),
		},
		Batch: BatchConfig{
			Workers:  getEnvInt("BATCH_WORKERS", 1),
			CronExpr: getEnvString("CRON_EXPR", "0 * * * *"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Media.InputDir == "" {
		return fmt.Errorf("INPUT_DIR is required")
	}
	if c.Media.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
