package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/docoutline/internal/hierarchy"
	"github.com/dgallion1/docoutline/internal/outline"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string
	LogLevel string

	// Auth; empty disables bearer-token checks.
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Wall-clock budget for one document.
	DocumentTimeout time.Duration

	// Batch CLI
	InputDir         string
	OutputDir        string
	WriteTextOutline bool
	BatchConcurrency int

	// Engine settings: defaults, then the YAML file, then environment.
	EngineFile string
	Engine     outline.Config
}

func Load() (Config, error) {
	cfg := Config{
		Port:     envOr("PORT", "8090"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		APIKey: os.Getenv("OUTLINE_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL:          envDuration("JOB_TTL", 1*time.Hour),
		DocumentTimeout: envDuration("DOCUMENT_TIMEOUT", 10*time.Second),

		InputDir:         envOr("INPUT_DIR", "input"),
		OutputDir:        envOr("OUTPUT_DIR", "output"),
		WriteTextOutline: envBool("WRITE_TEXT_OUTLINE", false),
		BatchConcurrency: envInt("BATCH_CONCURRENCY", 4),

		EngineFile: os.Getenv("OUTLINE_CONFIG_FILE"),
		Engine:     outline.DefaultConfig(),
	}

	if cfg.EngineFile != "" {
		f, err := os.Open(cfg.EngineFile)
		if err != nil {
			return cfg, fmt.Errorf("open engine config: %w", err)
		}
		err = DecodeEngine(f, &cfg.Engine)
		f.Close()
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", cfg.EngineFile, err)
		}
	}
	applyEngineEnv(&cfg.Engine)

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.DocumentTimeout <= 0 {
		cfg.DocumentTimeout = 10 * time.Second
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}

	return cfg, nil
}

// DecodeEngine overlays YAML engine settings onto cfg. Keys missing from the
// document keep their current values; unknown keys are an error.
func DecodeEngine(r io.Reader, cfg *outline.Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read engine config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode engine config: %w", err)
	}
	return nil
}

func applyEngineEnv(c *outline.Config) {
	s := &c.Scoring
	s.FontWeight = envFloat("FONT_WEIGHT", s.FontWeight)
	s.TextWeight = envFloat("TEXT_WEIGHT", s.TextWeight)
	s.LayoutWeight = envFloat("LAYOUT_WEIGHT", s.LayoutWeight)
	s.PatternWeight = envFloat("PATTERN_WEIGHT", s.PatternWeight)
	s.MinScoreThreshold = envFloat("MIN_SCORE_THRESHOLD", s.MinScoreThreshold)
	s.IsolationFactor = envFloat("ISOLATION_FACTOR", s.IsolationFactor)
	s.MaxHeadingWords = envInt("MAX_HEADING_WORDS", s.MaxHeadingWords)

	h := &c.Hierarchy
	h.LevelPolicy = hierarchy.LevelPolicy(envOr("LEVEL_POLICY", string(h.LevelPolicy)))
	h.DedupScoreMargin = envFloat("DEDUP_SCORE_MARGIN", h.DedupScoreMargin)

	c.MaxPages = envInt("MAX_PAGES", c.MaxPages)
	c.LinkContent = envBool("LINK_CONTENT", c.LinkContent)
}

// Level returns the slog level named by LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
