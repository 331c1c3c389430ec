package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/hierarchy"
	"github.com/dgallion1/docoutline/internal/outline"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OUTLINE_CONFIG_FILE", "")
	t.Setenv("WORKER_COUNT", "")
	t.Setenv("DOCUMENT_TIMEOUT", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" && os.Getenv("PORT") == "" {
		t.Errorf("expected default port, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.DocumentTimeout != 10*time.Second {
		t.Errorf("expected 10s document timeout, got %s", cfg.DocumentTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("OUTLINE_CONFIG_FILE", "")
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("MAX_QUEUE_SIZE", "lots")
	t.Setenv("JOB_TTL", "soon")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.JobTTL != time.Hour {
		t.Errorf("expected fallbacks, got workers=%d queue=%d ttl=%s", cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL)
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	yamlDoc := "font_weight: 0.5\nmin_score_threshold: 0.4\nlevel_policy: font\nmax_pages: 10\n"
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OUTLINE_CONFIG_FILE", path)
	t.Setenv("MIN_SCORE_THRESHOLD", "0.45")
	t.Setenv("LINK_CONTENT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := cfg.Engine
	if e.Scoring.FontWeight != 0.5 {
		t.Errorf("expected YAML font weight, got %v", e.Scoring.FontWeight)
	}
	if e.Scoring.MinScoreThreshold != 0.45 {
		t.Errorf("expected environment to beat YAML, got %v", e.Scoring.MinScoreThreshold)
	}
	if e.Scoring.TextWeight != outline.DefaultConfig().Scoring.TextWeight {
		t.Errorf("expected default text weight, got %v", e.Scoring.TextWeight)
	}
	if e.Hierarchy.LevelPolicy != hierarchy.PolicyFont || e.MaxPages != 10 || !e.LinkContent {
		t.Errorf("unexpected engine config %+v", e)
	}
}

func TestLoad_MissingEngineFile(t *testing.T) {
	t.Setenv("OUTLINE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing engine file")
	}
}

func TestDecodeEngine(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"empty document", "", false},
		{"known keys", "layout_weight: 0.25\nisolation_factor: 1.5\n", false},
		{"unknown key", "font_wieght: 0.5\n", true},
		{"wrong type", "max_pages: many\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := outline.DefaultConfig()
			err := DecodeEngine(strings.NewReader(tt.doc), &cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("OUTLINE_CONFIG_FILE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := cfg
	bad.Port = "http"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for non-numeric port")
	}

	bad = cfg
	bad.Engine.Scoring.MinScoreThreshold = 2
	if err := bad.Validate(); err == nil {
		t.Error("expected error for threshold above 1")
	}
}

func TestLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"info":  slog.LevelInfo,
		"loud":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (Config{LogLevel: in}).Level(); got != want {
			t.Errorf("Level(%q) = %v, want %v", in, got, want)
		}
	}
}
