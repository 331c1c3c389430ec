// Command outline writes a JSON outline for every supported document in a
// directory.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/metrics"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/source"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	sum, err := run(ctx, cfg, log)
	if err != nil {
		log.Error("batch failed", "error", err)
		os.Exit(1)
	}
	log.Info("batch complete",
		"processed", sum.processed,
		"failed", sum.failed,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	if sum.failed > 0 {
		os.Exit(1)
	}
}

type summary struct {
	processed int
	failed    int
}

// run processes every supported file in cfg.InputDir. A document that fails
// is logged and counted; only setup errors abort the batch.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) (summary, error) {
	files, err := inputFiles(cfg.InputDir)
	if err != nil {
		return summary{}, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return summary{}, fmt.Errorf("create output dir: %w", err)
	}
	log.Info("starting batch", "input", cfg.InputDir, "output", cfg.OutputDir, "files", len(files))

	engine := outline.New(cfg.Engine, log.With("component", "engine"))
	worker := pipeline.NewWorker(engine, log, metrics.New(), cfg.DocumentTimeout)

	var processed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.BatchConcurrency)
	for _, path := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			flog := log.With("file", filepath.Base(path))
			if err := processFile(gctx, worker, cfg, path); err != nil {
				flog.Error("document failed", "error", err)
				failed.Add(1)
				return nil
			}
			flog.Debug("document written")
			processed.Add(1)
			return nil
		})
	}
	err = g.Wait()
	return summary{processed: int(processed.Load()), failed: int(failed.Load())}, err
}

func inputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !source.IsSupportedExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func processFile(ctx context.Context, worker *pipeline.Worker, cfg config.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	res, err := worker.Run(ctx, filepath.Base(path), data, cfg.Engine.LinkContent)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out, err := json.MarshalIndent(res.Outline, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outline: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, base+".json"), append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}

	if cfg.WriteTextOutline {
		var buf bytes.Buffer
		if err := doctree.FromOutline(res.Outline).Render(&buf); err != nil {
			return fmt.Errorf("render outline: %w", err)
		}
		if err := os.WriteFile(filepath.Join(cfg.OutputDir, base+".txt"), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write text outline: %w", err)
		}
	}
	return nil
}
