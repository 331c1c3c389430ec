package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/element"
	"github.com/dgallion1/docoutline/internal/metrics"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/source"
)

// ErrTimeout reports a document that ran past its time budget.
var ErrTimeout = errors.New("document processing timed out")

// Result is one processed document.
type Result struct {
	Outline *outline.Outline
	Pages   int
	Spans   int
}

// Worker parses documents and runs the outline engine on them. It holds no
// per-document state, so one Worker serves every goroutine.
type Worker struct {
	engine  *outline.Engine
	log     *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewWorker(engine *outline.Engine, log *slog.Logger, m *metrics.Metrics, timeout time.Duration) *Worker {
	return &Worker{
		engine:  engine,
		log:     log,
		metrics: m,
		timeout: timeout,
	}
}

// Process runs the full outline pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	res, err := w.run(ctx, job.Filename, job.FileData(), job.LinkContent, job.advance)
	job.releaseFileData()
	if err != nil {
		log.Error("outline failed", "error", err)
		job.fail(err.Error())
		w.metrics.Document(string(StatusFailed), time.Since(start))
		return
	}

	job.SetParsed(res.Pages, res.Spans)
	job.SetResult(res.Outline)
	job.SetStatus(StatusCompleted, "done")
	w.record(res, time.Since(start))
	log.Info("outline complete",
		"pages", res.Pages,
		"headings", len(res.Outline.Outline),
		"duration", time.Since(start),
	)
}

// Run processes one document synchronously.
func (w *Worker) Run(ctx context.Context, filename string, data []byte, linkContent bool) (*Result, error) {
	start := time.Now()
	res, err := w.run(ctx, filename, data, linkContent, nil)
	if err != nil {
		w.metrics.Document(string(StatusFailed), time.Since(start))
		return nil, err
	}
	w.record(res, time.Since(start))
	return res, nil
}

func (w *Worker) run(ctx context.Context, filename string, data []byte, linkContent bool, phase func(JobStatus)) (*Result, error) {
	if phase == nil {
		phase = func(JobStatus) {}
	}

	// Phase 1: Parse
	phase(StatusParsing)
	p, err := source.ForFile(filename)
	if err != nil {
		return nil, err
	}

	engine := w.engine
	if linkContent {
		engine = engine.WithContentLinking(true)
	}

	return withTimeout(ctx, w.timeout, func() (*Result, error) {
		doc, err := p.Parse(bytes.NewReader(data), filename)
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		w.metrics.Spans(len(doc.Spans))

		// Phase 2: Analyze
		phase(StatusAnalyzing)
		o, err := engine.Extract(doc.Spans)
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
		o.Title = pickTitle(doc.Title, o.Title, filename)
		return &Result{Outline: o, Pages: doc.PageCount, Spans: len(doc.Spans)}, nil
	})
}

func (w *Worker) record(res *Result, elapsed time.Duration) {
	w.metrics.Document(string(StatusCompleted), elapsed)
	for _, e := range res.Outline.Outline {
		w.metrics.Heading(e.Level)
	}
}

// ExtractWithTimeout runs the engine with a wall-clock budget. A timeout of
// zero means no budget beyond ctx.
func ExtractWithTimeout(ctx context.Context, engine *outline.Engine, spans []element.Span, timeout time.Duration) (*outline.Outline, error) {
	return withTimeout(ctx, timeout, func() (*outline.Outline, error) {
		return engine.Extract(spans)
	})
}

// withTimeout abandons fn once the budget runs out. fn keeps running in the
// background and its result is discarded.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return zero, contextError(err, timeout)
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, contextError(ctx.Err(), timeout)
	}
}

func contextError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return err
}

// pickTitle prefers document metadata, then the inferred title, then the
// file name.
func pickTitle(meta, inferred, filename string) string {
	if t := strings.TrimSpace(meta); t != "" {
		return t
	}
	if inferred != "" {
		return inferred
	}
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
