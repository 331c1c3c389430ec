package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/metrics"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

const guide = `# Deployment Guide

This guide explains how the service is deployed to production clusters and how releases are verified.

## Prerequisites

Every operator needs access to the cluster and the release signing key before starting work.

## Rollout Steps

The rollout proceeds region by region and pauses whenever error rates rise above the agreed limit.
`

type upload struct {
	field, name, body string
}

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:          apiKey,
		WorkerCount:     2,
		MaxQueueSize:    10,
		MaxUploadBytes:  1 << 20,
		JobTTL:          time.Hour,
		DocumentTimeout: 5 * time.Second,
		Engine:          outline.DefaultConfig(),
	}
	log := slog.New(slog.DiscardHandler)
	m := metrics.New()
	worker := pipeline.NewWorker(outline.New(cfg.Engine, log), log, m, cfg.DocumentTimeout)
	orch := pipeline.NewOrchestrator(cfg, worker, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, m, log, cfg)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(f.body))
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body)
	}
}

func TestOutline_Sync(t *testing.T) {
	s := newTestServer(t, "")
	req := multipartRequest(t, "/api/outline", map[string]string{"content": "true"},
		upload{"file", "guide.md", guide})
	rec := serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var got outline.Outline
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "Deployment Guide" {
		t.Errorf("unexpected title %q", got.Title)
	}
	if len(got.Outline) == 0 || got.Outline[0].Level != "H1" {
		t.Fatalf("unexpected outline %+v", got.Outline)
	}
	if got.Outline[len(got.Outline)-1].Content == "" {
		t.Error("expected linked content")
	}

	metricsRec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(metricsRec.Body.String(), `docoutline_documents_total{status="completed"} 1`) {
		t.Errorf("expected completed document in metrics:\n%s", metricsRec.Body)
	}
}

func TestOutline_Formats(t *testing.T) {
	s := newTestServer(t, "")

	rec := serve(s, multipartRequest(t, "/api/outline", map[string]string{"format": "tree"},
		upload{"file", "guide.md", guide}))
	if rec.Code != http.StatusOK {
		t.Fatalf("tree: expected 200, got %d", rec.Code)
	}
	var tree struct {
		Title    string `json:"title"`
		Children []struct {
			Title    string            `json:"title"`
			Children []json.RawMessage `json:"children"`
		} `json:"children"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tree); err != nil {
		t.Fatalf("decode tree: %v", err)
	}
	if len(tree.Children) != 1 || tree.Children[0].Title != "Deployment Guide" || len(tree.Children[0].Children) == 0 {
		t.Errorf("unexpected tree %s", rec.Body)
	}

	rec = serve(s, multipartRequest(t, "/api/outline", map[string]string{"format": "text"},
		upload{"file", "guide.md", guide}))
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("expected text response, got %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "H1 Deployment Guide (p. 1)") {
		t.Errorf("unexpected text outline:\n%s", rec.Body)
	}
}

func TestOutline_BadRequests(t *testing.T) {
	s := newTestServer(t, "")
	tests := []struct {
		name  string
		files []upload
		want  int
	}{
		{"missing file", nil, http.StatusBadRequest},
		{"unsupported type", []upload{{"file", "sheet.xlsx", "x"}}, http.StatusBadRequest},
		{"corrupt pdf", []upload{{"file", "broken.pdf", "not a pdf"}}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, multipartRequest(t, "/api/outline", nil, tt.files...))
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body)
			}
		})
	}

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/outline", strings.NewReader("plain")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-multipart body, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, "secret")
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if rec := serve(s, req); rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestJobs_SubmitAndPoll(t *testing.T) {
	s := newTestServer(t, "")
	rec := serve(s, multipartRequest(t, "/api/outline/jobs", nil, upload{"file", "guide.md", guide}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted.PollURL != "/api/outline/jobs/"+accepted.JobID {
		t.Errorf("unexpected poll url %q", accepted.PollURL)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec := serve(s, httptest.NewRequest(http.MethodGet, accepted.PollURL, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("poll: expected 200, got %d", rec.Code)
		}
		var snap pipeline.JobSnapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if snap.Status == pipeline.StatusCompleted {
			if snap.Result == nil || len(snap.Result.Outline) == 0 {
				t.Errorf("expected outline in completed job, got %+v", snap)
			}
			return
		}
		if snap.Status == pipeline.StatusFailed {
			t.Fatalf("job failed: %v", snap.Progress.Errors)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job still %q", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestJobs_NotFound(t *testing.T) {
	s := newTestServer(t, "")
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/outline/jobs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestJobs_Batch(t *testing.T) {
	s := newTestServer(t, "")
	rec := serve(s, multipartRequest(t, "/api/outline/jobs/batch", nil,
		upload{"files", "guide.md", guide},
		upload{"files", "notes.txt", "Overview\n\nSome notes about the project."},
		upload{"files", "table.csv", "a,b"},
	))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Jobs) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Jobs))
	}
	for i, want := range []bool{true, true, false} {
		_, queued := resp.Jobs[i]["job_id"]
		if queued != want {
			t.Errorf("result %d: expected queued=%v, got %v", i, want, resp.Jobs[i])
		}
	}

	rec = serve(s, multipartRequest(t, "/api/outline/jobs/batch", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty batch, got %d", rec.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&outline.InvalidInputError{Reason: "document has no pages"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("parse: %w", &outline.InvalidInputError{Reason: "x"}), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w after 10s", pipeline.ErrTimeout), http.StatusGatewayTimeout},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("parse: malformed"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":           "report.pdf",
		"../../etc/passwd.txt": "passwd.txt",
		"":                     "unnamed",
		"a..b.md":              "a_b.md",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
