package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/scoregest/internal/config"
	"github.com/dgallion1/scoregest/internal/metrics"
	"github.com/dgallion1/scoregest/internal/pdfdoc/pdftest"
	"github.com/dgallion1/scoregest/internal/pipeline"
	"github.com/dgallion1/scoregest/internal/protocol"
)

const apiKey = "test-key"

func testServer(t *testing.T, start bool, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := *config.New()
	cfg.APIKey = apiKey
	cfg.WorkerCount = 1
	if mutate != nil {
		mutate(&cfg)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewManager()
	orch := pipeline.NewOrchestrator(cfg, protocol.NewParser(cfg.Template, log, protocol.WithMetrics(m)), nil, m, log)
	if start {
		orch.Start(context.Background())
		t.Cleanup(orch.Stop)
	}
	return NewServer(orch, m, log, cfg)
}

func upload(t *testing.T, path, field string, files map[string][]byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+apiKey)
	return req
}

func authed(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	srv := testServer(t, false, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("health: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("metrics: status %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	srv := testServer(t, false, nil)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic " + apiKey},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(http.MethodGet, "/api/stats"))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", rec.Code)
	}
	if stats := decode(t, rec); stats["storing"] != false || stats["workers"] != float64(1) {
		t.Errorf("unexpected stats %v", stats)
	}
}

func TestParseLifecycle(t *testing.T) {
	srv := testServer(t, true, nil)
	pdf := pdftest.Build("BT /F1 10 Tf 1 0 0 1 50 700 Tm (Entries) Tj ET")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/parse", "file", map[string][]byte{"entries.pdf": pdf},
		map[string]string{"season": "2021-2022", "competition": "TF Brest"}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("parse: expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	jobID, _ := body["job_id"].(string)
	if jobID == "" || body["poll_url"] != "/api/parse/"+jobID+"/status" {
		t.Fatalf("unexpected accept body %v", body)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, authed(http.MethodGet, "/api/parse/"+jobID+"/status"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status: expected 200, got %d", rec.Code)
		}
		status := decode(t, rec)
		if status["status"] == string(pipeline.StatusCompleted) {
			ctx, _ := status["context"].(map[string]any)
			if ctx["competition"] != "TF Brest" {
				t.Errorf("unexpected context %v", status["context"])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete: %v", status)
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(http.MethodGet, "/api/parse/"+jobID+"/result"))
	if rec.Code != http.StatusOK {
		t.Fatalf("result: expected 200, got %d", rec.Code)
	}
	result := decode(t, rec)
	if result["pdf"] != "entries.pdf" {
		t.Errorf("unexpected pdf %v", result["pdf"])
	}
	if perf, ok := result["performances"].([]any); !ok || len(perf) != 0 {
		t.Errorf("expected empty performances, got %v", result["performances"])
	}
}

func TestParseResultPending(t *testing.T) {
	srv := testServer(t, false, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/parse", "file", map[string][]byte{"a.pdf": []byte("%PDF-1.4")}, nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("parse: expected 202, got %d", rec.Code)
	}
	jobID := decode(t, rec)["job_id"].(string)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(http.MethodGet, "/api/parse/"+jobID+"/result"))
	if rec.Code != http.StatusConflict {
		t.Errorf("result of queued job: expected 409, got %d", rec.Code)
	}

	for _, path := range []string{"/api/parse/nope/status", "/api/parse/nope/result"} {
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, authed(http.MethodGet, path))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestParseRejects(t *testing.T) {
	srv := testServer(t, false, func(c *config.Config) {
		c.MaxQueueSize = 1
		c.MaxUploadBytes = 64
	})

	tests := []struct {
		name  string
		files map[string][]byte
		want  int
	}{
		{"no file", nil, http.StatusBadRequest},
		{"not a pdf", map[string][]byte{"notes.txt": []byte("x")}, http.StatusBadRequest},
		{"too large", map[string][]byte{"big.pdf": bytes.Repeat([]byte("x"), 65)}, http.StatusRequestEntityTooLarge},
		{"accepted", map[string][]byte{"a.pdf": []byte("x")}, http.StatusAccepted},
		{"queue full", map[string][]byte{"b.pdf": []byte("x")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, upload(t, "/api/parse", "file", tt.files, nil))
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestBatchParse(t *testing.T) {
	srv := testServer(t, false, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/parse/batch", "files", map[string][]byte{
		"a.pdf":     []byte("x"),
		"notes.txt": []byte("x"),
	}, nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("batch: expected 202, got %d", rec.Code)
	}
	jobs, _ := decode(t, rec)["jobs"].([]any)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 entries, got %v", jobs)
	}
	var accepted, rejected int
	for _, j := range jobs {
		entry := j.(map[string]any)
		if _, ok := entry["job_id"]; ok {
			accepted++
		}
		if _, ok := entry["error"]; ok {
			rejected++
		}
	}
	if accepted != 1 || rejected != 1 {
		t.Errorf("expected 1 accepted and 1 rejected, got %d/%d", accepted, rejected)
	}
}

func TestCompetitionInfo(t *testing.T) {
	srv := testServer(t, false, nil)
	page := `<html><body><h1>Coupe de France Novice</h1><p>Rouen</p><p>05/02/2022 - 06/02/2022</p><table></table></body></html>`

	req := authed(http.MethodPost, "/api/competitions/info?season=2021-2022&url=http://example.org/CdF/index.htm")
	req.Body = io.NopCloser(strings.NewReader(page))
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decode(t, rec)
	info, _ := body["info"].(map[string]any)
	if info["competition"] != "Coupe de France Novice" || info["type"] != "CdF" || info["start"] != "2022-02-05" {
		t.Errorf("unexpected info %v", info)
	}
	pctx, _ := body["context"].(map[string]any)
	if pctx["season"] != "2021-2022" || pctx["city"] != "Rouen" {
		t.Errorf("unexpected context %v", pctx)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"scores.pdf":           "scores.pdf",
		"../../etc/passwd.pdf": "passwd.pdf",
		`C:\results\FS.pdf`:    "FS.pdf",
		"":                     "unnamed.pdf",
		"a..b.pdf":             "a_b.pdf",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
