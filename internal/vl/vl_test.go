package vl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

type fakeBackend struct {
	result *Result
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Parse(ctx context.Context, image []byte) (*Result, error) {
	return b.result, nil
}

func TestParseFillsMarkdownHTML(t *testing.T) {
	engine := NewWithBackend(&fakeBackend{result: &Result{
		FullText: "Invoice 42",
		Markdown: "# Invoice 42",
	}})

	res, err := engine.Parse(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !strings.Contains(res.MarkdownHTML, "<h1>") {
		t.Errorf("expected rendered heading, got %q", res.MarkdownHTML)
	}
	if res.Elements == nil {
		t.Error("elements must be non-nil for JSON output")
	}
}

func TestPlainTextStripsMarkdown(t *testing.T) {
	md := "# Title\n\n- item one\n- item two\n\n> note"
	text := plainText(md)
	for _, marker := range []string{"#", "-", ">"} {
		if strings.Contains(text, marker) {
			t.Errorf("plain text still contains %q: %q", marker, text)
		}
	}
	if !strings.Contains(text, "Title") || !strings.Contains(text, "item one") {
		t.Errorf("plain text lost content: %q", text)
	}
}

func TestPaddleBackendParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vl" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Result{FullText: "hello", Markdown: "hello"})
	}))
	defer srv.Close()

	res, err := NewPaddleBackend(srv.URL).Parse(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.FullText != "hello" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestPaddleBackendErrorMapsToInferenceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewPaddleBackend(srv.URL).Parse(context.Background(), []byte("img"))
	if !apperr.Is(err, apperr.InferenceFailure) {
		t.Fatalf("expected InferenceFailure, got %v", err)
	}
}

func TestGeminiBackendRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := NewGeminiBackend("gemini-2.0-flash").Parse(context.Background(), []byte("img"))
	if !apperr.Is(err, apperr.InferenceFailure) {
		t.Fatalf("expected InferenceFailure for missing key, got %v", err)
	}
}
