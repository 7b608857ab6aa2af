package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

type recordingBackend struct {
	called bool
	result *Result
}

func (b *recordingBackend) Name() string { return "recording" }

func (b *recordingBackend) Recognize(ctx context.Context, img []byte, opts Options) (*Result, error) {
	b.called = true
	return b.result, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+3] = 255
	}
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestRecognizeRejectsUnsupportedLanguage(t *testing.T) {
	backend := &recordingBackend{result: &Result{}}
	engine := NewWithBackend(backend)

	_, err := engine.Recognize(context.Background(), pngBytes(t, 10, 10), Options{Lang: "klingon", Version: "PP-OCRv5"})
	if !apperr.Is(err, apperr.UnsupportedLanguage) {
		t.Fatalf("expected UnsupportedLanguage, got %v", err)
	}
	if backend.called {
		t.Error("backend must not be called for an unsupported language")
	}
}

func TestRecognizeRejectsUnsupportedVersion(t *testing.T) {
	backend := &recordingBackend{result: &Result{}}
	engine := NewWithBackend(backend)

	_, err := engine.Recognize(context.Background(), pngBytes(t, 10, 10), Options{Lang: "en", Version: "PP-OCRv99"})
	if !apperr.Is(err, apperr.UnsupportedVersion) {
		t.Fatalf("expected UnsupportedVersion, got %v", err)
	}
	if backend.called {
		t.Error("backend must not be called for an unsupported version")
	}
}

func TestRecognizeAppliesDefaults(t *testing.T) {
	backend := &recordingBackend{result: &Result{FullText: "hello"}}
	engine := NewWithBackend(backend)

	res, err := engine.Recognize(context.Background(), pngBytes(t, 10, 10), Options{})
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if !backend.called {
		t.Fatal("backend was not called")
	}
	if res.FullText != "hello" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestLanguagesTableConsistency(t *testing.T) {
	langs := Languages()
	if len(langs) != len(languageNames) {
		t.Fatalf("Languages() returned %d entries, table has %d", len(langs), len(languageNames))
	}
	for _, l := range langs {
		if l.Name == "" {
			t.Errorf("language %s has no display name", l.Code)
		}
		if !SupportedLanguage(l.Code) {
			t.Errorf("listed language %s not reported as supported", l.Code)
		}
	}
}

func TestLanguageGroupsCoverTable(t *testing.T) {
	seen := map[string]int{}
	for _, g := range LanguageGroups() {
		for _, l := range g.Languages {
			seen[l.Code]++
		}
	}
	for code := range languageNames {
		if seen[code] != 1 {
			t.Errorf("language %s appears %d times across groups, want exactly 1", code, seen[code])
		}
	}
}

func TestTraineddataCoversLanguageTable(t *testing.T) {
	for code := range languageNames {
		if traineddata[code] == "" {
			t.Errorf("no traineddata mapping for language %s", code)
		}
	}
}

func TestPaddleBackendRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ocr" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req paddleOCRRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Lang != "en" || req.Version != "PP-OCRv5" {
			t.Errorf("options not forwarded: %+v", req)
		}
		json.NewEncoder(w).Encode(Result{
			Boxes: []Box{{
				Points:     [][2]float64{{0, 0}, {10, 0}, {10, 5}, {0, 5}},
				Text:       "hi",
				Confidence: 0.97,
			}},
			Texts: []Span{{Text: "hi", Confidence: 0.97}},
		})
	}))
	defer srv.Close()

	backend := NewPaddleBackend(srv.URL)
	res, err := backend.Recognize(context.Background(), pngBytes(t, 10, 10), Options{Lang: "en", Version: "PP-OCRv5"})
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if len(res.Boxes) != 1 || res.Boxes[0].Text != "hi" {
		t.Errorf("unexpected boxes: %+v", res.Boxes)
	}
	if res.FullText != "hi" {
		t.Errorf("expected full_text filled from spans, got %q", res.FullText)
	}
}

func TestPaddleBackendRejectsUndecodableInput(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	backend := NewPaddleBackend(srv.URL)
	_, err := backend.Recognize(context.Background(), []byte("not an image"), Options{Lang: "en", Version: "PP-OCRv5"})
	if !apperr.Is(err, apperr.InvalidImage) {
		t.Fatalf("expected InvalidImage, got %v", err)
	}
	if called {
		t.Error("sidecar must not be called for undecodable input")
	}
}

func TestPaddleBackendSidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend := NewPaddleBackend(srv.URL)
	_, err := backend.Recognize(context.Background(), pngBytes(t, 10, 10), Options{Lang: "en", Version: "PP-OCRv5"})
	if !apperr.Is(err, apperr.InferenceFailure) {
		t.Fatalf("expected InferenceFailure, got %v", err)
	}
}
