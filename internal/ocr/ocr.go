// Package ocr wraps the text recognition engines behind a single adapter.
// Two backends are available: an in-process Tesseract engine and the
// PaddleOCR inference sidecar.
package ocr

import (
	"context"
	"strings"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/config"
)

// Options are the validated per-request recognition options.
type Options struct {
	// Lang is a code from the language table.
	Lang string
	// Version is the recognition pipeline version tag.
	Version string
}

// Box is one recognized text span with its bounding polygon.
type Box struct {
	// Points is the polygon outlining the span, in pixel coordinates,
	// ordered clockwise from the top-left corner.
	Points     [][2]float64 `json:"points"`
	Text       string       `json:"text"`
	Confidence float64      `json:"confidence"`
}

// Span is a recognized text fragment without positional data.
type Span struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Result is the normalized output of one recognition call.
type Result struct {
	Boxes    []Box  `json:"boxes"`
	Texts    []Span `json:"texts"`
	FullText string `json:"full_text"`
}

// Backend is one recognition provider. Implementations must tolerate
// concurrent Recognize calls.
type Backend interface {
	Name() string
	Recognize(ctx context.Context, image []byte, opts Options) (*Result, error)
}

// Engine validates options and dispatches to the configured backend.
type Engine struct {
	backend Backend
}

// New selects the backend named by the configuration. Unknown names fall
// back to tesseract.
func New(cfg *config.Config) *Engine {
	var b Backend
	switch cfg.OCRBackend {
	case "paddle":
		b = NewPaddleBackend(cfg.PaddleURL)
	default:
		b = NewTesseractBackend()
	}
	return &Engine{backend: b}
}

// NewWithBackend wires an explicit backend; used by tests and the batch CLI.
func NewWithBackend(b Backend) *Engine {
	return &Engine{backend: b}
}

// Backend returns the active provider.
func (e *Engine) Backend() Backend { return e.backend }

// Recognize validates opts, then runs recognition on the image bytes.
// Option errors are reported before the backend is touched.
func (e *Engine) Recognize(ctx context.Context, image []byte, opts Options) (*Result, error) {
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	if opts.Version == "" {
		opts.Version = "PP-OCRv5"
	}
	if !SupportedLanguage(opts.Lang) {
		return nil, apperr.New(apperr.UnsupportedLanguage, "unsupported language: %s", opts.Lang)
	}
	if !SupportedVersion(opts.Version) {
		return nil, apperr.New(apperr.UnsupportedVersion, "unsupported version: %s", opts.Version)
	}
	return e.backend.Recognize(ctx, image, opts)
}

func joinSpans(spans []Span) string {
	parts := make([]string, 0, len(spans))
	for _, s := range spans {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
