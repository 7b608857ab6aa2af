// Package vl wraps the vision-language document parsing engine. The VL
// model consumes the page image directly and needs no language parameter.
package vl

import (
	"context"
	"os"

	"github.com/ocrstudio/ocrstudio/internal/config"
	"github.com/ocrstudio/ocrstudio/internal/structure"
)

// Element is one structured piece of VL output.
type Element struct {
	Type    string    `json:"type"`
	Content string    `json:"content"`
	Box     []float64 `json:"box,omitempty"`
}

// Result is the normalized VL parse output.
type Result struct {
	FullText     string    `json:"full_text"`
	Markdown     string    `json:"markdown"`
	MarkdownHTML string    `json:"markdown_html,omitempty"`
	Elements     []Element `json:"elements"`
}

// SupportedLanguages lists the scripts the VL model handles. The model is
// language-agnostic across this set, so requests carry no language code.
var SupportedLanguages = []string{
	"Chinese", "English", "Japanese", "Korean", "Arabic", "Russian",
	"Hindi", "Thai", "Vietnamese", "German", "French", "Spanish",
	"Italian", "Portuguese", "Dutch", "Polish", "Turkish", "Greek",
	"Hebrew", "Indonesian", "Malay", "Filipino", "Persian", "Bengali",
	"Tamil", "Telugu", "Kannada", "Malayalam", "Gujarati", "Punjabi",
}

// Backend is one VL provider.
type Backend interface {
	Name() string
	Parse(ctx context.Context, image []byte) (*Result, error)
}

// Engine dispatches to the configured VL backend.
type Engine struct {
	backend Backend
}

// New prefers Gemini when an API key is configured and falls back to the
// inference sidecar otherwise.
func New(cfg *config.Config) *Engine {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return &Engine{backend: NewGeminiBackend(cfg.GeminiModel)}
	}
	return &Engine{backend: NewPaddleBackend(cfg.PaddleURL)}
}

// NewWithBackend wires an explicit backend; used by tests and the batch CLI.
func NewWithBackend(b Backend) *Engine {
	return &Engine{backend: b}
}

// Backend returns the active provider.
func (e *Engine) Backend() Backend { return e.backend }

// Parse runs VL document parsing on the image bytes and fills the rendered
// markdown preview.
func (e *Engine) Parse(ctx context.Context, image []byte) (*Result, error) {
	res, err := e.backend.Parse(ctx, image)
	if err != nil {
		return nil, err
	}
	if res.Elements == nil {
		res.Elements = []Element{}
	}
	if res.Markdown != "" && res.MarkdownHTML == "" {
		if html, err := structure.RenderMarkdown(res.Markdown); err == nil {
			res.MarkdownHTML = html
		}
	}
	return res, nil
}
