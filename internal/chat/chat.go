// Package chat wraps LLM-backed key information extraction: pull named
// fields out of a document image, or answer a free-form question about it.
package chat

import (
	"context"
	"strings"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/config"
)

// Field is one extracted value. Confidence is 1 when the model produced a
// value for the key and 0 when it did not.
type Field struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Result is the outcome of one extraction call.
type Result struct {
	Extracted     map[string]Field `json:"extracted"`
	KeysRequested []string         `json:"keys_requested"`
}

// Answer is the outcome of a free-form question.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Backend extracts values for the requested keys from a document image.
// Keys absent from the returned map were not found in the document.
type Backend interface {
	Name() string
	Extract(ctx context.Context, image []byte, keys []string) (map[string]string, error)
}

// Engine validates requests and normalizes backend output.
type Engine struct {
	backend Backend
}

// New wires the Gemini-backed extraction provider.
func New(cfg *config.Config) *Engine {
	return &Engine{backend: NewGeminiBackend(cfg.GeminiModel)}
}

// NewWithBackend wires an explicit backend; used by tests.
func NewWithBackend(b Backend) *Engine {
	return &Engine{backend: b}
}

// Extract pulls the requested keys out of the document. Every requested key
// appears in the result; keys the model could not find carry confidence 0.
func (e *Engine) Extract(ctx context.Context, image []byte, keys []string) (*Result, error) {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, apperr.New(apperr.InvalidParameter, "no extraction keys given")
	}

	values, err := e.backend.Extract(ctx, image, cleaned)
	if err != nil {
		return nil, err
	}

	extracted := make(map[string]Field, len(cleaned))
	for _, k := range cleaned {
		if v, ok := values[k]; ok && v != "" {
			extracted[k] = Field{Value: v, Confidence: 1}
		} else {
			extracted[k] = Field{}
		}
	}
	return &Result{Extracted: extracted, KeysRequested: cleaned}, nil
}

// ExtractTemplate runs Extract with a predefined template's key set.
func (e *Engine) ExtractTemplate(ctx context.Context, image []byte, templateID string) (*Result, error) {
	tmpl, ok := templateByID(templateID)
	if !ok {
		return nil, apperr.New(apperr.InvalidParameter, "unknown extraction template: %s", templateID)
	}
	return e.Extract(ctx, image, tmpl.Keys)
}

// Ask answers a natural language question about the document. The question
// doubles as the extraction key, so the backend needs no separate mode.
func (e *Engine) Ask(ctx context.Context, image []byte, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperr.New(apperr.InvalidParameter, "question is required")
	}
	res, err := e.Extract(ctx, image, []string{question})
	if err != nil {
		return nil, err
	}
	return &Answer{Question: question, Answer: res.Extracted[question].Value}, nil
}
