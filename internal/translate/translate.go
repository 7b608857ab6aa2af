// Package translate wraps LLM-backed translation: plain text, or a whole
// document via the vision-language parser's markdown output.
package translate

import (
	"context"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/config"
	"github.com/ocrstudio/ocrstudio/internal/structure"
	"github.com/ocrstudio/ocrstudio/internal/vl"
)

// Language is one entry of the translation language table.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// languageNames is the fixed set of translation languages. Codes are ISO
// 639-1 and differ from the OCR recognition codes.
var languageNames = map[string]string{
	"zh": "Chinese",
	"en": "English",
	"ja": "Japanese",
	"ko": "Korean",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ar": "Arabic",
	"hi": "Hindi",
	"th": "Thai",
	"vi": "Vietnamese",
}

var languageOrder = []string{
	"zh", "en", "ja", "ko", "fr", "de", "es", "it", "pt", "ru", "ar", "hi", "th", "vi",
}

// Languages lists the supported translation languages in display order.
func Languages() []Language {
	out := make([]Language, 0, len(languageOrder))
	for _, code := range languageOrder {
		out = append(out, Language{Code: code, Name: languageNames[code]})
	}
	return out
}

// SupportedLanguage reports whether code is in the translation table.
func SupportedLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// Result is a plain text translation.
type Result struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// DocumentResult is a whole-document translation. The document is parsed to
// markdown first, so layout survives translation.
type DocumentResult struct {
	SourceLang         string `json:"source_lang"`
	TargetLang         string `json:"target_lang"`
	Markdown           string `json:"markdown"`
	TranslatedMarkdown string `json:"translated_markdown"`
	MarkdownHTML       string `json:"markdown_html,omitempty"`
}

// Backend translates text between two languages from the table.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Engine validates languages and chains document parsing with translation.
type Engine struct {
	backend Backend
	vl      *vl.Engine
}

// New wires the Gemini-backed translator over the given VL engine.
func New(cfg *config.Config, vlEngine *vl.Engine) *Engine {
	return &Engine{backend: NewGeminiBackend(cfg.GeminiModel), vl: vlEngine}
}

// NewWithBackend wires explicit collaborators; used by tests.
func NewWithBackend(b Backend, vlEngine *vl.Engine) *Engine {
	return &Engine{backend: b, vl: vlEngine}
}

func resolveLangs(sourceLang, targetLang string) (string, string, error) {
	if sourceLang == "" {
		sourceLang = "en"
	}
	if targetLang == "" {
		targetLang = "zh"
	}
	if !SupportedLanguage(sourceLang) {
		return "", "", apperr.New(apperr.UnsupportedLanguage, "unsupported source language: %s", sourceLang)
	}
	if !SupportedLanguage(targetLang) {
		return "", "", apperr.New(apperr.UnsupportedLanguage, "unsupported target language: %s", targetLang)
	}
	return sourceLang, targetLang, nil
}

// Text translates a plain text snippet.
func (e *Engine) Text(ctx context.Context, text, sourceLang, targetLang string) (*Result, error) {
	if text == "" {
		return nil, apperr.New(apperr.InvalidParameter, "text is required")
	}
	src, tgt, err := resolveLangs(sourceLang, targetLang)
	if err != nil {
		return nil, err
	}

	translated, err := e.backend.Translate(ctx, text, src, tgt)
	if err != nil {
		return nil, err
	}
	return &Result{
		Original:   text,
		Translated: translated,
		SourceLang: src,
		TargetLang: tgt,
	}, nil
}

// Document parses the document image to markdown and translates it.
func (e *Engine) Document(ctx context.Context, image []byte, sourceLang, targetLang string) (*DocumentResult, error) {
	src, tgt, err := resolveLangs(sourceLang, targetLang)
	if err != nil {
		return nil, err
	}

	parsed, err := e.vl.Parse(ctx, image)
	if err != nil {
		return nil, err
	}
	markdown := parsed.Markdown
	if markdown == "" {
		markdown = parsed.FullText
	}
	if markdown == "" {
		return nil, apperr.New(apperr.InferenceFailure, "document parsing produced no text")
	}

	translated, err := e.backend.Translate(ctx, markdown, src, tgt)
	if err != nil {
		return nil, err
	}

	res := &DocumentResult{
		SourceLang:         src,
		TargetLang:         tgt,
		Markdown:           markdown,
		TranslatedMarkdown: translated,
	}
	if html, err := structure.RenderMarkdown(translated); err == nil {
		res.MarkdownHTML = html
	}
	return res, nil
}
