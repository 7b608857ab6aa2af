// Package structure wraps the layout parsing pipeline: it turns a document
// image (or each page of a PDF) into typed layout regions, extracted tables,
// formulas, and an assembled markdown rendering.
package structure

import (
	"context"
	"fmt"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/config"
	"github.com/ocrstudio/ocrstudio/internal/ocr"
)

// Region is one detected layout element.
type Region struct {
	Type       string    `json:"type"`
	Box        []float64 `json:"box"`
	Confidence float64   `json:"confidence"`
}

// Table carries the HTML reconstruction of a detected table.
type Table struct {
	HTML string    `json:"html"`
	Box  []float64 `json:"box,omitempty"`
}

// Formula carries the LaTeX transcription of a detected formula.
type Formula struct {
	LaTeX string    `json:"latex"`
	Box   []float64 `json:"box,omitempty"`
}

// Chart carries extracted chart data.
type Chart struct {
	Data string    `json:"data,omitempty"`
	Box  []float64 `json:"box,omitempty"`
}

// Seal carries recognized seal (stamp) text.
type Seal struct {
	Text string    `json:"text"`
	Box  []float64 `json:"box,omitempty"`
}

// TextBlock is a plain text region.
type TextBlock struct {
	Text string    `json:"text"`
	Box  []float64 `json:"box,omitempty"`
}

// Page is the parse result for a single page.
type Page struct {
	Layout     []Region    `json:"layout"`
	Tables     []Table     `json:"tables"`
	Formulas   []Formula   `json:"formulas"`
	Charts     []Chart     `json:"charts"`
	Seals      []Seal      `json:"seals"`
	TextBlocks []TextBlock `json:"text_blocks"`
	Markdown   string      `json:"markdown"`
}

// Result is the parse result for a whole document. For single images it has
// one implicit page and Pages is omitted; for PDFs every page is listed in
// input order and the top-level fields aggregate all pages.
type Result struct {
	Layout       []Region    `json:"layout"`
	Tables       []Table     `json:"tables"`
	Formulas     []Formula   `json:"formulas"`
	Charts       []Chart     `json:"charts"`
	Seals        []Seal      `json:"seals"`
	TextBlocks   []TextBlock `json:"text_blocks"`
	Markdown     string      `json:"markdown"`
	MarkdownHTML string      `json:"markdown_html,omitempty"`
	Pages        []Page      `json:"pages,omitempty"`
}

// LayoutStyle describes how the UI draws one region type.
type LayoutStyle struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// LayoutStyles maps region types to visualization colors.
var LayoutStyles = map[string]LayoutStyle{
	"text":    {Color: "#6366f1", Label: "Text"},
	"title":   {Color: "#f59e0b", Label: "Title"},
	"figure":  {Color: "#10b981", Label: "Figure"},
	"table":   {Color: "#ef4444", Label: "Table"},
	"formula": {Color: "#8b5cf6", Label: "Formula"},
	"list":    {Color: "#06b6d4", Label: "List"},
	"header":  {Color: "#ec4899", Label: "Header"},
	"footer":  {Color: "#84cc16", Label: "Footer"},
	"seal":    {Color: "#f97316", Label: "Seal"},
	"chart":   {Color: "#14b8a6", Label: "Chart"},
}

// Backend parses one page image.
type Backend interface {
	Name() string
	ParsePage(ctx context.Context, image []byte, lang string) (*Page, error)
}

// Engine validates options, splits PDFs into pages and merges page results.
type Engine struct {
	backend    Backend
	rasterizer Rasterizer
}

// New wires the sidecar backend and the pdftoppm rasterizer.
func New(cfg *config.Config) *Engine {
	return &Engine{
		backend:    NewPaddleBackend(cfg.PaddleURL),
		rasterizer: CommandRasterizer{DPI: 144},
	}
}

// NewWithBackend wires explicit collaborators; used by tests.
func NewWithBackend(b Backend, r Rasterizer) *Engine {
	return &Engine{backend: b, rasterizer: r}
}

// Parse runs layout parsing over an image or a multi-page PDF. Pages of a
// PDF are processed independently and concatenated in page order.
func (e *Engine) Parse(ctx context.Context, data []byte, lang string) (*Result, error) {
	if lang == "" {
		lang = "ch"
	}
	if !ocr.SupportedLanguage(lang) {
		return nil, apperr.New(apperr.UnsupportedLanguage, "unsupported language: %s", lang)
	}

	if IsPDF(data) {
		pages, err := e.rasterizer.Rasterize(ctx, data)
		if err != nil {
			return nil, err
		}
		return e.parsePages(ctx, pages, lang)
	}
	return e.parsePages(ctx, [][]byte{data}, lang)
}

func (e *Engine) parsePages(ctx context.Context, images [][]byte, lang string) (*Result, error) {
	res := &Result{
		Layout:     []Region{},
		Tables:     []Table{},
		Formulas:   []Formula{},
		Charts:     []Chart{},
		Seals:      []Seal{},
		TextBlocks: []TextBlock{},
	}
	multi := len(images) > 1
	for i, img := range images {
		page, err := e.backend.ParsePage(ctx, img, lang)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		if page.Markdown == "" {
			page.Markdown = AssembleMarkdown(page)
		}
		res.Layout = append(res.Layout, page.Layout...)
		res.Tables = append(res.Tables, page.Tables...)
		res.Formulas = append(res.Formulas, page.Formulas...)
		res.Charts = append(res.Charts, page.Charts...)
		res.Seals = append(res.Seals, page.Seals...)
		res.TextBlocks = append(res.TextBlocks, page.TextBlocks...)
		if res.Markdown != "" {
			res.Markdown += "\n\n"
		}
		res.Markdown += page.Markdown
		if multi {
			res.Pages = append(res.Pages, *page)
		}
	}

	html, err := RenderMarkdown(res.Markdown)
	if err == nil {
		res.MarkdownHTML = html
	}
	return res, nil
}
