package structure

import (
	"context"
	"strings"
	"testing"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

type fakeBackend struct {
	pages []*Page
	calls int
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) ParsePage(ctx context.Context, image []byte, lang string) (*Page, error) {
	page := b.pages[b.calls%len(b.pages)]
	b.calls++
	return page, nil
}

type fakeRasterizer struct {
	pages [][]byte
}

func (r fakeRasterizer) Rasterize(ctx context.Context, pdf []byte) ([][]byte, error) {
	return r.pages, nil
}

func textPage(text string) *Page {
	return &Page{
		Layout:     []Region{{Type: "text", Box: []float64{0, 0, 100, 20}, Confidence: 0.9}},
		Tables:     []Table{},
		Formulas:   []Formula{},
		Charts:     []Chart{},
		Seals:      []Seal{},
		TextBlocks: []TextBlock{{Text: text, Box: []float64{0, 0, 100, 20}}},
	}
}

func TestParseRejectsUnsupportedLanguage(t *testing.T) {
	backend := &fakeBackend{pages: []*Page{textPage("hi")}}
	engine := NewWithBackend(backend, fakeRasterizer{})

	_, err := engine.Parse(context.Background(), []byte("not a pdf"), "elvish")
	if !apperr.Is(err, apperr.UnsupportedLanguage) {
		t.Fatalf("expected UnsupportedLanguage, got %v", err)
	}
	if backend.calls != 0 {
		t.Error("backend must not be called for an unsupported language")
	}
}

func TestParseSingleImage(t *testing.T) {
	backend := &fakeBackend{pages: []*Page{textPage("hello world")}}
	engine := NewWithBackend(backend, fakeRasterizer{})

	res, err := engine.Parse(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "en")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", backend.calls)
	}
	if len(res.Pages) != 0 {
		t.Error("single image result must not carry a pages array")
	}
	if !strings.Contains(res.Markdown, "hello world") {
		t.Errorf("markdown missing text: %q", res.Markdown)
	}
	if res.MarkdownHTML == "" {
		t.Error("expected rendered markdown HTML")
	}
}

func TestParsePDFConcatenatesPagesInOrder(t *testing.T) {
	backend := &fakeBackend{pages: []*Page{textPage("page one"), textPage("page two")}}
	raster := fakeRasterizer{pages: [][]byte{[]byte("p1"), []byte("p2")}}
	engine := NewWithBackend(backend, raster)

	res, err := engine.Parse(context.Background(), []byte("%PDF-1.7 ..."), "en")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("expected 2 backend calls, got %d", backend.calls)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(res.Pages))
	}
	first := strings.Index(res.Markdown, "page one")
	second := strings.Index(res.Markdown, "page two")
	if first < 0 || second < 0 || second < first {
		t.Errorf("pages out of order in markdown: %q", res.Markdown)
	}
	if len(res.TextBlocks) != 2 {
		t.Errorf("expected aggregated text blocks, got %d", len(res.TextBlocks))
	}
}

func TestIsPDF(t *testing.T) {
	if !IsPDF([]byte("%PDF-1.4\n...")) {
		t.Error("expected PDF header to be detected")
	}
	if IsPDF([]byte{0x89, 'P', 'N', 'G'}) {
		t.Error("PNG must not be detected as PDF")
	}
}

func TestRasterizeMissingBinary(t *testing.T) {
	r := CommandRasterizer{binary: "pdftoppm-does-not-exist"}
	_, err := r.Rasterize(context.Background(), []byte("%PDF-1.4"))
	if !apperr.Is(err, apperr.InferenceFailure) {
		t.Errorf("err = %v, want InferenceFailure", err)
	}
}

func TestRasterizeRejectedDocument(t *testing.T) {
	// `false` runs and exits nonzero, like pdftoppm on a broken PDF.
	r := CommandRasterizer{binary: "false"}
	_, err := r.Rasterize(context.Background(), []byte("%PDF-1.4 garbage"))
	if !apperr.Is(err, apperr.InvalidImage) {
		t.Errorf("err = %v, want InvalidImage", err)
	}
}

func TestAssembleMarkdownReadingOrder(t *testing.T) {
	page := &Page{
		Layout: []Region{
			{Type: "title", Box: []float64{0, 10, 200, 40}},
		},
		TextBlocks: []TextBlock{
			{Text: "Closing paragraph", Box: []float64{0, 300, 200, 340}},
			{Text: "Annual Report", Box: []float64{0, 10, 200, 40}},
		},
		Tables:   []Table{{HTML: "<table><tr><td>1</td></tr></table>", Box: []float64{0, 100, 200, 200}}},
		Formulas: []Formula{{LaTeX: `E = mc^2`, Box: []float64{0, 220, 200, 250}}},
	}

	md := AssembleMarkdown(page)

	order := []string{"## Annual Report", "<table>", "$$E = mc^2$$", "Closing paragraph"}
	last := -1
	for _, want := range order {
		idx := strings.Index(md, want)
		if idx < 0 {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
		if idx < last {
			t.Fatalf("%q out of reading order:\n%s", want, md)
		}
		last = idx
	}
}

func TestRenderMarkdownProducesHTML(t *testing.T) {
	html, err := RenderMarkdown("## Title\n\nSome *text*.")
	if err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if !strings.Contains(html, "<h2>") || !strings.Contains(html, "<em>") {
		t.Errorf("unexpected HTML: %s", html)
	}
}

func TestPageNumber(t *testing.T) {
	tests := []struct {
		path     string
		expected int
	}{
		{"/tmp/x/page-1.png", 1},
		{"/tmp/x/page-03.png", 3},
		{"/tmp/x/page-12.png", 12},
		{"/tmp/x/noindex.png", 0},
	}
	for _, tt := range tests {
		if got := pageNumber(tt.path); got != tt.expected {
			t.Errorf("pageNumber(%s) = %d, want %d", tt.path, got, tt.expected)
		}
	}
}
