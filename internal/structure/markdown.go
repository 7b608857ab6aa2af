package structure

import (
	"bytes"
	"sort"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
)

// mdItem pairs a markdown fragment with its vertical position so fragments
// can be emitted in reading order.
type mdItem struct {
	y  float64
	md string
}

func boxTop(box []float64) float64 {
	if len(box) >= 2 {
		return box[1]
	}
	return 0
}

// AssembleMarkdown builds a markdown rendering of a parsed page from its
// typed regions, ordered top to bottom. Tables stay as HTML blocks, formulas
// are wrapped in display math delimiters.
func AssembleMarkdown(p *Page) string {
	items := make([]mdItem, 0, len(p.TextBlocks)+len(p.Tables)+len(p.Formulas)+len(p.Seals))

	titles := map[float64]bool{}
	for _, r := range p.Layout {
		if r.Type == "title" {
			titles[boxTop(r.Box)] = true
		}
	}

	for _, tb := range p.TextBlocks {
		text := strings.TrimSpace(tb.Text)
		if text == "" {
			continue
		}
		if titles[boxTop(tb.Box)] {
			text = "## " + text
		}
		items = append(items, mdItem{y: boxTop(tb.Box), md: text})
	}
	for _, t := range p.Tables {
		if t.HTML == "" {
			continue
		}
		items = append(items, mdItem{y: boxTop(t.Box), md: t.HTML})
	}
	for _, f := range p.Formulas {
		if f.LaTeX == "" {
			continue
		}
		items = append(items, mdItem{y: boxTop(f.Box), md: "$$" + f.LaTeX + "$$"})
	}
	for _, s := range p.Seals {
		if s.Text == "" {
			continue
		}
		items = append(items, mdItem{y: boxTop(s.Box), md: "> " + s.Text})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].y < items[j].y })

	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.md)
	}
	return strings.Join(parts, "\n\n")
}

// RenderMarkdown converts markdown (with $$...$$ LaTeX math) to HTML for the
// browser preview.
func RenderMarkdown(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			treeblood.MathML(),
		),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
