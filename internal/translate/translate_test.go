package translate

import (
	"context"
	"strings"
	"testing"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/vl"
)

type fakeBackend struct {
	lastText   string
	lastSource string
	lastTarget string
	reply      string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Translate(_ context.Context, text, sourceLang, targetLang string) (string, error) {
	f.lastText = text
	f.lastSource = sourceLang
	f.lastTarget = targetLang
	return f.reply, nil
}

type fakeVLBackend struct {
	result *vl.Result
}

func (f *fakeVLBackend) Name() string { return "fake-vl" }

func (f *fakeVLBackend) Parse(_ context.Context, _ []byte) (*vl.Result, error) {
	return f.result, nil
}

func TestTextTranslatesWithDefaults(t *testing.T) {
	backend := &fakeBackend{reply: "你好"}
	engine := NewWithBackend(backend, nil)

	res, err := engine.Text(context.Background(), "hello", "", "")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if res.SourceLang != "en" || res.TargetLang != "zh" {
		t.Errorf("defaults = %s -> %s, want en -> zh", res.SourceLang, res.TargetLang)
	}
	if res.Translated != "你好" {
		t.Errorf("Translated = %q, want 你好", res.Translated)
	}
	if backend.lastText != "hello" {
		t.Errorf("backend got text %q", backend.lastText)
	}
}

func TestTextRejectsUnsupportedLanguage(t *testing.T) {
	engine := NewWithBackend(&fakeBackend{}, nil)

	for _, tc := range []struct{ source, target string }{
		{"xx", "zh"},
		{"en", "xx"},
	} {
		_, err := engine.Text(context.Background(), "hello", tc.source, tc.target)
		if apperr.KindOf(err) != apperr.UnsupportedLanguage {
			t.Errorf("Text(%s, %s) kind = %v, want UnsupportedLanguage", tc.source, tc.target, apperr.KindOf(err))
		}
	}
}

func TestTextRejectsEmptyText(t *testing.T) {
	engine := NewWithBackend(&fakeBackend{}, nil)

	_, err := engine.Text(context.Background(), "", "en", "zh")
	if apperr.KindOf(err) != apperr.InvalidParameter {
		t.Errorf("kind = %v, want InvalidParameter", apperr.KindOf(err))
	}
}

func TestDocumentTranslatesParsedMarkdown(t *testing.T) {
	backend := &fakeBackend{reply: "# 标题\n\n正文"}
	vlEngine := vl.NewWithBackend(&fakeVLBackend{result: &vl.Result{
		FullText: "Title Body",
		Markdown: "# Title\n\nBody",
	}})
	engine := NewWithBackend(backend, vlEngine)

	res, err := engine.Document(context.Background(), []byte("img"), "en", "zh")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if backend.lastText != "# Title\n\nBody" {
		t.Errorf("backend got text %q, want parsed markdown", backend.lastText)
	}
	if res.TranslatedMarkdown != "# 标题\n\n正文" {
		t.Errorf("TranslatedMarkdown = %q", res.TranslatedMarkdown)
	}
	if !strings.Contains(res.MarkdownHTML, "<h1") {
		t.Errorf("MarkdownHTML = %q, want rendered heading", res.MarkdownHTML)
	}
}

func TestDocumentFallsBackToFullText(t *testing.T) {
	backend := &fakeBackend{reply: "translated"}
	vlEngine := vl.NewWithBackend(&fakeVLBackend{result: &vl.Result{FullText: "plain text only"}})
	engine := NewWithBackend(backend, vlEngine)

	if _, err := engine.Document(context.Background(), []byte("img"), "en", "fr"); err != nil {
		t.Fatalf("Document: %v", err)
	}
	if backend.lastText != "plain text only" {
		t.Errorf("backend got text %q, want full text fallback", backend.lastText)
	}
}

func TestLanguagesTable(t *testing.T) {
	langs := Languages()
	if len(langs) != 14 {
		t.Fatalf("len(Languages()) = %d, want 14", len(langs))
	}
	if langs[0].Code != "zh" || langs[0].Name != "Chinese" {
		t.Errorf("first language = %+v, want zh/Chinese", langs[0])
	}
	for _, l := range langs {
		if !SupportedLanguage(l.Code) {
			t.Errorf("SupportedLanguage(%s) = false", l.Code)
		}
	}
}
