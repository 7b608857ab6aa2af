package vl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

const parsePrompt = `You are parsing a document image.

Transcribe the full document content as GitHub-flavored markdown:
- Preserve headings, paragraphs, and lists.
- Reconstruct tables as markdown tables.
- Write formulas as LaTeX inside $$ delimiters.
- Keep the reading order of the page.

Output ONLY the markdown, with no commentary.`

// GeminiBackend parses documents with a Gemini vision model.
type GeminiBackend struct {
	model string
}

// NewGeminiBackend constructs the Gemini-backed VL provider.
func NewGeminiBackend(model string) *GeminiBackend {
	return &GeminiBackend{model: model}
}

func (b *GeminiBackend) Name() string { return "gemini" }

// Parse sends the page image with a fixed transcription prompt and reshapes
// the markdown answer into the common result format.
func (b *GeminiBackend) Parse(ctx context.Context, image []byte) (*Result, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, apperr.New(apperr.InferenceFailure, "GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, apperr.Wrap(apperr.InferenceFailure, err, "create gemini client")
	}
	defer client.Close()

	model := client.GenerativeModel(b.model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx,
		genai.Text(parsePrompt),
		genai.ImageData("png", image),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.InferenceFailure, err, "generate content")
	}
	if len(resp.Candidates) == 0 {
		return nil, apperr.New(apperr.InferenceFailure, "no candidates returned from gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, apperr.New(apperr.InferenceFailure, "empty content returned from gemini")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	markdown := strings.TrimSpace(sb.String())
	if markdown == "" {
		return nil, fmt.Errorf("unexpected response format from gemini")
	}

	return &Result{
		FullText: plainText(markdown),
		Markdown: markdown,
		Elements: []Element{},
	}, nil
}

// plainText strips the most common markdown syntax for the full_text field.
func plainText(markdown string) string {
	lines := strings.Split(markdown, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#>*- ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
