package translate

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

const translatePromptFormat = "Translate the following text from %s to %s. " +
	"Only output the translation, nothing else.\n\n%s"

// GeminiBackend translates text with a Gemini chat model.
type GeminiBackend struct {
	model string
}

func NewGeminiBackend(model string) *GeminiBackend {
	return &GeminiBackend{model: model}
}

func (b *GeminiBackend) Name() string { return "gemini" }

func (b *GeminiBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", apperr.New(apperr.InferenceFailure, "GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", apperr.Wrap(apperr.InferenceFailure, err, "create gemini client")
	}
	defer client.Close()

	model := client.GenerativeModel(b.model)
	model.SetTemperature(0)

	prompt := fmt.Sprintf(translatePromptFormat, languageNames[sourceLang], languageNames[targetLang], text)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", apperr.Wrap(apperr.InferenceFailure, err, "gemini translation")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperr.New(apperr.InferenceFailure, "gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", apperr.New(apperr.InferenceFailure, "gemini returned empty translation")
	}
	return out, nil
}
