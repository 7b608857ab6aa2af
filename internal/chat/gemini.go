package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

const extractPromptFormat = `You are extracting information from a document image.

Find the value for each of these keys in the document:
%s

Respond with ONLY a JSON object mapping each key to its value as a string.
Use an empty string for keys not present in the document. No commentary,
no code fences.`

// GeminiBackend extracts document fields with a Gemini vision model.
type GeminiBackend struct {
	model string
}

// NewGeminiBackend constructs the Gemini-backed extraction provider.
func NewGeminiBackend(model string) *GeminiBackend {
	return &GeminiBackend{model: model}
}

func (b *GeminiBackend) Name() string { return "gemini" }

// Extract sends the image with the key list and parses the JSON answer.
func (b *GeminiBackend) Extract(ctx context.Context, image []byte, keys []string) (map[string]string, error) {
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

	prompt := fmt.Sprintf(extractPromptFormat, "- "+strings.Join(keys, "\n- "))
	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
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

	values, err := parseExtraction(sb.String())
	if err != nil {
		return nil, apperr.Wrap(apperr.InferenceFailure, err, "parse extraction response")
	}
	return values, nil
}

// parseExtraction decodes the model's JSON answer, tolerating code fences
// and non-string values.
func parseExtraction(text string) (map[string]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			values[k] = val
		case float64:
			values[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			values[k] = strconv.FormatBool(val)
		case nil:
			values[k] = ""
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				return nil, err
			}
			values[k] = string(encoded)
		}
	}
	return values, nil
}
