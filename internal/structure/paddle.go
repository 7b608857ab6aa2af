package structure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

// PaddleBackend calls the layout parsing pipeline on the inference sidecar.
type PaddleBackend struct {
	baseURL string
	client  *http.Client
}

// NewPaddleBackend constructs the sidecar-backed layout parser.
func NewPaddleBackend(baseURL string) *PaddleBackend {
	return &PaddleBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

func (b *PaddleBackend) Name() string { return "paddle" }

type paddleStructureRequest struct {
	Image string `json:"image"`
	Lang  string `json:"lang"`
}

// ParsePage posts one page image to the sidecar and decodes the page payload.
func (b *PaddleBackend) ParsePage(ctx context.Context, image []byte, lang string) (*Page, error) {
	payload, err := json.Marshal(paddleStructureRequest{
		Image: base64.StdEncoding.EncodeToString(image),
		Lang:  lang,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal structure request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/structure", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create structure request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.InferenceFailure, err, "call inference sidecar")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperr.New(apperr.InferenceFailure, "sidecar returned status %d: %s", resp.StatusCode, string(body))
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, apperr.Wrap(apperr.InferenceFailure, err, "decode sidecar response")
	}
	if page.Layout == nil {
		page.Layout = []Region{}
	}
	if page.Tables == nil {
		page.Tables = []Table{}
	}
	if page.Formulas == nil {
		page.Formulas = []Formula{}
	}
	if page.Charts == nil {
		page.Charts = []Chart{}
	}
	if page.Seals == nil {
		page.Seals = []Seal{}
	}
	if page.TextBlocks == nil {
		page.TextBlocks = []TextBlock{}
	}
	return &page, nil
}
