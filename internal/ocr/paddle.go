package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

// PaddleBackend forwards recognition to the PaddleOCR inference sidecar.
// The sidecar owns model loading; this client only speaks its JSON contract.
type PaddleBackend struct {
	baseURL string
	client  *http.Client
}

// NewPaddleBackend constructs a sidecar-backed OCR provider.
func NewPaddleBackend(baseURL string) *PaddleBackend {
	return &PaddleBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (b *PaddleBackend) Name() string { return "paddle" }

type paddleOCRRequest struct {
	Image   string `json:"image"`
	Lang    string `json:"lang"`
	Version string `json:"version"`
}

// Recognize posts the image to the sidecar and decodes the shared result
// shape. Sidecar errors surface as InferenceFailure with the response body.
func (b *PaddleBackend) Recognize(ctx context.Context, imgData []byte, opts Options) (*Result, error) {
	// Reject undecodable input before spending a sidecar round trip.
	if _, _, err := image.Decode(bytes.NewReader(imgData)); err != nil {
		return nil, apperr.Wrap(apperr.InvalidImage, err, "decode image")
	}

	payload, err := json.Marshal(paddleOCRRequest{
		Image:   base64.StdEncoding.EncodeToString(imgData),
		Lang:    opts.Lang,
		Version: opts.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/ocr", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create ocr request: %w", err)
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

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, apperr.Wrap(apperr.InferenceFailure, err, "decode sidecar response")
	}
	if res.Boxes == nil {
		res.Boxes = []Box{}
	}
	if res.Texts == nil {
		res.Texts = []Span{}
	}
	if res.FullText == "" {
		res.FullText = joinSpans(res.Texts)
	}
	return &res, nil
}
