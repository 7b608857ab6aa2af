package vl

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

// PaddleBackend calls the VL pipeline on the inference sidecar.
type PaddleBackend struct {
	baseURL string
	client  *http.Client
}

// NewPaddleBackend constructs the sidecar-backed VL provider.
func NewPaddleBackend(baseURL string) *PaddleBackend {
	return &PaddleBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

func (b *PaddleBackend) Name() string { return "paddle" }

type paddleVLRequest struct {
	Image string `json:"image"`
}

// Parse posts the image to the sidecar VL endpoint.
func (b *PaddleBackend) Parse(ctx context.Context, image []byte) (*Result, error) {
	payload, err := json.Marshal(paddleVLRequest{Image: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return nil, fmt.Errorf("marshal vl request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/vl", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create vl request: %w", err)
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
	return &res, nil
}
