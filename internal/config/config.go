// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"path/filepath"
)

// Config holds every tunable the server and CLI commands read. Values come
// from the environment once at startup; a .env file is loaded by the CLI root
// before this runs.
type Config struct {
	Port string

	// ModelDir is where downloaded model artifacts live.
	ModelDir string
	// UploadDir is the scratch directory for in-flight uploads.
	UploadDir string

	// OCRBackend selects the OCR engine: "tesseract" (in-process) or
	// "paddle" (HTTP sidecar).
	OCRBackend string
	// PaddleURL is the base URL of the inference sidecar serving the
	// pre-built PaddleOCR pipelines.
	PaddleURL string

	// InsecureDownloads disables TLS verification against the remote model
	// source. Meant for air-gapped mirrors with self-signed certificates.
	InsecureDownloads bool

	GeminiModel string
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		Port:              getEnv("OCRSTUDIO_PORT", "8000"),
		ModelDir:          getEnv("OCRSTUDIO_MODEL_DIR", filepath.Join(home, ".ocrstudio", "models")),
		UploadDir:         getEnv("OCRSTUDIO_UPLOAD_DIR", filepath.Join(os.TempDir(), "ocrstudio-uploads")),
		OCRBackend:        getEnv("OCRSTUDIO_OCR_BACKEND", "tesseract"),
		PaddleURL:         getEnv("OCRSTUDIO_PADDLE_URL", "http://localhost:8501"),
		InsecureDownloads: getEnv("OCRSTUDIO_INSECURE_DOWNLOADS", "") == "true",
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}
}
