// Package handlers implements the HTTP API and static UI serving.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/batch"
	"github.com/ocrstudio/ocrstudio/internal/chat"
	"github.com/ocrstudio/ocrstudio/internal/config"
	"github.com/ocrstudio/ocrstudio/internal/ocr"
	"github.com/ocrstudio/ocrstudio/internal/registry"
	"github.com/ocrstudio/ocrstudio/internal/structure"
	"github.com/ocrstudio/ocrstudio/internal/translate"
	"github.com/ocrstudio/ocrstudio/internal/vl"
)

type Handler struct {
	cfg       *config.Config
	registry  *registry.Registry
	ocr       *ocr.Engine
	structure *structure.Engine
	vl        *vl.Engine
	chat      *chat.Engine
	translate *translate.Engine
	batch     *batch.Processor
}

func New(cfg *config.Config) *Handler {
	ocrEngine := ocr.New(cfg)
	structEngine := structure.New(cfg)
	vlEngine := vl.New(cfg)
	return &Handler{
		cfg:       cfg,
		registry:  registry.New(cfg.ModelDir, cfg.InsecureDownloads),
		ocr:       ocrEngine,
		structure: structEngine,
		vl:        vlEngine,
		chat:      chat.New(cfg),
		translate: translate.New(cfg, vlEngine),
		batch:     batch.New(ocrEngine, structEngine, vlEngine),
	}
}

// NewWithServices wires the handler over pre-built services; used by tests.
func NewWithServices(cfg *config.Config, reg *registry.Registry, ocrEngine *ocr.Engine, structEngine *structure.Engine, vlEngine *vl.Engine, chatEngine *chat.Engine, translateEngine *translate.Engine) *Handler {
	return &Handler{
		cfg:       cfg,
		registry:  reg,
		ocr:       ocrEngine,
		structure: structEngine,
		vl:        vlEngine,
		chat:      chatEngine,
		translate: translateEngine,
		batch:     batch.New(ocrEngine, structEngine, vlEngine),
	}
}

// Batch exposes the batch processor; used by tests.
func (h *Handler) Batch() *batch.Processor { return h.batch }

// Routes registers every API route on the mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/ocr", h.HandleOCR)
	mux.HandleFunc("/api/preprocess", h.HandlePreprocess)
	mux.HandleFunc("/api/structure", h.HandleStructure)
	mux.HandleFunc("/api/structure/layout", h.HandleLayoutStyles)
	mux.HandleFunc("/api/vl", h.HandleVL)
	mux.HandleFunc("/api/vl/languages", h.HandleVLLanguages)
	mux.HandleFunc("/api/languages", h.HandleLanguages)
	mux.HandleFunc("/api/language-groups", h.HandleLanguageGroups)
	mux.HandleFunc("/api/versions", h.HandleVersions)
	mux.HandleFunc("/api/models", h.HandleModels)
	mux.HandleFunc("/api/models/", h.HandleModelDetail)
	mux.HandleFunc("/api/chat/extract", h.HandleChatExtract)
	mux.HandleFunc("/api/chat/ask", h.HandleChatAsk)
	mux.HandleFunc("/api/chat/templates", h.HandleChatTemplates)
	mux.HandleFunc("/api/translate", h.HandleTranslate)
	mux.HandleFunc("/api/translate/document", h.HandleTranslateDocument)
	mux.HandleFunc("/api/translate/languages", h.HandleTranslateLanguages)
	mux.HandleFunc("/api/batch", h.HandleBatch)
	mux.HandleFunc("/api/batch/", h.HandleBatchDetail)
	mux.HandleFunc("/", h.HandleStatic)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError renders err as {"error": message} with the status implied by
// its kind.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := statusForKind(apperr.KindOf(err))
	if code >= http.StatusInternalServerError {
		slog.Error("Request failed", "err", err)
	} else {
		slog.Warn("Request rejected", "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if encErr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); encErr != nil {
		slog.Error("Unable to encode error response", "err", encErr)
	}
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"}); err != nil {
		slog.Error("Unable to encode error response", "err", err)
	}
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidImage, apperr.InvalidParameter, apperr.UnsupportedLanguage, apperr.UnsupportedVersion:
		return http.StatusBadRequest
	case apperr.UnknownModel, apperr.UnknownJob, apperr.NotInstalled:
		return http.StatusNotFound
	case apperr.AlreadyInstalled:
		return http.StatusConflict
	case apperr.DownloadFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
