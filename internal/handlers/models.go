package handlers

import (
	"math"
	"net/http"
	"strings"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

// HandleModels lists every known model with its installed state and the
// total disk usage of the model directory.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}

	models, usage := h.registry.List()
	h.writeJSON(w, map[string]any{
		"models":           models,
		"disk_usage_bytes": usage,
		"disk_usage_mb":    math.Round(float64(usage)/(1024*1024)*100) / 100,
	})
}

// HandleModelDetail routes /api/models/{id} and /api/models/{id}/download.
func (h *Handler) HandleModelDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/models/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		h.writeError(w, apperr.New(apperr.InvalidParameter, "model id is required"))
		return
	}

	switch {
	case action == "download" && r.Method == http.MethodPost:
		path, err := h.registry.Download(r.Context(), id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, map[string]any{
			"success": true,
			"message": "Model " + id + " downloaded",
			"path":    path,
		})
	case action == "" && r.Method == http.MethodGet:
		model, err := h.registry.Info(id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, model)
	case action == "" && r.Method == http.MethodDelete:
		if err := h.registry.Delete(id); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, map[string]any{
			"success": true,
			"message": "Model " + id + " deleted",
		})
	default:
		h.methodNotAllowed(w)
	}
}
