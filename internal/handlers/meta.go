package handlers

import (
	"net/http"

	"github.com/ocrstudio/ocrstudio/internal/ocr"
)

func (h *Handler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}
	h.writeJSON(w, map[string]any{"languages": ocr.Languages()})
}

func (h *Handler) HandleLanguageGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}
	h.writeJSON(w, map[string]any{"groups": ocr.LanguageGroups()})
}

func (h *Handler) HandleVersions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}
	h.writeJSON(w, map[string]any{"versions": ocr.Versions})
}
