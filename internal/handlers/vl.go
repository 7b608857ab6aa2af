package handlers

import (
	"net/http"

	"github.com/ocrstudio/ocrstudio/internal/vl"
)

// HandleVL runs vision-language document parsing on an uploaded image.
func (h *Handler) HandleVL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	data, _, err := h.readUpload(r, false)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.vl.Parse(r.Context(), data)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, result)
}

func (h *Handler) HandleVLLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}
	h.writeJSON(w, map[string]any{"languages": vl.SupportedLanguages})
}
