package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/translate"
)

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// HandleTranslate translates a plain text snippet between two supported
// languages. Source defaults to English, target to Chinese.
func (h *Handler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Wrap(apperr.InvalidParameter, err, "decode request body"))
		return
	}

	result, err := h.translate.Text(r.Context(), req.Text, req.Source, req.Target)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, result)
}

// HandleTranslateDocument parses an uploaded document to markdown and
// translates the markdown, preserving layout.
func (h *Handler) HandleTranslateDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	data, _, err := h.readUpload(r, false)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.translate.Document(r.Context(), data, r.FormValue("source"), r.FormValue("target"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, result)
}

func (h *Handler) HandleTranslateLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}
	h.writeJSON(w, map[string]any{"languages": translate.Languages()})
}
