package handlers

import (
	"net/http"
	"strings"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/chat"
)

// HandleChatExtract pulls structured key/value pairs out of an uploaded
// document image. Keys come from a comma-separated "keys" field or a named
// "template".
func (h *Handler) HandleChatExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	data, _, err := h.readUpload(r, false)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var result *chat.Result
	if template := r.FormValue("template"); template != "" {
		result, err = h.chat.ExtractTemplate(r.Context(), data, template)
	} else {
		keys := strings.Split(r.FormValue("keys"), ",")
		result, err = h.chat.Extract(r.Context(), data, keys)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, result)
}

// HandleChatAsk answers a free-form question about an uploaded document.
func (h *Handler) HandleChatAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	data, _, err := h.readUpload(r, false)
	if err != nil {
		h.writeError(w, err)
		return
	}

	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		h.writeError(w, apperr.New(apperr.InvalidParameter, "question is required"))
		return
	}

	answer, err := h.chat.Ask(r.Context(), data, question)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, answer)
}

func (h *Handler) HandleChatTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}
	h.writeJSON(w, map[string]any{"templates": chat.Templates()})
}
