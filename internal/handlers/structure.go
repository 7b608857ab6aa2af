package handlers

import (
	"net/http"

	"github.com/ocrstudio/ocrstudio/internal/structure"
)

// HandleStructure parses document layout from an uploaded image or PDF.
func (h *Handler) HandleStructure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	data, _, err := h.readUpload(r, true)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.structure.Parse(r.Context(), data, r.FormValue("lang"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, result)
}

// HandleLayoutStyles reports the region type color map used for layout
// visualization.
func (h *Handler) HandleLayoutStyles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}
	h.writeJSON(w, map[string]any{"styles": structure.LayoutStyles})
}
