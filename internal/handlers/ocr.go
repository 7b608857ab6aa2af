package handlers

import (
	"encoding/json"
	"image"
	"net/http"
	"strconv"
	"strings"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/imaging"
	"github.com/ocrstudio/ocrstudio/internal/ocr"
)

// HandleOCR runs text recognition on one uploaded image. Accepts multipart
// form uploads and JSON bodies carrying a base64 image.
func (h *Handler) HandleOCR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		h.handleOCRJSON(w, r)
		return
	}

	data, _, err := h.readUpload(r, false)
	if err != nil {
		h.writeError(w, err)
		return
	}

	adjust, err := adjustmentsFromForm(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.runOCR(w, r, data, adjust, ocr.Options{
		Lang:    r.FormValue("lang"),
		Version: r.FormValue("version"),
	})
}

type ocrJSONRequest struct {
	Image      string   `json:"image"`
	Lang       string   `json:"lang"`
	Version    string   `json:"version"`
	Brightness *float64 `json:"brightness"`
	Contrast   *float64 `json:"contrast"`
	Saturation *float64 `json:"saturation"`
	Sharpness  *float64 `json:"sharpness"`
}

func (h *Handler) handleOCRJSON(w http.ResponseWriter, r *http.Request) {
	var req ocrJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Wrap(apperr.InvalidParameter, err, "invalid JSON body"))
		return
	}
	if req.Image == "" {
		h.writeError(w, apperr.New(apperr.InvalidParameter, "image is required"))
		return
	}

	img, err := imaging.DecodeDataURL(req.Image)
	if err != nil {
		h.writeError(w, err)
		return
	}

	adjust := imaging.Identity()
	if req.Brightness != nil {
		adjust.Brightness = *req.Brightness
	}
	if req.Contrast != nil {
		adjust.Contrast = *req.Contrast
	}
	if req.Saturation != nil {
		adjust.Saturation = *req.Saturation
	}
	if req.Sharpness != nil {
		adjust.Sharpness = *req.Sharpness
	}

	h.recognizeImage(w, r, img, adjust, ocr.Options{Lang: req.Lang, Version: req.Version})
}

func (h *Handler) runOCR(w http.ResponseWriter, r *http.Request, data []byte, adjust imaging.Adjustments, opts ocr.Options) {
	img, err := imaging.Decode(data)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.recognizeImage(w, r, img, adjust, opts)
}

func (h *Handler) recognizeImage(w http.ResponseWriter, r *http.Request, img *image.NRGBA, adjust imaging.Adjustments, opts ocr.Options) {
	processed, err := imaging.Apply(img, adjust)
	if err != nil {
		h.writeError(w, err)
		return
	}

	png, err := imaging.EncodePNG(processed)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.ocr.Recognize(r.Context(), png, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	dataURL, err := imaging.ToDataURL(processed)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, map[string]any{
		"full_text":       result.FullText,
		"boxes":           result.Boxes,
		"texts":           result.Texts,
		"processed_image": dataURL,
	})
}

// adjustmentsFromForm parses the four enhancement factors from form values.
// Absent values mean identity.
func adjustmentsFromForm(r *http.Request) (imaging.Adjustments, error) {
	adjust := imaging.Identity()
	fields := []struct {
		name string
		dest *float64
	}{
		{"brightness", &adjust.Brightness},
		{"contrast", &adjust.Contrast},
		{"saturation", &adjust.Saturation},
		{"sharpness", &adjust.Sharpness},
	}
	for _, f := range fields {
		raw := r.FormValue(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return adjust, apperr.New(apperr.InvalidParameter, "invalid %s: %q", f.name, raw)
		}
		*f.dest = v
	}
	return adjust, nil
}
