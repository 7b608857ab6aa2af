package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/imaging"
)

type preprocessRequest struct {
	Image      string   `json:"image"`
	Brightness *float64 `json:"brightness"`
	Contrast   *float64 `json:"contrast"`
	Saturation *float64 `json:"saturation"`
	Sharpness  *float64 `json:"sharpness"`
	Rotation   float64  `json:"rotation"`
	FlipH      bool     `json:"flip_h"`
	FlipV      bool     `json:"flip_v"`
	Grayscale  bool     `json:"grayscale"`
	Invert     bool     `json:"invert"`
}

// HandlePreprocess applies enhancement and geometric corrections to a
// base64 image and returns the processed image without running inference.
// Lets the UI preview adjustments live.
func (h *Handler) HandlePreprocess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	var req preprocessRequest
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

	processed, err := imaging.Apply(img, adjust)
	if err != nil {
		h.writeError(w, err)
		return
	}
	processed = imaging.ApplyCorrections(processed, imaging.Corrections{
		Rotation:  req.Rotation,
		FlipH:     req.FlipH,
		FlipV:     req.FlipV,
		Grayscale: req.Grayscale,
		Invert:    req.Invert,
	})

	dataURL, err := imaging.ToDataURL(processed)
	if err != nil {
		h.writeError(w, err)
		return
	}

	bounds := processed.Bounds()
	h.writeJSON(w, map[string]any{
		"image":  dataURL,
		"width":  bounds.Dx(),
		"height": bounds.Dy(),
	})
}
