package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/batch"
)

// HandleBatch starts a batch job over several uploaded files (POST) or
// lists known jobs (GET).
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, map[string]any{"jobs": h.batch.Store().GetAll()})
	case http.MethodPost:
		h.handleBatchSubmit(w, r)
	default:
		h.methodNotAllowed(w)
	}
}

func (h *Handler) handleBatchSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, apperr.Wrap(apperr.InvalidParameter, err, "invalid multipart form"))
		return
	}

	jobType := r.FormValue("type")
	allowPDF := jobType == "structure"

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		h.writeError(w, apperr.New(apperr.InvalidParameter, "no files in request"))
		return
	}

	var paths []string
	cleanup := func() {
		for _, p := range paths {
			if err := os.Remove(p); err != nil {
				slog.Warn("Unable to remove scratch file", "path", p, "err", err)
			}
		}
	}

	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			cleanup()
			h.writeError(w, apperr.Wrap(apperr.InvalidImage, err, "open upload %s", header.Filename))
			return
		}
		data, err := readUploadPart(file, header, allowPDF)
		file.Close()
		if err != nil {
			cleanup()
			h.writeError(w, err)
			return
		}
		path, err := h.saveScratch(data, header.Filename)
		if err != nil {
			cleanup()
			h.writeError(w, err)
			return
		}
		paths = append(paths, path)
	}

	id, err := h.batch.Submit(jobType, paths, batch.Options{
		Lang:    r.FormValue("lang"),
		Version: r.FormValue("version"),
	})
	if err != nil {
		cleanup()
		h.writeError(w, err)
		return
	}

	// Scratch files live until the job finishes.
	go func() {
		h.batch.Wait(id)
		cleanup()
	}()

	h.writeJSON(w, map[string]any{"job_id": id, "total": len(paths)})
}

// HandleBatchDetail routes /api/batch/{id} and /api/batch/{id}/cancel.
func (h *Handler) HandleBatchDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/batch/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		h.writeError(w, apperr.New(apperr.InvalidParameter, "job id is required"))
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		job, ok := h.batch.Store().Get(id)
		if !ok {
			h.writeError(w, apperr.New(apperr.UnknownJob, "unknown batch job: %s", id))
			return
		}
		h.writeJSON(w, job)
	case action == "cancel" && r.Method == http.MethodPost:
		if err := h.batch.Cancel(id); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, map[string]any{"success": true})
	default:
		h.methodNotAllowed(w)
	}
}
