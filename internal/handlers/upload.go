package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

// maxUploadBytes caps a single uploaded file.
const maxUploadBytes = 32 << 20

// imageExtensions is the upload allow-list for image endpoints. Structure
// parsing additionally accepts PDFs.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// readUpload pulls one uploaded file out of the multipart form. The extension
// check is a fast gate; the real format check happens on decode.
func (h *Handler) readUpload(r *http.Request, allowPDF bool) ([]byte, string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			return nil, "", apperr.New(apperr.InvalidParameter, "no file in request")
		}
	}
	defer file.Close()

	data, err := readUploadPart(file, header, allowPDF)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func readUploadPart(file multipart.File, header *multipart.FileHeader, allowPDF bool) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] && !(allowPDF && ext == ".pdf") {
		return nil, apperr.New(apperr.InvalidImage, "unsupported file type: %s", header.Filename)
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidImage, err, "read upload")
	}
	if len(data) > maxUploadBytes {
		return nil, apperr.New(apperr.InvalidParameter, "file too large (max 32MB)")
	}
	if len(data) == 0 {
		return nil, apperr.New(apperr.InvalidImage, "empty file")
	}
	return data, nil
}

// saveScratch writes upload data to the scratch directory for workers that
// read from disk. Callers own cleanup.
func (h *Handler) saveScratch(data []byte, filename string) (string, error) {
	if err := os.MkdirAll(h.cfg.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(filename))
	path := filepath.Join(h.cfg.UploadDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}
