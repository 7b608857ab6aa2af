package structure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
)

// IsPDF sniffs the PDF magic marker.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// Rasterizer turns a PDF into one image per page, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([][]byte, error)
}

// CommandRasterizer shells out to pdftoppm (poppler-utils).
type CommandRasterizer struct {
	DPI int

	// binary overrides the pdftoppm path in tests.
	binary string
}

// Rasterize writes the PDF to a scratch dir, renders every page to PNG and
// returns the page images sorted by page number.
func (r CommandRasterizer) Rasterize(ctx context.Context, pdf []byte) ([][]byte, error) {
	dpi := r.DPI
	if dpi <= 0 {
		dpi = 144
	}

	workDir, err := os.MkdirTemp("", "ocrstudio-pdf-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	pdfPath := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	binary := r.binary
	if binary == "" {
		binary = "pdftoppm"
	}

	prefix := filepath.Join(workDir, "page")
	cmd := exec.CommandContext(ctx, binary, "-png", "-r", strconv.Itoa(dpi), pdfPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// An exit error means the tool ran and rejected the document;
		// anything else (binary missing, killed) is a server-side failure.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, apperr.Wrap(apperr.InvalidImage, err, "pdftoppm failed: %s", strings.TrimSpace(stderr.String()))
		}
		return nil, apperr.Wrap(apperr.InferenceFailure, err, "run pdftoppm")
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, apperr.New(apperr.InvalidImage, "no pages rendered from pdf")
	}
	sort.Slice(matches, func(i, j int) bool {
		return pageNumber(matches[i]) < pageNumber(matches[j])
	})

	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("read rendered page: %w", err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

// pageNumber extracts the numeric page suffix from a pdftoppm output name
// like "page-03.png".
func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
