// Package registry manages the catalog of downloadable inference models and
// their on-disk installation state.
package registry

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/storage"
)

// maxArchiveEntry caps a single extracted file to guard against archive
// bombs from a compromised mirror.
const maxArchiveEntry = 2 << 30

// Registry exposes list/download/delete over the fixed model table. The
// installed flag is recomputed from disk on every query, never cached.
type Registry struct {
	store  *storage.ModelStore
	client *http.Client

	// mu serializes download/delete of model directories. List only reads
	// and takes no lock.
	mu sync.Mutex
}

// New creates a registry over the given model directory. When insecure is
// set, TLS verification against the model source is disabled.
func New(modelDir string, insecure bool) *Registry {
	transport := http.DefaultTransport
	if insecure {
		transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Registry{
		store: storage.NewModelStore(modelDir),
		client: &http.Client{
			Timeout:   30 * time.Minute,
			Transport: transport,
		},
	}
}

// Dir returns the model directory.
func (r *Registry) Dir() string { return r.store.Dir() }

// List returns every known model with its current installation status and
// the total disk usage of the model directory in bytes. It never fails: a
// missing directory simply means nothing is installed.
func (r *Registry) List() ([]Model, int64) {
	models := make([]Model, len(table))
	for i, m := range table {
		if path, ok := r.store.InstalledPath(m.ID); ok {
			m.Installed = true
			m.InstalledPath = path
		}
		models[i] = m
	}
	return models, r.store.DiskUsage()
}

// Info returns the descriptor for one model id.
func (r *Registry) Info(id string) (*Model, error) {
	m, ok := lookup(id)
	if !ok {
		return nil, apperr.New(apperr.UnknownModel, "unknown model id: %s", id)
	}
	if path, installed := r.store.InstalledPath(id); installed {
		m.Installed = true
		m.InstalledPath = path
	}
	return &m, nil
}

// Download fetches and installs a model archive. The archive is extracted
// into a staging directory and renamed into place last, so an interrupted
// download never shows up as installed.
func (r *Registry) Download(ctx context.Context, id string) (string, error) {
	m, ok := lookup(id)
	if !ok {
		return "", apperr.New(apperr.UnknownModel, "unknown model id: %s", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if path, installed := r.store.InstalledPath(id); installed {
		return path, apperr.New(apperr.AlreadyInstalled, "model already installed: %s", id)
	}

	slog.Info("Downloading model", "id", id, "url", m.URL)

	staging, err := r.store.Stage(id)
	if err != nil {
		return "", apperr.Wrap(apperr.DownloadFailure, err, "stage install")
	}

	if err := r.fetchArchive(ctx, m.URL, staging); err != nil {
		r.store.Discard(staging)
		return "", err
	}
	if err := r.store.Commit(staging, id); err != nil {
		r.store.Discard(staging)
		return "", apperr.Wrap(apperr.DownloadFailure, err, "install model %s", id)
	}

	final := filepath.Join(r.store.Dir(), id)
	slog.Info("Model installed", "id", id, "path", final)
	return final, nil
}

// Delete removes every file associated with an installed model.
func (r *Registry) Delete(id string) error {
	if _, ok := lookup(id); !ok {
		return apperr.New(apperr.UnknownModel, "unknown model id: %s", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, installed := r.store.InstalledPath(id); !installed {
		return apperr.New(apperr.NotInstalled, "model not installed: %s", id)
	}
	if err := r.store.Remove(id); err != nil {
		return fmt.Errorf("delete model %s: %w", id, err)
	}
	slog.Info("Model deleted", "id", id)
	return nil
}

func (r *Registry) fetchArchive(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperr.Wrap(apperr.DownloadFailure, err, "create download request")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.DownloadFailure, err, "download model archive")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperr.New(apperr.DownloadFailure, "model source returned status %d", resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	if strings.HasSuffix(url, ".gz") || strings.HasSuffix(url, ".tgz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return apperr.Wrap(apperr.DownloadFailure, err, "open gzip stream")
		}
		defer gz.Close()
		reader = gz
	}

	if err := extractTar(reader, dest); err != nil {
		return apperr.Wrap(apperr.DownloadFailure, err, "extract model archive")
	}
	return nil
}

// extractTar unpacks a tar stream into dest, flattening the archive's
// top-level directory and refusing paths that escape dest.
func extractTar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		name := flattenEntry(hdr.Name)
		if name == "" {
			continue
		}
		target := filepath.Join(dest, name)
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			_, err = io.Copy(f, io.LimitReader(tr, maxArchiveEntry))
			closeErr := f.Close()
			if err != nil {
				return err
			}
			if closeErr != nil {
				return closeErr
			}
		}
	}
}

// flattenEntry drops the archive's single top-level directory so artifact
// files land directly under the model directory.
func flattenEntry(name string) string {
	name = filepath.ToSlash(filepath.Clean(name))
	if name == "." || name == "/" {
		return ""
	}
	parts := strings.SplitN(strings.TrimPrefix(name, "/"), "/", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return parts[0]
}

func lookup(id string) (Model, bool) {
	for _, m := range table {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}
