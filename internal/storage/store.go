// Package storage holds the filesystem-backed stores: the model artifact
// store and the in-memory batch job store.
package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// modelFileSuffixes are the artifact files whose presence marks a model
// directory as installed.
var modelFileSuffixes = []string{".pdmodel", ".pdiparams", ".json", ".traineddata", ".onnx"}

// ModelStore manages model artifact directories under a single root.
// Installs are staged and renamed into place so a partially written model is
// never visible as installed.
type ModelStore struct {
	dir string
}

// NewModelStore creates a store rooted at dir. The directory is created
// lazily on first install.
func NewModelStore(dir string) *ModelStore {
	return &ModelStore{dir: dir}
}

// Dir returns the store root.
func (s *ModelStore) Dir() string { return s.dir }

// InstalledPath reports whether the model id is installed and where. A model
// counts as installed only when its final directory contains artifact files.
func (s *ModelStore) InstalledPath(id string) (string, bool) {
	path := filepath.Join(s.dir, id)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", false
	}
	found := false
	filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		for _, suffix := range modelFileSuffixes {
			if strings.HasSuffix(d.Name(), suffix) {
				found = true
				return filepath.SkipAll
			}
		}
		return nil
	})
	if !found {
		return "", false
	}
	return path, true
}

// Stage creates a fresh staging directory for an install.
func (s *ModelStore) Stage(id string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}
	staging, err := os.MkdirTemp(s.dir, ".staging-"+id+"-")
	if err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	return staging, nil
}

// Commit atomically moves a staged install into its final location. Any
// previous directory for the id is replaced.
func (s *ModelStore) Commit(staging, id string) error {
	final := filepath.Join(s.dir, id)
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("clear previous install: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		return fmt.Errorf("commit install: %w", err)
	}
	return nil
}

// Discard removes a staging directory after a failed install.
func (s *ModelStore) Discard(staging string) {
	_ = os.RemoveAll(staging)
}

// Remove deletes every file associated with the model id.
func (s *ModelStore) Remove(id string) error {
	return os.RemoveAll(filepath.Join(s.dir, id))
}

// DiskUsage sums the size of every file under the store root. A missing
// root counts as zero.
func (s *ModelStore) DiskUsage() int64 {
	var total int64
	filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
