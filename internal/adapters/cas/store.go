// Package cas implements the build manifest store.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestStore = (*Store)(nil)

// Store implements ports.ManifestStore with one JSON file per output directory.
type Store struct {
	root string
}

// NewStore creates a Store keeping its files under root/.optimize/manifests.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Get retrieves the manifest recorded for dir.
func (s *Store) Get(dir string) (*domain.Manifest, error) {
	filename, err := s.filename(dir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename) //nolint:gosec // path is built from the store root and a hash
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(errors.Join(domain.ErrManifestReadFailed, err), "path", filename)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrManifestReadFailed, err), "path", filename)
	}
	return &m, nil
}

// Put records m for dir.
func (s *Store) Put(dir string, m domain.Manifest) error {
	filename, err := s.filename(dir)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrManifestWriteFailed, err), "path", filename)
	}
	//nolint:gosec // path is built from the store root and a hash
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.With(errors.Join(domain.ErrManifestWriteFailed, err), "path", filename)
	}
	return nil
}

// Delete forgets the manifest for dir.
func (s *Store) Delete(dir string) error {
	filename, err := s.filename(dir)
	if err != nil {
		return err
	}
	if err := os.Remove(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(errors.Join(domain.ErrManifestWriteFailed, err), "path", filename)
	}
	return nil
}

// filename keys the manifest by the absolute output directory.
func (s *Store) filename(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve output directory"), "dir", dir)
	}
	hash := sha256.Sum256([]byte(abs))
	return filepath.Join(s.root, domain.DefaultManifestPath(), hex.EncodeToString(hash[:])+".json"), nil
}
