package ports

import (
	"context"

	"go.trai.ch/optimize/internal/core/domain"
)

// AssetStore is the host's view of the upstream bundler output.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type AssetStore interface {
	// Assets enumerates the current output files. Files sharing content may share
	// one *domain.Asset.
	Assets(ctx context.Context) ([]domain.File, error)
	// Write stores an output under name, replacing any previous content.
	Write(name string, out domain.Output) error
	// Remove deletes the output stored under name. Removing a missing name is not an error.
	Remove(name string) error
}

// ManifestStore persists the record of generated outputs per output directory.
type ManifestStore interface {
	// Get returns the manifest for dir, or nil if none was recorded.
	Get(dir string) (*domain.Manifest, error)
	// Put records the manifest for dir.
	Put(dir string, m domain.Manifest) error
	// Delete forgets the manifest for dir.
	Delete(dir string) error
}
