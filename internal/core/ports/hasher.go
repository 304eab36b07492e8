package ports

import "go.trai.ch/optimize/internal/core/domain"

// Hasher defines the interface for computing hashes.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// ContentHash returns a stable digest of a byte slice.
	ContentHash(data []byte) string
	// Fingerprint returns a stable digest of the effective configuration.
	Fingerprint(opts domain.Options) (string, error)
}
