package ports

import (
	"context"

	"go.trai.ch/optimize/internal/core/domain"
)

// ShimResolver maps a shim identifier to the path of its module source.
//
//go:generate mockgen -source=shims.go -destination=mocks/mock_shims.go -package=mocks
type ShimResolver interface {
	Resolve(ctx context.Context, id string) (string, error)
}

// ShimBundler merges a set of shims into one self-executing script.
type ShimBundler interface {
	// Bundle builds the shared bundle for shims. The slice is already canonical.
	Bundle(ctx context.Context, shims []string, opts domain.TaskOptions) (*domain.Artifact, error)
}
