// Package telemetry holds telemetry adapters that need no recording backend.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/optimize/internal/core/ports"
)

// Noop discards every vertex.
type Noop struct{}

// NewNoop creates a Noop telemetry.
func NewNoop() *Noop {
	return &Noop{}
}

// Record returns ctx unchanged and a vertex that records nothing.
func (Noop) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Close does nothing.
func (Noop) Close() error {
	return nil
}

type noopVertex struct{}

func (noopVertex) Stdout() io.Writer { return io.Discard }

func (noopVertex) Complete(error) {}

func (noopVertex) Cached() {}
