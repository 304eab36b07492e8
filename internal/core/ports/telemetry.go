package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records the steps of an optimization pass.
type Telemetry interface {
	// Record starts a new vertex named name.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes the recording session.
	Close() error
}

// Vertex is one recorded step.
type Vertex interface {
	// Stdout returns a writer for the step's log output.
	Stdout() io.Writer
	// Complete marks the step as finished, failed if err is non-nil.
	Complete(err error)
	// Cached marks the step as served from a cache.
	Cached()
}
