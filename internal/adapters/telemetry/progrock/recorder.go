// Package progrock records optimization passes on a progrock tape.
package progrock

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/optimize/internal/core/ports"
)

// Recorder implements ports.Telemetry on top of a progrock recorder.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
	seq atomic.Uint64
}

// New creates a Recorder writing to a fresh tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Record starts a vertex. Vertices with the same name in later passes get
// distinct digests so watch-mode rebuilds do not collapse into one entry.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	d := digest.FromString(strconv.FormatUint(r.seq.Add(1), 10) + "\x00" + name)
	return ctx, &Vertex{vertex: r.rec.Vertex(d, name)}
}

// Close closes the underlying writer if it supports it.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
