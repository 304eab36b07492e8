package progrock_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/optimize/internal/adapters/telemetry/progrock"
	"go.trai.ch/optimize/internal/core/ports"
)

func TestRecorder_Lifecycle(t *testing.T) {
	var recorder ports.Telemetry = progrock.New()

	ctx, vertex := recorder.Record(t.Context(), "optimize main.js")
	assert.NotNil(t, ctx)

	_, err := vertex.Stdout().Write([]byte("transforming\n"))
	require.NoError(t, err)
	vertex.Complete(nil)

	_, bundle := recorder.Record(t.Context(), "polyfills.legacy.js")
	bundle.Cached()
	bundle.Complete(nil)

	_, failed := recorder.Record(t.Context(), "optimize broken.js")
	failed.Complete(errors.New("unexpected token"))

	require.NoError(t, recorder.Close())
}

func TestRecorder_SameNameTwice(t *testing.T) {
	recorder := progrock.New()

	_, first := recorder.Record(t.Context(), "optimize main.js")
	_, second := recorder.Record(t.Context(), "optimize main.js")
	assert.NotSame(t, first, second)

	first.Complete(nil)
	second.Complete(nil)
	require.NoError(t, recorder.Close())
}
