package progrock_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vprogrock "github.com/vito/progrock"
	"go.trai.ch/optimize/internal/adapters/telemetry/progrock"
)

// drain reads the stream to its end and returns the last state seen per vertex name.
func drain(t *testing.T, s *progrock.Stream) map[string]*vprogrock.Vertex {
	t.Helper()
	seen := make(map[string]*vprogrock.Vertex)
	for {
		update, err := s.Read()
		if errors.Is(err, io.EOF) {
			return seen
		}
		require.NoError(t, err)
		for _, v := range update.Vertexes {
			seen[v.Name] = v
		}
	}
}

func TestStream_FollowsRecorder(t *testing.T) {
	stream := progrock.NewStream()
	recorder := progrock.NewRecorder(stream)

	_, ok := recorder.Record(t.Context(), "optimize main.js")
	ok.Complete(nil)
	_, cached := recorder.Record(t.Context(), "bundle polyfills.legacy.js")
	cached.Cached()
	cached.Complete(nil)
	_, failed := recorder.Record(t.Context(), "optimize broken.js")
	failed.Complete(errors.New("unexpected token"))

	require.NoError(t, recorder.Close())
	seen := drain(t, stream)

	require.Contains(t, seen, "optimize main.js")
	assert.NotNil(t, seen["optimize main.js"].Completed)
	assert.Nil(t, seen["optimize main.js"].Error)

	require.Contains(t, seen, "bundle polyfills.legacy.js")
	assert.True(t, seen["bundle polyfills.legacy.js"].Cached)

	require.Contains(t, seen, "optimize broken.js")
	require.NotNil(t, seen["optimize broken.js"].Error)
	assert.Contains(t, *seen["optimize broken.js"].Error, "unexpected token")
}

func TestStream_ReadBlocksUntilWrite(t *testing.T) {
	stream := progrock.NewStream()

	got := make(chan *vprogrock.StatusUpdate, 1)
	go func() {
		update, err := stream.Read()
		if err == nil {
			got <- update
		}
	}()

	update := &vprogrock.StatusUpdate{}
	require.NoError(t, stream.WriteStatus(update))

	select {
	case u := <-got:
		assert.Same(t, update, u)
	case <-time.After(5 * time.Second):
		t.Fatal("read did not return after write")
	}
}

func TestStream_DropsWritesAfterClose(t *testing.T) {
	stream := progrock.NewStream()
	require.NoError(t, stream.WriteStatus(&vprogrock.StatusUpdate{}))
	require.NoError(t, stream.Close())
	require.NoError(t, stream.WriteStatus(&vprogrock.StatusUpdate{}))

	_, err := stream.Read()
	require.NoError(t, err)
	_, err = stream.Read()
	require.ErrorIs(t, err, io.EOF)
}
