package future_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/optimize/internal/engine/future"
)

func TestFuture_AllWaitersSeeSameOutcome(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := future.New[int]()
		results := make(chan int, 3)

		for range 3 {
			go func() {
				v, err := f.Wait(t.Context())
				if err == nil {
					results <- v
				}
			}()
		}

		synctest.Wait()
		f.Resolve(42, nil)
		synctest.Wait()

		require.Len(t, results, 3)
		for range 3 {
			assert.Equal(t, 42, <-results)
		}
	})
}

func TestFuture_ResolveOnce(t *testing.T) {
	errFirst := errors.New("first")
	f := future.New[string]()
	f.Resolve("a", errFirst)
	f.Resolve("b", nil)

	v, err := f.Wait(context.Background())
	assert.Equal(t, "a", v)
	assert.ErrorIs(t, err, errFirst)
}

func TestFuture_WaitCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := future.New[int]()
		ctx, cancel := context.WithTimeout(t.Context(), time.Second)
		defer cancel()

		_, err := f.Wait(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)

		f.Resolve(7, nil)
		v, err := f.Wait(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})
}

func TestResolved(t *testing.T) {
	f := future.Resolved(3, nil)
	select {
	case <-f.Done():
	default:
		t.Fatal("expected resolved future")
	}
}
