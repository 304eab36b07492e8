package polyfill_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports/mocks"
	"go.trai.ch/optimize/internal/engine/polyfill"
	"go.uber.org/mock/gomock"
)

func bundleOf(_ context.Context, shims []string, _ domain.TaskOptions) (*domain.Artifact, error) {
	return &domain.Artifact{Code: []byte("(()=>{" + strings.Join(shims, ";") + "})();"), Shims: shims}, nil
}

func TestBundleCache_OrderIndependentKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	bundler := mocks.NewMockShimBundler(ctrl)
	bundler.EXPECT().Bundle(gomock.Any(), []string{"a", "b"}, gomock.Any()).DoAndReturn(bundleOf).Times(1)

	c := polyfill.NewBundleCache(bundler, domain.TaskOptions{Minify: true})
	ctx := context.Background()

	first, hit := c.GetOrBuild(ctx, []string{"a", "b"})
	assert.False(t, hit)
	art1, err := first.Wait(ctx)
	require.NoError(t, err)

	second, hit := c.GetOrBuild(ctx, []string{"b", "a"})
	assert.True(t, hit)
	art2, err := second.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, art1.Code, art2.Code)
	assert.Equal(t, 1, c.Builds())
}

func TestBundleCache_SupersetIsOneNewBuild(t *testing.T) {
	ctrl := gomock.NewController(t)
	bundler := mocks.NewMockShimBundler(ctrl)
	bundler.EXPECT().Bundle(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(bundleOf).Times(2)

	c := polyfill.NewBundleCache(bundler, domain.TaskOptions{})
	ctx := context.Background()

	for _, set := range [][]string{{"A", "B"}, {"A", "B", "C"}, {"B", "A"}, {"C", "B", "A"}} {
		fut, _ := c.GetOrBuild(ctx, set)
		_, err := fut.Wait(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Builds())
	assert.Equal(t, 2, c.Len())
}

func TestBundleCache_ConcurrentCallersShareOneBuild(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		bundler := mocks.NewMockShimBundler(ctrl)
		bundler.EXPECT().Bundle(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, shims []string, opts domain.TaskOptions) (*domain.Artifact, error) {
				time.Sleep(50 * time.Millisecond)
				return bundleOf(ctx, shims, opts)
			},
		).Times(1)

		c := polyfill.NewBundleCache(bundler, domain.TaskOptions{})
		results := make(chan []byte, 4)
		for range 4 {
			go func() {
				fut, _ := c.GetOrBuild(t.Context(), []string{"x", "y"})
				art, err := fut.Wait(t.Context())
				if err == nil {
					results <- art.Code
				}
			}()
		}
		synctest.Wait()
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		require.Len(t, results, 4)
		assert.Equal(t, 1, c.Builds())
	})
}

func TestBundleCache_FailureSharedThenEvicted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		bundler := mocks.NewMockShimBundler(ctrl)
		errMissing := errors.New(`could not resolve "nope"`)
		gate := make(chan struct{})
		gomock.InOrder(
			bundler.EXPECT().Bundle(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(context.Context, []string, domain.TaskOptions) (*domain.Artifact, error) {
					<-gate
					return nil, errMissing
				},
			),
			bundler.EXPECT().Bundle(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(bundleOf),
		)

		c := polyfill.NewBundleCache(bundler, domain.TaskOptions{})
		first, _ := c.GetOrBuild(t.Context(), []string{"nope"})
		second, hit := c.GetOrBuild(t.Context(), []string{"nope"})
		assert.True(t, hit)

		close(gate)
		_, err1 := first.Wait(t.Context())
		_, err2 := second.Wait(t.Context())
		require.ErrorIs(t, err1, domain.ErrBundleFailure)
		require.ErrorIs(t, err1, errMissing)
		require.ErrorIs(t, err2, errMissing)

		retry, hit := c.GetOrBuild(t.Context(), []string{"nope"})
		assert.False(t, hit)
		_, err := retry.Wait(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 2, c.Builds())
	})
}

func TestBundleCache_PassesCanonicalShims(t *testing.T) {
	ctrl := gomock.NewController(t)
	bundler := mocks.NewMockShimBundler(ctrl)
	bundler.EXPECT().Bundle(gomock.Any(), []string{"a", "b", "c"}, domain.TaskOptions{SourceMap: true}).
		DoAndReturn(bundleOf)

	c := polyfill.NewBundleCache(bundler, domain.TaskOptions{SourceMap: true})
	fut, _ := c.GetOrBuild(context.Background(), []string{"c", "a", "b", "a"})
	art, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, art.Shims)
}
