package transformcache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports/mocks"
	"go.trai.ch/optimize/internal/engine/pool"
	"go.trai.ch/optimize/internal/engine/transformcache"
	"go.uber.org/mock/gomock"
)

func setup(t *testing.T) (*mocks.MockExecutor, *transformcache.Cache) {
	t.Helper()
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	factory := mocks.NewMockExecutorFactory(ctrl)
	factory.EXPECT().NewExecutor(gomock.Any()).Return(exec, nil).AnyTimes()
	exec.EXPECT().Close().Return(nil).AnyTimes()

	in := pool.NewInline(factory)
	t.Cleanup(func() { _ = in.Close() })
	return exec, transformcache.New(in, domain.TaskOptions{Downlevel: true})
}

func TestCache_SameAssetExecutesOnce(t *testing.T) {
	exec, cache := setup(t)
	asset := &domain.Asset{Source: []byte("let a = 1")}
	want := &domain.Result{Modern: domain.Output{Code: []byte("let a=1;")}}

	exec.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task *domain.Task) (*domain.Result, error) {
			assert.Equal(t, "main.js", task.Name)
			assert.True(t, task.Options.Downlevel)
			return want, nil
		},
	).Times(1)

	ctx := context.Background()
	first, err := cache.GetOrSubmit(ctx, domain.File{Name: "main.js", Asset: asset}).Wait(ctx)
	require.NoError(t, err)
	second, err := cache.GetOrSubmit(ctx, domain.File{Name: "alias.js", Asset: asset}).Wait(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_IdentityNotContent(t *testing.T) {
	exec, cache := setup(t)
	exec.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(&domain.Result{}, nil).Times(2)

	ctx := context.Background()
	a := &domain.Asset{Source: []byte("same")}
	b := &domain.Asset{Source: []byte("same")}
	_, err := cache.GetOrSubmit(ctx, domain.File{Name: "a.js", Asset: a}).Wait(ctx)
	require.NoError(t, err)
	_, err = cache.GetOrSubmit(ctx, domain.File{Name: "b.js", Asset: b}).Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
}

func TestCache_SharedFailure(t *testing.T) {
	exec, cache := setup(t)
	errBad := errors.New("syntax error")
	exec.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil, errBad).Times(1)

	ctx := context.Background()
	asset := &domain.Asset{Source: []byte("let =")}
	_, err1 := cache.GetOrSubmit(ctx, domain.File{Name: "a.js", Asset: asset}).Wait(ctx)
	_, err2 := cache.GetOrSubmit(ctx, domain.File{Name: "b.js", Asset: asset}).Wait(ctx)

	require.ErrorIs(t, err1, errBad)
	require.ErrorIs(t, err2, errBad)
	assert.ErrorIs(t, err2, domain.ErrExecutionFailure)
}
