package esbuild_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/optimize/internal/adapters/esbuild"
	"go.trai.ch/optimize/internal/adapters/shims"
	"go.trai.ch/optimize/internal/core/domain"
)

func task(source string, opts domain.TaskOptions) *domain.Task {
	return &domain.Task{Name: "main.js", Source: []byte(source), Options: opts}
}

func TestTransformer_LegacyWithShims(t *testing.T) {
	tr := esbuild.NewTransformer()
	src := `export const load = async (items) => { await Promise.resolve(items.includes(1)); };`

	res, err := tr.Transform(t.Context(), task(src, domain.TaskOptions{Downlevel: true}))
	require.NoError(t, err)
	require.NotNil(t, res.Legacy)

	assert.Contains(t, string(res.Modern.Code), "async")
	assert.NotEqual(t, string(res.Modern.Code), string(res.Legacy.Code))
	assert.Equal(t, []string{
		"core-js/modules/es.promise",
		"core-js/modules/es.array.includes",
	}, res.Shims)
	assert.Nil(t, res.Timings)
}

func TestTransformer_NothingToDownlevel(t *testing.T) {
	tr := esbuild.NewTransformer()

	res, err := tr.Transform(t.Context(), task(`var a = 1; console.log(a);`, domain.TaskOptions{Downlevel: true}))
	require.NoError(t, err)
	assert.Nil(t, res.Legacy)
	assert.Empty(t, res.Shims)
}

func TestTransformer_DownlevelOff(t *testing.T) {
	tr := esbuild.NewTransformer()

	res, err := tr.Transform(t.Context(), task(`new Map([[1, 2]]);`, domain.TaskOptions{}))
	require.NoError(t, err)
	assert.Nil(t, res.Legacy)
	assert.Empty(t, res.Shims)
	assert.NotEmpty(t, res.Modern.Code)
}

func TestTransformer_Minify(t *testing.T) {
	tr := esbuild.NewTransformer()
	src := "function add(first, second) {\n  return first + second;\n}\nconsole.log(add(1, 2));\n"

	plain, err := tr.Transform(t.Context(), task(src, domain.TaskOptions{}))
	require.NoError(t, err)
	min, err := tr.Transform(t.Context(), task(src, domain.TaskOptions{Minify: true}))
	require.NoError(t, err)
	assert.Less(t, len(min.Modern.Code), len(plain.Modern.Code))
}

func TestTransformer_SourceMapAndTimings(t *testing.T) {
	tr := esbuild.NewTransformer()
	opts := domain.TaskOptions{SourceMap: true, Downlevel: true, Timings: true}

	res, err := tr.Transform(t.Context(), task(`const f = async () => 1; f();`, opts))
	require.NoError(t, err)
	assert.Contains(t, string(res.Modern.Map), `"version": 3`)
	require.NotNil(t, res.Legacy)
	assert.NotEmpty(t, res.Legacy.Map)

	var names []string
	for _, timing := range res.Timings {
		names = append(names, timing.Name)
	}
	assert.Equal(t, []string{"modern", "legacy"}, names)
}

func TestTransformer_SyntaxError(t *testing.T) {
	tr := esbuild.NewTransformer()

	_, err := tr.Transform(t.Context(), task(`function (`, domain.TaskOptions{Downlevel: true}))
	require.ErrorIs(t, err, domain.ErrTransformFailure)
}

func TestTransformer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := esbuild.NewTransformer().Transform(ctx, task(`1`, domain.TaskOptions{}))
	require.Error(t, err)
}

func shimsRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"first-shim.js":         "window.__first = true;\n",
		"second-shim/index.js":  "import './helper.js';\nwindow.__second = true;\n",
		"second-shim/helper.js": "window.__helper = true;\n",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestBundler_BundlesShims(t *testing.T) {
	root := shimsRoot(t)
	b := esbuild.NewBundler(shims.NewResolver(root), root)

	art, err := b.Bundle(t.Context(), []string{"first-shim", "second-shim"}, domain.TaskOptions{})
	require.NoError(t, err)

	code := string(art.Code)
	assert.Contains(t, code, "(() => {")
	assert.Contains(t, code, "__first")
	assert.Contains(t, code, "__second")
	assert.Contains(t, code, "__helper")
	assert.Less(t, strings.Index(code, "__first"), strings.Index(code, "__second"))
	assert.Equal(t, []string{"first-shim", "second-shim"}, art.Shims)
	assert.Nil(t, art.Map)
}

func TestBundler_SourceMap(t *testing.T) {
	root := shimsRoot(t)
	b := esbuild.NewBundler(shims.NewResolver(root), root)

	art, err := b.Bundle(t.Context(), []string{"first-shim"}, domain.TaskOptions{SourceMap: true, Minify: true})
	require.NoError(t, err)
	assert.NotEmpty(t, art.Code)
	assert.NotEmpty(t, art.Map)
}

func TestBundler_MissingShim(t *testing.T) {
	root := shimsRoot(t)
	b := esbuild.NewBundler(shims.NewResolver(root), root)

	_, err := b.Bundle(t.Context(), []string{"first-shim", "missing-shim"}, domain.TaskOptions{})
	require.ErrorIs(t, err, domain.ErrShimNotFound)
}
