package shims_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/optimize/internal/adapters/shims"
	"go.trai.ch/optimize/internal/core/domain"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "core-js/modules/es.promise.js", "promise")
	writeFile(t, root, "whatwg-fetch/package.json", `{"main": "dist/fetch.umd.js"}`)
	writeFile(t, root, "whatwg-fetch/dist/fetch.umd.js", "fetch")
	writeFile(t, root, "module-first/package.json", `{"main": "main.js", "module": "esm/index"}`)
	writeFile(t, root, "module-first/esm/index.js", "esm")
	writeFile(t, root, "module-first/main.js", "cjs")
	writeFile(t, root, "plain/index.js", "plain")
	writeFile(t, root, "exact.mjs", "exact")

	r := shims.NewResolver(root)
	for id, want := range map[string]string{
		"core-js/modules/es.promise": "core-js/modules/es.promise.js",
		"whatwg-fetch":               "whatwg-fetch/dist/fetch.umd.js",
		"module-first":               "module-first/esm/index.js",
		"plain":                      "plain/index.js",
		"exact.mjs":                  "exact.mjs",
	} {
		got, err := r.Resolve(t.Context(), id)
		require.NoError(t, err, id)
		assert.Equal(t, filepath.Join(root, filepath.FromSlash(want)), got, id)
	}
}

func TestResolver_NotFound(t *testing.T) {
	r := shims.NewResolver(t.TempDir())

	for _, id := range []string{"missing", "", "./relative", "/abs/path"} {
		_, err := r.Resolve(t.Context(), id)
		require.ErrorIs(t, err, domain.ErrShimNotFound, id)
	}
}

func TestResolver_CachesResolutions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "a")

	r := shims.NewResolver(root)
	var wg sync.WaitGroup
	paths := make([]string, 8)
	for i := range paths {
		wg.Go(func() {
			p, err := r.Resolve(t.Context(), "a")
			assert.NoError(t, err)
			paths[i] = p
		})
	}
	wg.Wait()
	for _, p := range paths {
		assert.Equal(t, paths[0], p)
	}

	require.NoError(t, os.Remove(filepath.Join(root, "a.js")))
	p, err := r.Resolve(t.Context(), "a")
	require.NoError(t, err, "warm cache serves removed files")
	assert.Equal(t, paths[0], p)
}
