package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/optimize/internal/adapters/config"
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoader(log)
}

func TestLoader_MissingFileYieldsDefaults(t *testing.T) {
	opts, err := newLoader(t).Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultOptions(), opts)
}

func TestLoader_AppliesFile(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, `
version: "1"
concurrency: 0
sourceMap: true
minify: false
verbose: false
polyfillsFilename: shims.legacy.js
extensions: [".js"]
idleTimeout: 25ms
dequeue: lifo
executor:
  kind: wasm
  module: tools/transform.wasm
transformer:
  kind: command
  command: ["node", "transform.js"]
shims:
  root: vendor/shims
`)

	opts, err := newLoader(t).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0, opts.Concurrency)
	assert.True(t, opts.SourceMap)
	assert.False(t, opts.Minify)
	assert.True(t, opts.Downlevel, "unset fields keep their defaults")
	assert.False(t, opts.Verbose)
	assert.Equal(t, "shims.legacy.js", opts.PolyfillsFilename)
	assert.Equal(t, []string{".js"}, opts.Extensions)
	assert.Equal(t, 25*time.Millisecond, opts.IdleTimeout)
	assert.Equal(t, domain.DequeueLIFO, opts.Dequeue)
	assert.Equal(t, domain.ExecutorWasm, opts.Executor.Kind)
	assert.Equal(t, filepath.Join(dir, "tools/transform.wasm"), opts.Executor.Module)
	assert.Equal(t, domain.TransformerCommand, opts.Transformer.Kind)
	assert.Equal(t, []string{"node", "transform.js"}, opts.Transformer.Command)
	assert.Equal(t, filepath.Join(dir, "vendor/shims"), opts.ShimsRoot)
}

func TestLoader_DiscoversParentDirectory(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, "version: \"1\"\nminify: false\n")
	nested := filepath.Join(root, "dist", "js")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	opts, err := newLoader(t).Load(nested)
	require.NoError(t, err)
	assert.False(t, opts.Minify)
}

func TestLoader_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, "")

	opts, err := newLoader(t).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultOptions(), opts)
}

func TestLoader_WarnsOnMissingVersion(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, "minify: true\n")

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	_, err := config.NewLoader(log).Load(dir)
	require.NoError(t, err)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"malformed yaml", "version: [", domain.ErrConfigParseFailed},
		{"unknown field", "version: \"1\"\nturbo: true\n", domain.ErrConfigParseFailed},
		{"unsupported version", "version: \"2\"\n", domain.ErrInvalidOption},
		{"bad duration", "version: \"1\"\nidleTimeout: soon\n", domain.ErrInvalidOption},
		{"bad dequeue", "version: \"1\"\ndequeue: random\n", domain.ErrInvalidOption},
		{"wasm without module", "version: \"1\"\nexecutor:\n  kind: wasm\n", domain.ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			createFile(t, dir, domain.ConfigFileName, tt.content)

			_, err := newLoader(t).Load(dir)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
