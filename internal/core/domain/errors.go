package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

var (
	// ErrExecutionFailure is returned when an executor fails while running a task.
	ErrExecutionFailure = zerr.New("executor failed")

	// ErrTransformFailure is returned when the transformer rejects an asset.
	ErrTransformFailure = zerr.New("transform failed")

	// ErrBundleFailure is returned when the shared polyfill bundle cannot be built.
	ErrBundleFailure = zerr.New("polyfill bundle failed")

	// ErrShimNotFound is returned when a shim identifier cannot be resolved to source.
	ErrShimNotFound = zerr.New("shim not found")

	// ErrBuildFailed is returned when an optimization pass aborts.
	ErrBuildFailed = zerr.New("optimization pass failed")

	// ErrPoolClosed is returned for tasks submitted after the pool was closed.
	ErrPoolClosed = zerr.New("executor pool is closed")

	// ErrExecutorStartFailed is returned when a new executor cannot be created.
	ErrExecutorStartFailed = zerr.New("failed to start executor")

	// ErrWorkerProtocol is returned when a worker process sends a malformed frame.
	ErrWorkerProtocol = zerr.New("malformed worker response")

	// ErrInvalidOption is returned when a configuration value is not supported.
	ErrInvalidOption = zerr.New("invalid option")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrAssetReadFailed is returned when an asset cannot be read from the store.
	ErrAssetReadFailed = zerr.New("failed to read asset")

	// ErrAssetWriteFailed is returned when an output cannot be written to the store.
	ErrAssetWriteFailed = zerr.New("failed to write output")

	// ErrAssetRemoveFailed is returned when a stale output cannot be removed.
	ErrAssetRemoveFailed = zerr.New("failed to remove stale output")

	// ErrOutputPathOutsideRoot is returned when an output name escapes the output directory.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside output directory")

	// ErrManifestReadFailed is returned when the build manifest cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read build manifest")

	// ErrManifestWriteFailed is returned when the build manifest cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write build manifest")

	// ErrWatchRequiresOutDir is returned when watch mode would rewrite its own inputs.
	ErrWatchRequiresOutDir = zerr.New("watch mode requires an output directory distinct from the input directory")
)

// Annotate attaches key/value pairs to err. err stays in the chain, so a
// sentinel passed here still matches with errors.Is.
func Annotate(err error, kv ...any) error {
	if err == nil {
		return nil
	}
	out := zerr.Wrap(err, "")
	for i := 0; i+1 < len(kv); i += 2 {
		out = zerr.With(out, fmt.Sprint(kv[i]), kv[i+1])
	}
	return out
}

func withField(err error, field, value string) error {
	return Annotate(err, "field", field, "value", value)
}
