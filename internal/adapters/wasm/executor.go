// Package wasm runs the transformer as a sandboxed WASI module on wazero.
package wasm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.trai.ch/optimize/internal/adapters/executor"
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory compiles a WASI command module once and hands out executors that
// instantiate it per task. The module reads one request frame from stdin and
// writes one response frame to stdout.
type Factory struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
}

// Load reads the module at path and compiles it.
func Load(ctx context.Context, path string) (*Factory, error) {
	code, err := os.ReadFile(path) //nolint:gosec // module path comes from configuration
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read wasm module"), "path", path)
	}
	f, err := NewFactory(ctx, code)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return f, nil
}

// NewFactory compiles code into a new runtime.
func NewFactory(ctx context.Context, code []byte) (*Factory, error) {
	cfg := wazero.NewRuntimeConfig().
		WithCompilationCache(wazero.NewCompilationCache()).
		WithCloseOnContextDone(true)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, zerr.Wrap(err, "failed to instantiate wasi")
	}

	compiled, err := rt.CompileModule(ctx, code)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, zerr.Wrap(err, "failed to compile wasm module")
	}

	return &Factory{runtime: rt, compiled: compiled}, nil
}

// NewExecutor implements ports.ExecutorFactory.
func (f *Factory) NewExecutor(_ context.Context) (ports.Executor, error) {
	return &Executor{factory: f}, nil
}

// Close releases the runtime and every module compiled into it.
func (f *Factory) Close(ctx context.Context) error {
	return f.runtime.Close(ctx)
}

// Executor runs each task in a fresh anonymous instance of the compiled module.
type Executor struct {
	factory *Factory
	seq     uint64
}

// Execute implements ports.Executor.
func (e *Executor) Execute(ctx context.Context, task *domain.Task) (*domain.Result, error) {
	e.seq++
	req, err := json.Marshal(executor.Request{ID: e.seq, Task: task})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode task")
	}

	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs("optimize-worker").
		WithStdin(bytes.NewReader(req)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	mod, err := e.factory.runtime.InstantiateModule(ctx, e.factory.compiled, cfg)
	if mod != nil {
		_ = mod.Close(ctx)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, withStderr(zerr.Wrap(err, "wasm module failed"), &stderr)
	}

	var resp executor.Response
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &resp); err != nil {
		return nil, withStderr(errors.Join(domain.ErrWorkerProtocol, err), &stderr)
	}
	return resp.Outcome()
}

// Close implements ports.Executor. The compiled module stays warm in the factory.
func (e *Executor) Close() error {
	return nil
}

func withStderr(err error, stderr *bytes.Buffer) error {
	if stderr.Len() == 0 {
		return err
	}
	return zerr.With(err, "stderr", stderr.String())
}
