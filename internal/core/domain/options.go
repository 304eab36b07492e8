package domain

import (
	"runtime"
	"time"
)

// ConfigFileName is the name of the configuration file looked up from the working directory.
const ConfigFileName = "optimize.yaml"

// ConcurrencyAuto asks for one executor per logical CPU.
const ConcurrencyAuto = -1

// DefaultPolyfillsFilename is the output name of the shared shim bundle.
const DefaultPolyfillsFilename = "polyfills.legacy.js"

// DefaultIdleTimeout is how long idle executors are kept after the queue drains.
const DefaultIdleTimeout = 10 * time.Millisecond

// DequeueOrder selects which pending task a freed executor picks up.
type DequeueOrder string

const (
	// DequeueFIFO dispatches the oldest pending task first.
	DequeueFIFO DequeueOrder = "fifo"
	// DequeueLIFO dispatches the most recently queued task first.
	DequeueLIFO DequeueOrder = "lifo"
)

// ExecutorKind selects the executor variant backing the pool.
type ExecutorKind string

const (
	// ExecutorInProcess runs the transformer inside this process.
	ExecutorInProcess ExecutorKind = "inprocess"
	// ExecutorProcess runs each executor as a worker subprocess.
	ExecutorProcess ExecutorKind = "process"
	// ExecutorWasm runs each executor as a sandboxed WASI module.
	ExecutorWasm ExecutorKind = "wasm"
)

// TransformerKind selects the transformation collaborator.
type TransformerKind string

const (
	// TransformerEsbuild uses the built-in esbuild transformer.
	TransformerEsbuild TransformerKind = "esbuild"
	// TransformerCommand pipes every task through an external command.
	TransformerCommand TransformerKind = "command"
)

// Options is the effective configuration of one optimizer instance.
type Options struct {
	Concurrency       int           `json:"concurrency"`
	SourceMap         bool          `json:"sourceMap"`
	Minify            bool          `json:"minify"`
	Downlevel         bool          `json:"downlevel"`
	Verbose           bool          `json:"verbose"`
	PolyfillsFilename string        `json:"polyfillsFilename"`
	Extensions        []string      `json:"extensions"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
	Dequeue           DequeueOrder  `json:"dequeue"`

	Executor    ExecutorOptions    `json:"executor"`
	Transformer TransformerOptions `json:"transformer"`
	ShimsRoot   string             `json:"shimsRoot"`
}

// ExecutorOptions configures the executor variant.
type ExecutorOptions struct {
	Kind   ExecutorKind `json:"kind"`
	Module string       `json:"module,omitempty"`
}

// TransformerOptions configures the transformation collaborator.
type TransformerOptions struct {
	Kind    TransformerKind `json:"kind"`
	Command []string        `json:"command,omitempty"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Concurrency:       ConcurrencyAuto,
		Minify:            true,
		Downlevel:         true,
		Verbose:           true,
		PolyfillsFilename: DefaultPolyfillsFilename,
		Extensions:        []string{".js", ".mjs"},
		IdleTimeout:       DefaultIdleTimeout,
		Dequeue:           DequeueFIFO,
		Executor:          ExecutorOptions{Kind: ExecutorInProcess},
		Transformer:       TransformerOptions{Kind: TransformerEsbuild},
		ShimsRoot:         "node_modules",
	}
}

// EffectiveConcurrency resolves ConcurrencyAuto to the host parallelism.
func (o Options) EffectiveConcurrency() int {
	if o.Concurrency < 0 {
		return max(1, runtime.NumCPU())
	}
	return o.Concurrency
}

// TaskOptions projects the options a transformer sees.
func (o Options) TaskOptions() TaskOptions {
	return TaskOptions{
		SourceMap: o.SourceMap,
		Minify:    o.Minify,
		Downlevel: o.Downlevel,
		Timings:   o.Verbose,
	}
}

// Validate checks the options for values the engine cannot honour.
func (o Options) Validate() error {
	switch o.Dequeue {
	case DequeueFIFO, DequeueLIFO:
	default:
		return withField(ErrInvalidOption, "dequeue", string(o.Dequeue))
	}
	switch o.Executor.Kind {
	case ExecutorInProcess, ExecutorProcess:
	case ExecutorWasm:
		if o.Executor.Module == "" {
			return withField(ErrInvalidOption, "executor.module", "")
		}
	default:
		return withField(ErrInvalidOption, "executor.kind", string(o.Executor.Kind))
	}
	switch o.Transformer.Kind {
	case TransformerEsbuild:
	case TransformerCommand:
		if len(o.Transformer.Command) == 0 {
			return withField(ErrInvalidOption, "transformer.command", "")
		}
	default:
		return withField(ErrInvalidOption, "transformer.kind", string(o.Transformer.Kind))
	}
	if o.PolyfillsFilename == "" {
		return withField(ErrInvalidOption, "polyfillsFilename", "")
	}
	if o.IdleTimeout < 0 {
		return withField(ErrInvalidOption, "idleTimeout", o.IdleTimeout.String())
	}
	return nil
}
