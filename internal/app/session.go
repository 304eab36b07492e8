package app

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/optimize/internal/adapters/command"  //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/esbuild"  //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/executor" //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/shims"    //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/wasm"     //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/optimize/internal/engine/polyfill"
	"go.trai.ch/optimize/internal/engine/pool"
	"go.trai.ch/zerr"
)

// WorkerCommand is the subcommand the process executor starts.
const WorkerCommand = "worker"

// session holds what one Run, or one whole Watch, shares between passes.
type session struct {
	options     domain.Options
	fingerprint string
	submitter   pool.Submitter
	bundles     *polyfill.BundleCache
	closer      func(context.Context) error
}

func (a *App) newSession(ctx context.Context, options domain.Options) (*session, error) {
	fingerprint, err := a.hasher.Fingerprint(options)
	if err != nil {
		return nil, err
	}

	factory, closer, err := a.executorFactory(ctx, options)
	if err != nil {
		return nil, err
	}

	bundles, err := a.bundleCache(fingerprint, options)
	if err != nil {
		if closer != nil {
			_ = closer(ctx)
		}
		return nil, err
	}

	return &session{
		options:     options,
		fingerprint: fingerprint,
		submitter:   pool.ForOptions(factory, options),
		bundles:     bundles,
		closer:      closer,
	}, nil
}

func (s *session) close(log ports.Logger) {
	if err := s.submitter.Close(); err != nil {
		log.Error(zerr.Wrap(err, "failed to close executors"))
	}
	if s.closer != nil {
		if err := s.closer(context.Background()); err != nil {
			log.Error(zerr.Wrap(err, "failed to release executor runtime"))
		}
	}
}

// bundleCache returns the process-wide bundle cache for a configuration, so
// later passes with the same options reuse earlier bundles.
func (a *App) bundleCache(fingerprint string, options domain.Options) (*polyfill.BundleCache, error) {
	root, err := filepath.Abs(options.ShimsRoot)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve shims root")
	}
	key := fingerprint + "\x00" + root

	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.bundles[key]; ok {
		return c, nil
	}
	bundler := esbuild.NewBundler(shims.NewResolver(root), root)
	c := polyfill.NewBundleCache(bundler, options.TaskOptions())
	a.bundles[key] = c
	return c, nil
}

func (a *App) executorFactory(
	ctx context.Context,
	options domain.Options,
) (ports.ExecutorFactory, func(context.Context) error, error) {
	switch options.Executor.Kind {
	case domain.ExecutorProcess:
		path := a.workerPath
		if path == "" {
			exe, err := os.Executable()
			if err != nil {
				return nil, nil, zerr.Wrap(err, "failed to locate worker binary")
			}
			path = exe
		}
		return executor.NewProcessFactory(path, WorkerArgs(options.Transformer)...), nil, nil
	case domain.ExecutorWasm:
		f, err := wasm.Load(ctx, options.Executor.Module)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	default:
		return executor.NewInProcessFactory(NewTransformer(options.Transformer)), nil, nil
	}
}

// NewTransformer builds the transformation collaborator the options select.
func NewTransformer(opts domain.TransformerOptions) ports.Transformer {
	if opts.Kind == domain.TransformerCommand {
		return command.NewTransformer(opts.Command)
	}
	return esbuild.NewTransformer()
}

// WorkerArgs returns the arguments that make a worker use the same transformer.
func WorkerArgs(opts domain.TransformerOptions) []string {
	args := []string{WorkerCommand}
	if opts.Kind == domain.TransformerCommand {
		args = append(args, "--")
		args = append(args, opts.Command...)
	}
	return args
}

// Serve answers worker protocol requests from r on w until r is closed.
func (a *App) Serve(ctx context.Context, r io.Reader, w io.Writer, argv []string) error {
	opts := domain.TransformerOptions{Kind: domain.TransformerEsbuild}
	if len(argv) > 0 {
		opts = domain.TransformerOptions{Kind: domain.TransformerCommand, Command: argv}
	}
	return executor.Serve(ctx, r, w, NewTransformer(opts))
}
