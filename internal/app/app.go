// Package app implements the application layer for optimize.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/optimize/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/optimize/internal/engine/orchestrator"
	"go.trai.ch/optimize/internal/engine/polyfill"
	"go.trai.ch/optimize/internal/engine/report"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	hasher       ports.Hasher
	walker       *fs.Walker
	manifests    ports.ManifestStore
	telemetry    ports.Telemetry
	newWatcher   watcher.Factory

	stdout     io.Writer
	progress   io.Writer
	teaOptions []tea.ProgramOption
	workerPath string
	debounce   time.Duration

	mu      sync.Mutex
	bundles map[string]*polyfill.BundleCache
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	hasher ports.Hasher,
	walker *fs.Walker,
	manifests ports.ManifestStore,
	tel ports.Telemetry,
	newWatcher watcher.Factory,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		hasher:       hasher,
		walker:       walker,
		manifests:    manifests,
		telemetry:    tel,
		newWatcher:   newWatcher,
		stdout:       os.Stdout,
		progress:     os.Stderr,
		debounce:     watcher.DefaultDebounceWindow,
		bundles:      make(map[string]*polyfill.BundleCache),
	}
}

// WithOutput sets where the verbose summary is printed.
func (a *App) WithOutput(w io.Writer) *App {
	a.stdout = w
	return a
}

// WithTeaOptions adds bubbletea program options used by the progress view.
// This is primarily used for testing to disable input and output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithWorkerPath sets the binary started by the process executor. It defaults
// to the running executable.
func (a *App) WithWorkerPath(path string) *App {
	a.workerPath = path
	return a
}

// WithDebounce sets the quiet window watch mode waits for before rebuilding.
func (a *App) WithDebounce(window time.Duration) *App {
	a.debounce = window
	return a
}

// Overrides are option values given on the command line. Nil fields keep the
// configured value.
type Overrides struct {
	Concurrency       *int
	SourceMap         *bool
	Minify            *bool
	Downlevel         *bool
	Verbose           *bool
	PolyfillsFilename *string
	Dequeue           *string
	Executor          *string
}

// RunOptions configuration for the Run and Watch methods.
type RunOptions struct {
	// InDir is the upstream bundler's output directory.
	InDir string
	// OutDir receives the generated files. Empty means InDir.
	OutDir string
	// ConfigDir is where the configuration lookup starts. Empty means the working directory.
	ConfigDir string
	// Progress shows a live view of every pass on the progress output.
	Progress  bool
	Overrides Overrides
}

func (o RunOptions) dirs() (string, string) {
	in := o.InDir
	if in == "" {
		in = "."
	}
	out := o.OutDir
	if out == "" {
		out = in
	}
	return filepath.Clean(in), filepath.Clean(out)
}

// Run performs one optimization pass over opts.InDir.
func (a *App) Run(ctx context.Context, opts RunOptions) (*domain.Report, error) {
	options, err := a.options(opts)
	if err != nil {
		return nil, err
	}

	sess, err := a.newSession(ctx, options)
	if err != nil {
		return nil, err
	}
	defer sess.close(a.logger)

	in, out := opts.dirs()
	return a.pass(ctx, sess, in, out, opts.Progress)
}

// Fingerprint returns the fingerprint of the effective configuration.
func (a *App) Fingerprint(opts RunOptions) (string, error) {
	options, err := a.options(opts)
	if err != nil {
		return "", err
	}
	return a.hasher.Fingerprint(options)
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	OutDir string
}

// Clean removes every file the last pass recorded as generated in opts.OutDir.
// Modern outputs are never touched.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	out := opts.OutDir
	if out == "" {
		out = "."
	}
	abs, err := filepath.Abs(out)
	if err != nil {
		return zerr.Wrap(err, "failed to resolve output directory")
	}

	m, err := a.manifests.Get(abs)
	if err != nil {
		return err
	}
	if m == nil {
		a.logger.Info("nothing to clean")
		return nil
	}

	store := fs.NewDirStore(abs, abs, a.walker, a.hasher)
	for _, name := range m.Generated {
		if err := store.Remove(name); err != nil {
			return err
		}
	}
	if err := a.manifests.Delete(abs); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("removed %d generated files", len(m.Generated)))
	return nil
}

// options loads the configuration and applies the command line overrides.
func (a *App) options(opts RunOptions) (domain.Options, error) {
	dir := opts.ConfigDir
	if dir == "" {
		dir = "."
	}
	options, err := a.configLoader.Load(dir)
	if err != nil {
		return options, zerr.Wrap(err, "failed to load configuration")
	}

	o := opts.Overrides
	if o.Concurrency != nil {
		options.Concurrency = *o.Concurrency
	}
	if o.SourceMap != nil {
		options.SourceMap = *o.SourceMap
	}
	if o.Minify != nil {
		options.Minify = *o.Minify
	}
	if o.Downlevel != nil {
		options.Downlevel = *o.Downlevel
	}
	if o.Verbose != nil {
		options.Verbose = *o.Verbose
	}
	if o.PolyfillsFilename != nil {
		options.PolyfillsFilename = *o.PolyfillsFilename
	}
	if o.Dequeue != nil {
		options.Dequeue = domain.DequeueOrder(*o.Dequeue)
	}
	if o.Executor != nil {
		options.Executor.Kind = domain.ExecutorKind(*o.Executor)
	}

	if err := options.Validate(); err != nil {
		return options, err
	}
	return options, nil
}

// Optimize runs one pass over assets held by an embedding host. Unlike Run, no
// manifest is recorded.
func (a *App) Optimize(ctx context.Context, store ports.AssetStore, opts RunOptions) (*domain.Report, error) {
	options, err := a.options(opts)
	if err != nil {
		return nil, err
	}

	sess, err := a.newSession(ctx, options)
	if err != nil {
		return nil, err
	}
	defer sess.close(a.logger)

	return a.optimize(ctx, sess, store, opts.Progress)
}

// optimize runs the orchestrator once and prints the summary when verbose. With
// progress set, the pass is followed by a live view while it runs.
func (a *App) optimize(
	ctx context.Context,
	sess *session,
	store ports.AssetStore,
	progress bool,
) (*domain.Report, error) {
	run := func(tel ports.Telemetry) (*domain.Report, error) {
		return orchestrator.New(sess.submitter, sess.bundles, tel, sess.options).Optimize(ctx, store)
	}

	var rep *domain.Report
	var err error
	if progress {
		rep, err = a.withProgress(ctx, run)
	} else {
		tel := a.telemetry
		if !sess.options.Verbose || tel == nil {
			tel = telemetry.NewNoop()
		}
		rep, err = run(tel)
	}
	if err != nil {
		return nil, err
	}

	if sess.options.Verbose {
		if err := report.Write(a.stdout, rep, sess.options.PolyfillsFilename); err != nil {
			return nil, zerr.Wrap(err, "failed to write summary")
		}
	}
	return rep, nil
}

// pass optimizes the input directory and records the outcome.
func (a *App) pass(ctx context.Context, sess *session, in, out string, progress bool) (*domain.Report, error) {
	store := fs.NewDirStore(in, out, a.walker, a.hasher).WithIgnores(domain.StateDirName)
	rep, err := a.optimize(ctx, sess, store, progress)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(out)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve output directory")
	}
	if err := a.manifests.Put(abs, domain.Manifest{
		Fingerprint: sess.fingerprint,
		Generated:   rep.Generated(sess.options.PolyfillsFilename),
		Timestamp:   time.Now(),
	}); err != nil {
		return nil, err
	}

	return rep, nil
}

// logConfigurer is implemented by loggers whose verbosity and format can change at runtime.
type logConfigurer interface {
	SetQuiet(quiet bool)
	SetJSON(enable bool)
}

// ConfigureLogging applies the command line logging flags when the logger supports them.
func (a *App) ConfigureLogging(quiet, json bool) {
	if l, ok := a.logger.(logConfigurer); ok {
		l.SetQuiet(quiet)
		l.SetJSON(json)
	}
}
