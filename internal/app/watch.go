package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/optimize/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/zerr"
)

// Watch runs a pass, then rebuilds whenever the input directory changes, until ctx
// is done. All passes share one executor pool and the bundle cache. A failing
// rebuild is logged and watching continues.
func (a *App) Watch(ctx context.Context, opts RunOptions) error {
	in, out := opts.dirs()
	if err := checkWatchDirs(in, out); err != nil {
		return err
	}

	options, err := a.options(opts)
	if err != nil {
		return err
	}

	sess, err := a.newSession(ctx, options)
	if err != nil {
		return err
	}
	defer sess.close(a.logger)

	a.rebuild(ctx, sess, in, out, opts.Progress)

	w, err := a.newWatcher()
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := w.Start(watchCtx, in); err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	triggers := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(a.debounce, func([]string) {
		select {
		case triggers <- struct{}{}:
		default:
		}
	})
	defer debouncer.Stop()

	go func() {
		for ev := range w.Events() {
			debouncer.Add(ev.Path)
		}
	}()

	a.logger.Info(fmt.Sprintf("watching %s", in))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-triggers:
			a.rebuild(ctx, sess, in, out, opts.Progress)
		}
	}
}

func (a *App) rebuild(ctx context.Context, sess *session, in, out string, progress bool) {
	rep, err := a.pass(ctx, sess, in, out, progress)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Error(err)
		}
		return
	}
	a.logger.Info(fmt.Sprintf("optimized %d files in %s", len(rep.Files), rep.Duration.Round(time.Millisecond)))
}

// checkWatchDirs rejects layouts where generated files would land in the watched tree.
func checkWatchDirs(in, out string) error {
	absIn, err := filepath.Abs(in)
	if err != nil {
		return zerr.Wrap(err, "failed to resolve input directory")
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return zerr.Wrap(err, "failed to resolve output directory")
	}
	if absIn == absOut || strings.HasPrefix(absOut, absIn+string(filepath.Separator)) {
		return domain.Annotate(domain.ErrWatchRequiresOutDir, "in", absIn, "out", absOut)
	}
	return nil
}
