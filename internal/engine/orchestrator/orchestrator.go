// Package orchestrator runs one optimization pass over a host's output files.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/optimize/internal/engine/future"
	"go.trai.ch/optimize/internal/engine/polyfill"
	"go.trai.ch/optimize/internal/engine/pool"
	"go.trai.ch/optimize/internal/engine/transformcache"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Orchestrator drives a pass: gather candidates, transform each distinct asset once,
// write both variants, aggregate shim requirements and emit the shared bundle.
type Orchestrator struct {
	submitter pool.Submitter
	bundles   *polyfill.BundleCache
	telemetry ports.Telemetry
	opts      domain.Options
}

// New creates an Orchestrator. The bundle cache outlives the pass and is owned by the caller.
func New(
	submitter pool.Submitter,
	bundles *polyfill.BundleCache,
	telemetry ports.Telemetry,
	opts domain.Options,
) *Orchestrator {
	return &Orchestrator{
		submitter: submitter,
		bundles:   bundles,
		telemetry: telemetry,
		opts:      opts,
	}
}

type candidate struct {
	file   domain.File
	legacy string
	fut    *future.Future[*domain.Result]
	vertex ports.Vertex
	start  time.Time
	result *domain.Result
	took   time.Duration
}

// Optimize runs one pass against store. Any failure aborts the pass with an error
// classified as domain.ErrBuildFailed that keeps the original cause. Outputs
// already written are left in place.
func (o *Orchestrator) Optimize(ctx context.Context, store ports.AssetStore) (*domain.Report, error) {
	start := time.Now()

	files, err := store.Assets(ctx)
	if err != nil {
		return nil, buildFailed(err)
	}

	cands, err := o.collect(ctx, files)
	if err != nil {
		return nil, buildFailed(err)
	}

	if err := o.write(ctx, store, cands); err != nil {
		return nil, buildFailed(err)
	}

	report := &domain.Report{}
	reqs := polyfill.NewRequirements()
	for _, c := range cands {
		outcome := domain.FileOutcome{
			Name:       c.file.Name,
			LegacyName: c.legacy,
			HasLegacy:  c.result.Legacy != nil,
		}
		if outcome.HasLegacy {
			outcome.Shims = c.result.Shims
			reqs.Add(c.legacy, c.result.Shims)
		}
		report.Files = append(report.Files, outcome)
		report.Timings = append(report.Timings, domain.Timing{
			Name:     "optimize " + c.file.Name,
			Start:    c.start,
			Duration: c.took,
		})
		for _, t := range c.result.Timings {
			t.Depth++
			report.Timings = append(report.Timings, t)
		}
	}
	report.Shims = reqs.Shims()
	report.Reasons = reqs.Map()

	if err := o.emitBundle(ctx, store, reqs, report); err != nil {
		return nil, buildFailed(err)
	}

	report.Duration = time.Since(start)
	return report, nil
}

// collect submits every candidate through a fresh per-pass transform cache and
// waits for all results, failing fast on the first error.
func (o *Orchestrator) collect(ctx context.Context, files []domain.File) ([]*candidate, error) {
	cache := transformcache.New(o.submitter, o.opts.TaskOptions())
	seen := make(map[*domain.Asset]bool)

	var cands []*candidate
	for _, f := range o.candidates(files) {
		_, v := o.telemetry.Record(ctx, "optimize "+f.Name)
		c := &candidate{
			file:   f,
			legacy: domain.LegacyFilename(f.Name),
			vertex: v,
			start:  time.Now(),
		}
		c.fut = cache.GetOrSubmit(ctx, f)
		if seen[f.Asset] {
			v.Cached()
		}
		seen[f.Asset] = true
		cands = append(cands, c)

		select {
		case <-c.fut.Done():
			if _, err := c.fut.Wait(ctx); err != nil {
				settle(cands)
				return nil, err
			}
		default:
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range cands {
		g.Go(func() error {
			res, err := c.fut.Wait(gctx)
			c.vertex.Complete(err)
			if err != nil {
				return err
			}
			c.result = res
			c.took = time.Since(c.start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cands, nil
}

// settle completes the vertices of candidates whose transform already finished,
// each with its own outcome. Unfinished transforms are abandoned.
func settle(cands []*candidate) {
	for _, c := range cands {
		select {
		case <-c.fut.Done():
			_, err := c.fut.Wait(context.Background())
			c.vertex.Complete(err)
		default:
		}
	}
}

// candidates filters files by the extension allowlist and drops names this
// optimizer generates itself.
func (o *Orchestrator) candidates(files []domain.File) []domain.File {
	var out []domain.File
	for _, f := range files {
		if f.Asset == nil || !domain.HasExtension(f.Name, o.opts.Extensions) {
			continue
		}
		if f.Name == o.opts.PolyfillsFilename || domain.IsLegacyFilename(f.Name) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// write stores the modern variant and then the legacy variant of each candidate.
// A candidate without a legacy variant has any stale legacy output removed.
func (o *Orchestrator) write(ctx context.Context, store ports.AssetStore, cands []*candidate) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range cands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := store.Write(c.file.Name, c.result.Modern); err != nil {
				return zerr.With(err, "asset", c.file.Name)
			}
			if c.result.Legacy == nil {
				if err := store.Remove(c.legacy); err != nil {
					return zerr.With(err, "asset", c.legacy)
				}
				return nil
			}
			if err := store.Write(c.legacy, *c.result.Legacy); err != nil {
				return zerr.With(err, "asset", c.legacy)
			}
			return nil
		})
	}
	return g.Wait()
}

// emitBundle writes the shared bundle for the aggregated shim set, or removes a
// stale one when nothing needs shimming.
func (o *Orchestrator) emitBundle(
	ctx context.Context,
	store ports.AssetStore,
	reqs *polyfill.Requirements,
	report *domain.Report,
) error {
	name := o.opts.PolyfillsFilename
	if reqs.Empty() {
		if err := store.Remove(name); err != nil {
			return zerr.With(err, "asset", name)
		}
		return nil
	}

	start := time.Now()
	_, v := o.telemetry.Record(ctx, "bundle "+name)
	fut, hit := o.bundles.GetOrBuild(ctx, reqs.Shims())
	if hit {
		v.Cached()
	}
	art, err := fut.Wait(ctx)
	v.Complete(err)
	if err != nil {
		return err
	}

	if err := store.Write(name, domain.Output{Code: art.Code, Map: art.Map}); err != nil {
		return zerr.With(err, "asset", name)
	}

	report.Bundle = art
	report.BundleCached = hit
	report.Timings = append(report.Timings, domain.Timing{
		Name:     "bundle " + name,
		Start:    start,
		Duration: time.Since(start),
	})
	return nil
}

func buildFailed(err error) error {
	if errors.Is(err, domain.ErrBuildFailed) {
		return err
	}
	return errors.Join(domain.ErrBuildFailed, err)
}
