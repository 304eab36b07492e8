package polyfill

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/optimize/internal/engine/future"
	"go.trai.ch/zerr"
)

// BundleCache memoizes shared bundle builds by canonical shim set for the lifetime
// of its owner. At most one build per key runs at a time; successful artifacts are
// reused indefinitely. A failed build is shared with the callers already waiting on
// it and then forgotten, so a later pass can try again.
type BundleCache struct {
	bundler ports.ShimBundler
	opts    domain.TaskOptions

	mu      sync.Mutex
	entries map[string]*future.Future[*domain.Artifact]
	builds  atomic.Int64
}

// NewBundleCache creates an empty cache building with bundler under opts.
func NewBundleCache(bundler ports.ShimBundler, opts domain.TaskOptions) *BundleCache {
	return &BundleCache{
		bundler: bundler,
		opts:    opts,
		entries: make(map[string]*future.Future[*domain.Artifact]),
	}
}

// GetOrBuild returns the future artifact for shims and whether it came from an
// existing entry. Discovery order of shims does not affect the key.
func (c *BundleCache) GetOrBuild(ctx context.Context, shims []string) (*future.Future[*domain.Artifact], bool) {
	canonical := domain.CanonicalShims(shims)
	key := domain.ShimSetKey(canonical)

	c.mu.Lock()
	defer c.mu.Unlock()

	if fut, ok := c.entries[key]; ok {
		return fut, true
	}

	fut := future.New[*domain.Artifact]()
	c.entries[key] = fut
	c.builds.Add(1)

	go c.build(context.WithoutCancel(ctx), key, canonical, fut)

	return fut, false
}

func (c *BundleCache) build(ctx context.Context, key string, shims []string, fut *future.Future[*domain.Artifact]) {
	art, err := c.bundler.Bundle(ctx, shims, c.opts)
	if err != nil {
		c.mu.Lock()
		if c.entries[key] == fut {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		fut.Resolve(nil, zerr.With(errors.Join(domain.ErrBundleFailure, err), "shims", strings.Join(shims, ",")))
		return
	}
	if art.Shims == nil {
		art.Shims = shims
	}
	fut.Resolve(art, nil)
}

// Builds reports how many bundle computations were started.
func (c *BundleCache) Builds() int {
	return int(c.builds.Load())
}

// Len reports how many keys are cached or building.
func (c *BundleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
