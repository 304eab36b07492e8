// Package transformcache guarantees each distinct asset is transformed at most once per build.
package transformcache

import (
	"context"
	"sync"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/engine/future"
	"go.trai.ch/optimize/internal/engine/pool"
)

// Cache maps asset identity to the future of its transformation. It lives for one
// build pass and is discarded with it.
type Cache struct {
	submitter pool.Submitter
	opts      domain.TaskOptions

	mu      sync.Mutex
	entries map[*domain.Asset]*future.Future[*domain.Result]
}

// New creates an empty cache submitting to s with the given task options.
func New(s pool.Submitter, opts domain.TaskOptions) *Cache {
	return &Cache{
		submitter: s,
		opts:      opts,
		entries:   make(map[*domain.Asset]*future.Future[*domain.Result]),
	}
}

// GetOrSubmit returns the future for f's asset, submitting a task only the first
// time the asset is seen. Later callers share the first caller's outcome, failure
// included.
func (c *Cache) GetOrSubmit(ctx context.Context, f domain.File) *future.Future[*domain.Result] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fut, ok := c.entries[f.Asset]; ok {
		return fut
	}

	fut := c.submitter.Submit(ctx, &domain.Task{
		Name:    f.Name,
		Source:  f.Asset.Source,
		Map:     f.Asset.Map,
		Options: c.opts,
	})
	c.entries[f.Asset] = fut
	return fut
}

// Len reports how many distinct assets were submitted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
