// Package shims resolves shim identifiers to module sources on disk.
package shims

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/optimize/internal/core/domain"
	"golang.org/x/sync/singleflight"
)

// Resolver looks shim identifiers up below a modules root, the way a node-style
// resolver walks a node_modules directory. Resolved paths are cached for the
// lifetime of the resolver.
type Resolver struct {
	root string

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]string
}

// NewResolver creates a Resolver rooted at root.
func NewResolver(root string) *Resolver {
	return &Resolver{
		root:  root,
		cache: make(map[string]string),
	}
}

// Root returns the modules root the resolver searches.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve returns the absolute path of the module that provides id.
func (r *Resolver) Resolve(ctx context.Context, id string) (string, error) {
	r.mu.RLock()
	path, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return path, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		path, err := r.lookup(id)
		if err != nil {
			return "", err
		}
		r.mu.Lock()
		r.cache[id] = path
		r.mu.Unlock()
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Resolver) lookup(id string) (string, error) {
	if id == "" || filepath.IsAbs(id) || strings.HasPrefix(id, ".") {
		return "", domain.Annotate(domain.ErrShimNotFound, "shim", id)
	}

	base := filepath.Join(r.root, filepath.FromSlash(id))
	for _, candidate := range []string{base, base + ".js", base + ".mjs"} {
		if isFile(candidate) {
			return filepath.Abs(candidate)
		}
	}

	if entry, ok := packageEntry(base); ok {
		return filepath.Abs(entry)
	}

	index := filepath.Join(base, "index.js")
	if isFile(index) {
		return filepath.Abs(index)
	}

	return "", domain.Annotate(domain.ErrShimNotFound, "shim", id, "root", r.root)
}

type packageJSON struct {
	Module string `json:"module"`
	Main   string `json:"main"`
}

func packageEntry(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return "", false
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", false
	}
	for _, field := range []string{pkg.Module, pkg.Main} {
		if field == "" {
			continue
		}
		entry := filepath.Join(dir, filepath.FromSlash(field))
		for _, candidate := range []string{entry, entry + ".js", filepath.Join(entry, "index.js")} {
			if isFile(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
