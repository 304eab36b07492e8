// Package fs provides file system adapters for walking, hashing and storing assets.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the path of every regular file under root relative to root,
// slash-separated. Directories and files matching an ignore pattern are skipped.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == root {
				return nil
			}

			if d.IsDir() {
				if skipDirs[d.Name()] || matchesAny(d.Name(), ignores) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || matchesAny(d.Name(), ignores) {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if !yield(filepath.ToSlash(rel)) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
