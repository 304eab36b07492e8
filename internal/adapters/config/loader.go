// Package config provides the configuration loader for optimize.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const supportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load looks for optimize.yaml in cwd and its parents and applies it on top of
// the defaults. Relative paths in the file are resolved against its directory.
func (l *Loader) Load(cwd string) (domain.Options, error) {
	opts := domain.DefaultOptions()

	path, ok := findConfiguration(cwd)
	if !ok {
		return opts, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is discovered from the working directory
	if err != nil {
		return opts, zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", path)
	}

	var cfg Configfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return opts, zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "path", path)
	}

	if cfg.Version == "" {
		l.Logger.Warn(fmt.Sprintf("%s has no version, assuming %q", path, supportedVersion))
	} else if cfg.Version != supportedVersion {
		return opts, domain.Annotate(domain.ErrInvalidOption, "field", "version", "value", cfg.Version)
	}

	if err := apply(&opts, &cfg, filepath.Dir(path)); err != nil {
		return opts, zerr.With(err, "path", path)
	}
	if err := opts.Validate(); err != nil {
		return opts, zerr.With(err, "path", path)
	}
	return opts, nil
}

func findConfiguration(cwd string) (string, bool) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

//nolint:cyclop // flat field-by-field mapping
func apply(opts *domain.Options, cfg *Configfile, baseDir string) error {
	if cfg.Concurrency != nil {
		opts.Concurrency = *cfg.Concurrency
	}
	if cfg.SourceMap != nil {
		opts.SourceMap = *cfg.SourceMap
	}
	if cfg.Minify != nil {
		opts.Minify = *cfg.Minify
	}
	if cfg.Downlevel != nil {
		opts.Downlevel = *cfg.Downlevel
	}
	if cfg.Verbose != nil {
		opts.Verbose = *cfg.Verbose
	}
	if cfg.PolyfillsFilename != "" {
		opts.PolyfillsFilename = cfg.PolyfillsFilename
	}
	if len(cfg.Extensions) > 0 {
		opts.Extensions = cfg.Extensions
	}
	if cfg.IdleTimeout != "" {
		d, err := time.ParseDuration(cfg.IdleTimeout)
		if err != nil {
			return zerr.With(zerr.With(errors.Join(domain.ErrInvalidOption, err), "field", "idleTimeout"),
				"value", cfg.IdleTimeout)
		}
		opts.IdleTimeout = d
	}
	if cfg.Dequeue != "" {
		opts.Dequeue = domain.DequeueOrder(cfg.Dequeue)
	}
	if cfg.Executor.Kind != "" {
		opts.Executor.Kind = domain.ExecutorKind(cfg.Executor.Kind)
	}
	if cfg.Executor.Module != "" {
		opts.Executor.Module = resolvePath(baseDir, cfg.Executor.Module)
	}
	if cfg.Transformer.Kind != "" {
		opts.Transformer.Kind = domain.TransformerKind(cfg.Transformer.Kind)
	}
	if len(cfg.Transformer.Command) > 0 {
		opts.Transformer.Command = cfg.Transformer.Command
	}
	if cfg.Shims.Root != "" {
		opts.ShimsRoot = resolvePath(baseDir, cfg.Shims.Root)
	}
	return nil
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
