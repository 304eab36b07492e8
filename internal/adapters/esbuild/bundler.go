package esbuild

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	pluginName = "optimize-shims"
	stdinName  = "polyfills-entry.js"
	outfile    = "polyfills.js"
)

// Bundler merges shim modules into one self-executing legacy script.
type Bundler struct {
	resolver ports.ShimResolver
	root     string
}

// NewBundler creates a Bundler that resolves shims with resolver. Transitive imports
// of the shim modules are looked up below root.
func NewBundler(resolver ports.ShimResolver, root string) *Bundler {
	return &Bundler{resolver: resolver, root: root}
}

// Bundle builds an IIFE that imports every shim for its side effects, tree-shaken
// and targeted at the legacy language level.
func (b *Bundler) Bundle(ctx context.Context, shims []string, opts domain.TaskOptions) (*domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(b.root)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve shims root")
	}

	plugin := &resolvePlugin{ctx: ctx, resolver: b.resolver, shims: shims}
	build := api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   entrySource(shims),
			ResolveDir: root,
			Sourcefile: stdinName,
			Loader:     api.LoaderJS,
		},
		AbsWorkingDir:     root,
		Bundle:            true,
		Write:             false,
		Outfile:           filepath.Join(root, outfile),
		Format:            api.FormatIIFE,
		Target:            LegacyTarget,
		Platform:          api.PlatformBrowser,
		TreeShaking:       api.TreeShakingTrue,
		NodePaths:         []string{root},
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{plugin.plugin()},
	}
	if opts.SourceMap {
		build.Sourcemap = api.SourceMapExternal
	}

	bc, cerr := api.Context(build)
	if cerr != nil {
		return nil, buildFailure(cerr.Errors)
	}
	defer bc.Dispose()
	stop := context.AfterFunc(ctx, bc.Cancel)
	defer stop()

	result := bc.Rebuild()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := plugin.failure(); err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, buildFailure(result.Errors)
	}

	art := &domain.Artifact{Shims: shims}
	for _, f := range result.OutputFiles {
		if strings.HasSuffix(f.Path, ".map") {
			art.Map = f.Contents
			continue
		}
		art.Code = f.Contents
	}
	return art, nil
}

func entrySource(shims []string) string {
	var b strings.Builder
	for _, id := range shims {
		b.WriteString("import ")
		b.WriteString(strconv.Quote(id))
		b.WriteString(";\n")
	}
	return b.String()
}

// resolvePlugin routes the top-level shim imports through the ShimResolver and keeps
// the first resolution error so its classification survives the build.
type resolvePlugin struct {
	ctx      context.Context
	resolver ports.ShimResolver
	shims    []string

	mu  sync.Mutex
	err error
}

func (p *resolvePlugin) plugin() api.Plugin {
	quoted := make([]string, len(p.shims))
	for i, id := range p.shims {
		quoted[i] = regexp.QuoteMeta(id)
	}
	filter := "^(" + strings.Join(quoted, "|") + ")$"

	return api.Plugin{
		Name: pluginName,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: filter}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				path, err := p.resolver.Resolve(p.ctx, args.Path)
				if err != nil {
					p.record(err)
					return api.OnResolveResult{}, err
				}
				return api.OnResolveResult{Path: path}, nil
			})
		},
	}
}

func (p *resolvePlugin) record(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

func (p *resolvePlugin) failure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func buildFailure(msgs []api.Message) error {
	return errors.New(formatMessages(msgs))
}
