// Package esbuild provides the built-in transformer and shim bundler on top of esbuild.
package esbuild

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// ModernTarget is the language level of the modern variant.
	ModernTarget = api.ES2017
	// LegacyTarget is the language level of the legacy variant.
	LegacyTarget = api.ES2015
)

// Transformer produces the modern and legacy variants of a script with esbuild.
type Transformer struct{}

// NewTransformer creates a Transformer.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform compiles the task source twice, once per target, and reports the shims
// the legacy variant depends on. The legacy variant is omitted when it would be
// byte-identical to the modern one and needs no shims.
func (t *Transformer) Transform(ctx context.Context, task *domain.Task) (*domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := withInputMap(task)
	res := &domain.Result{}

	start := time.Now()
	modern, err := transform(task, source, ModernTarget)
	if err != nil {
		return nil, err
	}
	res.Modern = modern
	res.Timings = append(res.Timings, domain.Timing{Name: "modern", Start: start, Duration: time.Since(start)})

	if !task.Options.Downlevel {
		return finish(task, res), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	legacy, err := transform(task, source, LegacyTarget)
	if err != nil {
		return nil, err
	}
	shims := detectShims(task.Source)
	res.Timings = append(res.Timings, domain.Timing{Name: "legacy", Start: start, Duration: time.Since(start)})

	if len(shims) > 0 || !bytes.Equal(legacy.Code, modern.Code) {
		res.Legacy = &legacy
		res.Shims = shims
	}
	return finish(task, res), nil
}

func finish(task *domain.Task, res *domain.Result) *domain.Result {
	if !task.Options.Timings {
		res.Timings = nil
	}
	return res
}

func transform(task *domain.Task, source string, target api.Target) (domain.Output, error) {
	opts := api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            target,
		Sourcefile:        task.Name,
		MinifyWhitespace:  task.Options.Minify,
		MinifyIdentifiers: task.Options.Minify,
		MinifySyntax:      task.Options.Minify,
		LogLevel:          api.LogLevelSilent,
	}
	if task.Options.SourceMap {
		opts.Sourcemap = api.SourceMapExternal
		opts.SourcesContent = api.SourcesContentInclude
	}

	result := api.Transform(source, opts)
	if len(result.Errors) > 0 {
		return domain.Output{}, transformFailure(task.Name, result.Errors)
	}

	out := domain.Output{Code: result.Code}
	if task.Options.SourceMap && len(result.Map) > 0 {
		out.Map = result.Map
	}
	return out, nil
}

// withInputMap appends the upstream source map as an inline comment so esbuild
// chains the generated map back to the original sources.
func withInputMap(task *domain.Task) string {
	if !task.Options.SourceMap || len(task.Map) == 0 {
		return string(task.Source)
	}
	var b strings.Builder
	b.Grow(len(task.Source) + base64.StdEncoding.EncodedLen(len(task.Map)) + 64)
	b.Write(task.Source)
	b.WriteString("\n//# sourceMappingURL=data:application/json;base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(task.Map))
	b.WriteString("\n")
	return b.String()
}

func transformFailure(name string, msgs []api.Message) error {
	cause := errors.New(formatMessages(msgs))
	return zerr.With(errors.Join(domain.ErrTransformFailure, cause), "asset", name)
}

func formatMessages(msgs []api.Message) string {
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: api.ErrorMessage})
	return strings.TrimSpace(strings.Join(formatted, ""))
}
