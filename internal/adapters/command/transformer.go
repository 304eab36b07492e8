// Package command provides a transformer that pipes every task through an external command.
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/zerr"
)

// AssetEnv names the environment variable carrying the asset name.
const AssetEnv = "OPTIMIZE_ASSET"

// waitDelay bounds how long output pipes are drained after the command is killed.
const waitDelay = time.Second

// Transformer runs argv once per task. The task is written to the command's stdin
// as JSON and the command answers with a JSON result on stdout.
type Transformer struct {
	argv []string
	dir  string
}

// NewTransformer creates a Transformer for argv.
func NewTransformer(argv []string) *Transformer {
	return &Transformer{argv: argv}
}

// WithDir sets the working directory of the command.
func (t *Transformer) WithDir(dir string) *Transformer {
	t.dir = dir
	return t
}

// Transform implements ports.Transformer.
func (t *Transformer) Transform(ctx context.Context, task *domain.Task) (*domain.Result, error) {
	if len(t.argv) == 0 {
		return nil, domain.Annotate(domain.ErrInvalidOption, "field", "transformer.command")
	}

	input, err := json.Marshal(task)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode task")
	}

	cmd := exec.CommandContext(ctx, t.argv[0], t.argv[1:]...) //nolint:gosec // user provided command
	cmd.Dir = t.dir
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(), AssetEnv+"="+task.Name)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		cause := zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			cause = zerr.With(cause, "stderr", msg)
		}
		return nil, zerr.With(errors.Join(domain.ErrTransformFailure, cause), "asset", task.Name)
	}

	var res domain.Result
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrTransformFailure, zerr.Wrap(err, "invalid command output")), "asset", task.Name)
	}
	if !task.Options.Downlevel {
		res.Legacy = nil
		res.Shims = nil
	}
	if !task.Options.Timings {
		res.Timings = nil
	}
	return &res, nil
}
