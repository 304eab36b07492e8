package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/optimize/cmd/optimize/commands"
	"go.trai.ch/optimize/internal/app"
	"go.trai.ch/optimize/internal/build"
	"go.trai.ch/optimize/internal/core/domain"
)

type mockApp struct {
	runFunc         func(ctx context.Context, opts app.RunOptions) (*domain.Report, error)
	watchFunc       func(ctx context.Context, opts app.RunOptions) error
	cleanFunc       func(ctx context.Context, opts app.CleanOptions) error
	fingerprintFunc func(opts app.RunOptions) (string, error)
	serveFunc       func(ctx context.Context, r io.Reader, w io.Writer, argv []string) error

	quiet, json bool
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) (*domain.Report, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return &domain.Report{}, nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.RunOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Fingerprint(opts app.RunOptions) (string, error) {
	if m.fingerprintFunc != nil {
		return m.fingerprintFunc(opts)
	}
	return "", nil
}

func (m *mockApp) Serve(ctx context.Context, r io.Reader, w io.Writer, argv []string) error {
	if m.serveFunc != nil {
		return m.serveFunc(ctx, r, w, argv)
	}
	return nil
}

func (m *mockApp) ConfigureLogging(quiet, json bool) {
	m.quiet = quiet
	m.json = json
}

func execute(t *testing.T, mock *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(mock)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.RunOptions
		called := false
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) (*domain.Report, error) {
				captured = opts
				called = true
				return &domain.Report{}, nil
			},
		}

		_, err := execute(t, mock, "run", "dist", "-o", "out", "-C", "conf",
			"-j", "3", "--minify=false", "--source-map", "--dequeue", "lifo", "--executor", "process")
		require.NoError(t, err)
		require.True(t, called)

		assert.Equal(t, "dist", captured.InDir)
		assert.Equal(t, "out", captured.OutDir)
		assert.Equal(t, "conf", captured.ConfigDir)

		o := captured.Overrides
		require.NotNil(t, o.Concurrency)
		assert.Equal(t, 3, *o.Concurrency)
		require.NotNil(t, o.Minify)
		assert.False(t, *o.Minify)
		require.NotNil(t, o.SourceMap)
		assert.True(t, *o.SourceMap)
		require.NotNil(t, o.Dequeue)
		assert.Equal(t, "lifo", *o.Dequeue)
		require.NotNil(t, o.Executor)
		assert.Equal(t, "process", *o.Executor)
		assert.Nil(t, o.Downlevel)
		assert.Nil(t, o.Verbose)
		assert.Nil(t, o.PolyfillsFilename)
	})

	t.Run("keeps configured values when no flags are set", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) (*domain.Report, error) {
				captured = opts
				return &domain.Report{}, nil
			},
		}

		_, err := execute(t, mock, "run")
		require.NoError(t, err)
		assert.Equal(t, app.RunOptions{}, captured)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) (*domain.Report, error) {
				return nil, errors.New("simulated error")
			},
		}

		_, err := execute(t, mock, "run", "dist")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("rejects more than one directory", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) (*domain.Report, error) {
				panic("should not be called")
			},
		}

		_, err := execute(t, mock, "run", "a", "b")
		require.Error(t, err)
	})
}

func TestCommands_Watch(t *testing.T) {
	var captured app.RunOptions
	mock := &mockApp{
		watchFunc: func(_ context.Context, opts app.RunOptions) error {
			captured = opts
			return nil
		},
	}

	_, err := execute(t, mock, "watch", "dist", "--out", "public", "--verbose=false", "-p")
	require.NoError(t, err)
	assert.True(t, captured.Progress)
	assert.Equal(t, "dist", captured.InDir)
	assert.Equal(t, "public", captured.OutDir)
	require.NotNil(t, captured.Overrides.Verbose)
	assert.False(t, *captured.Overrides.Verbose)
}

func TestCommands_Clean(t *testing.T) {
	var captured app.CleanOptions
	mock := &mockApp{
		cleanFunc: func(_ context.Context, opts app.CleanOptions) error {
			captured = opts
			return nil
		},
	}

	_, err := execute(t, mock, "clean", "public")
	require.NoError(t, err)
	assert.Equal(t, "public", captured.OutDir)
}

func TestCommands_Fingerprint(t *testing.T) {
	mock := &mockApp{
		fingerprintFunc: func(opts app.RunOptions) (string, error) {
			require.NotNil(t, opts.Overrides.Downlevel)
			assert.False(t, *opts.Overrides.Downlevel)
			return "abc123", nil
		},
	}

	out, err := execute(t, mock, "fingerprint", "--downlevel=false")
	require.NoError(t, err)
	assert.Equal(t, "abc123\n", out)
}

func TestCommands_Worker(t *testing.T) {
	t.Run("passes the command after the dash", func(t *testing.T) {
		var captured []string
		mock := &mockApp{
			serveFunc: func(_ context.Context, r io.Reader, w io.Writer, argv []string) error {
				captured = argv
				data, err := io.ReadAll(r)
				if err != nil {
					return err
				}
				_, err = w.Write(bytes.ToUpper(data))
				return err
			},
		}

		cli := commands.New(mock)
		out := new(bytes.Buffer)
		cli.SetOutput(out, new(bytes.Buffer))
		cli.SetInput(strings.NewReader("request"))
		cli.SetArgs([]string{app.WorkerCommand, "--", "sh", "-c", "cat"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, []string{"sh", "-c", "cat"}, captured)
		assert.Equal(t, "REQUEST", out.String())
	})

	t.Run("built-in transformer without arguments", func(t *testing.T) {
		captured := []string{"unset"}
		mock := &mockApp{
			serveFunc: func(_ context.Context, _ io.Reader, _ io.Writer, argv []string) error {
				captured = argv
				return nil
			},
		}

		_, err := execute(t, mock, app.WorkerCommand)
		require.NoError(t, err)
		assert.Empty(t, captured)
	})
}

func TestCommands_Logging(t *testing.T) {
	mock := &mockApp{}

	_, err := execute(t, mock, "run", "-q", "--log-json")
	require.NoError(t, err)
	assert.True(t, mock.quiet)
	assert.True(t, mock.json)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "optimize version "+build.Version+"\n", out)
}

func TestCommands_VersionFlag(t *testing.T) {
	for _, flag := range []string{"--version", "-v"} {
		t.Run(flag, func(t *testing.T) {
			out, err := execute(t, &mockApp{}, flag)
			require.NoError(t, err)
			assert.Equal(t, "optimize version "+build.Version+"\n", out)
		})
	}
}

func TestCommands_Help(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"run", "--help"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			out, err := execute(t, &mockApp{}, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "--verbose")
		})
	}
}
