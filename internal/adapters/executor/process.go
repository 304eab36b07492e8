package executor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	stderrTailSize = 4 << 10
	closeGrace     = 2 * time.Second
)

// ProcessFactory starts one worker subprocess per executor.
type ProcessFactory struct {
	path string
	args []string
	env  []string
}

// NewProcessFactory creates a factory that runs path with args as the worker.
func NewProcessFactory(path string, args ...string) *ProcessFactory {
	return &ProcessFactory{path: path, args: args}
}

// WithEnv appends environment entries passed to every worker.
func (f *ProcessFactory) WithEnv(env ...string) *ProcessFactory {
	f.env = append(f.env, env...)
	return f
}

// NewExecutor implements ports.ExecutorFactory.
func (f *ProcessFactory) NewExecutor(_ context.Context) (ports.Executor, error) {
	cmd := exec.Command(f.path, f.args...) //nolint:gosec // worker binary is configured by the host
	cmd.Env = append(os.Environ(), f.env...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open worker stdin")
	}
	// Wait must not close the read side while a response is still buffered.
	stdout, w, err := os.Pipe()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open worker stdout")
	}
	cmd.Stdout = w
	tail := &tailBuffer{limit: stderrTailSize}
	cmd.Stderr = tail

	err = cmd.Start()
	_ = w.Close()
	if err != nil {
		_ = stdout.Close()
		return nil, zerr.With(zerr.Wrap(err, "failed to start worker"), "path", f.path)
	}

	p := &Process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		dec:    json.NewDecoder(bufio.NewReader(stdout)),
		stderr: tail,
		exited: make(chan struct{}),
	}
	go p.wait()
	return p, nil
}

// Process is an executor backed by a worker subprocess.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *os.File
	dec    *json.Decoder
	stderr *tailBuffer

	seq     uint64
	exited  chan struct{}
	waitErr error
	once    sync.Once
}

func (p *Process) wait() {
	p.waitErr = p.cmd.Wait()
	close(p.exited)
}

// Execute sends the task to the worker and waits for its response. When ctx is
// done the worker is killed; the pool retires the executor afterwards.
func (p *Process) Execute(ctx context.Context, task *domain.Task) (*domain.Result, error) {
	p.seq++
	id := p.seq

	stop := context.AfterFunc(ctx, p.kill)
	defer stop()

	if err := json.NewEncoder(p.stdin).Encode(Request{ID: id, Task: task}); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, p.protocolError(zerr.Wrap(err, "failed to send task"))
	}

	var resp Response
	if err := p.dec.Decode(&resp); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, p.protocolError(zerr.Wrap(err, "failed to read response"))
	}
	if resp.ID != id {
		return nil, domain.Annotate(domain.ErrWorkerProtocol, "want_id", id, "got_id", resp.ID)
	}
	return resp.Outcome()
}

// Close asks the worker to exit by closing its stdin and kills it if it does not
// within a grace period.
func (p *Process) Close() error {
	var err error
	p.once.Do(func() {
		_ = p.stdin.Close()
		select {
		case <-p.exited:
		case <-time.After(closeGrace):
			p.kill()
			<-p.exited
		}
		_ = p.stdout.Close()
		var exitErr *exec.ExitError
		if p.waitErr != nil && !errors.As(p.waitErr, &exitErr) {
			err = zerr.Wrap(p.waitErr, "worker did not exit cleanly")
		}
	})
	return err
}

func (p *Process) kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

func (p *Process) protocolError(err error) error {
	err = errors.Join(domain.ErrWorkerProtocol, err)
	if tail := p.stderr.String(); tail != "" {
		err = zerr.With(err, "stderr", tail)
	}
	return err
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
