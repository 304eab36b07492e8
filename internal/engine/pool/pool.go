// Package pool implements the bounded executor pool that runs transformation tasks.
package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/optimize/internal/engine/future"
	"go.trai.ch/zerr"
)

// Submitter accepts tasks and hands back a future for each result.
type Submitter interface {
	// Submit enqueues task. The returned future always resolves, with either the
	// executor's result or an error classified as domain.ErrExecutionFailure.
	Submit(ctx context.Context, task *domain.Task) *future.Future[*domain.Result]
	// Close waits for in-flight tasks and releases every executor.
	Close() error
}

// Config tunes a Pool.
type Config struct {
	Concurrency int
	IdleTimeout time.Duration
	Dequeue     domain.DequeueOrder
}

// ForOptions returns the submitter matching the configured concurrency: a bounded
// Pool, or an Inline runner when concurrency is zero.
func ForOptions(factory ports.ExecutorFactory, opts domain.Options) Submitter {
	n := opts.EffectiveConcurrency()
	if n == 0 {
		return NewInline(factory)
	}
	return New(factory, Config{
		Concurrency: n,
		IdleTimeout: opts.IdleTimeout,
		Dequeue:     opts.Dequeue,
	})
}

type job struct {
	ctx  context.Context
	task *domain.Task
	fut  *future.Future[*domain.Result]
}

// Pool owns up to Concurrency executors. Executors are created lazily when a task
// is dispatched, reused while work is queued, and closed once the pool has been
// idle for IdleTimeout.
type Pool struct {
	factory ports.ExecutorFactory
	cfg     Config

	mu       sync.Mutex
	live     int
	idle     []ports.Executor
	pending  []*job
	inFlight int
	timer    *time.Timer
	timerGen uint64
	closed   bool
	wg       sync.WaitGroup
}

// New creates a Pool. A non-positive concurrency is treated as one.
func New(factory ports.ExecutorFactory, cfg Config) *Pool {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Dequeue == "" {
		cfg.Dequeue = domain.DequeueFIFO
	}
	return &Pool{factory: factory, cfg: cfg}
}

// Submit enqueues task and dispatches it as soon as an executor is free or can be created.
func (p *Pool) Submit(ctx context.Context, task *domain.Task) *future.Future[*domain.Result] {
	fut := future.New[*domain.Result]()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		fut.Resolve(nil, domain.Annotate(domain.ErrPoolClosed, "asset", task.Name))
		return fut
	}

	p.stopTimerLocked()
	p.pending = append(p.pending, &job{ctx: ctx, task: task, fut: fut})
	p.dispatchLocked()
	return fut
}

// dispatchLocked starts as many pending jobs as the idle executors and the cap allow.
func (p *Pool) dispatchLocked() {
	for len(p.pending) > 0 {
		var exec ports.Executor
		switch {
		case len(p.idle) > 0:
			exec = p.idle[len(p.idle)-1]
			p.idle = p.idle[:len(p.idle)-1]
		case p.live < p.cfg.Concurrency:
			p.live++
		default:
			return
		}

		j := p.dequeueLocked()
		p.inFlight++
		p.wg.Add(1)
		go p.run(j, exec)
	}
}

func (p *Pool) dequeueLocked() *job {
	var j *job
	if p.cfg.Dequeue == domain.DequeueLIFO {
		last := len(p.pending) - 1
		j = p.pending[last]
		p.pending[last] = nil
		p.pending = p.pending[:last]
		return j
	}
	j = p.pending[0]
	p.pending[0] = nil
	p.pending = p.pending[1:]
	return j
}

// run executes one job. A nil exec means a new executor must be started first.
func (p *Pool) run(j *job, exec ports.Executor) {
	defer p.wg.Done()

	// A job cancelled while queued never reaches the executor.
	if err := j.ctx.Err(); err != nil {
		p.release(exec)
		j.fut.Resolve(nil, err)
		return
	}

	if exec == nil {
		var err error
		exec, err = p.factory.NewExecutor(context.WithoutCancel(j.ctx))
		if err != nil {
			p.release(nil)
			j.fut.Resolve(nil, executionFailure(j.task, errors.Join(domain.ErrExecutorStartFailed, err)))
			return
		}
	}

	res, err := exec.Execute(j.ctx, j.task)
	if err != nil {
		_ = exec.Close()
		p.release(nil)
		j.fut.Resolve(nil, executionFailure(j.task, err))
		return
	}

	p.release(exec)
	j.fut.Resolve(res, nil)
}

// release returns exec to the idle set, or retires the slot when exec is nil.
func (p *Pool) release(exec ports.Executor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.inFlight--
	if exec == nil {
		p.live--
	} else {
		p.idle = append(p.idle, exec)
	}

	p.dispatchLocked()

	if !p.closed && len(p.pending) == 0 && p.inFlight == 0 && len(p.idle) > 0 {
		p.armTimerLocked()
	}
}

func (p *Pool) armTimerLocked() {
	p.stopTimerLocked()
	gen := p.timerGen
	p.timer = time.AfterFunc(p.cfg.IdleTimeout, func() { p.reap(gen) })
}

func (p *Pool) stopTimerLocked() {
	p.timerGen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// reap closes all idle executors if the pool is still quiescent.
func (p *Pool) reap(gen uint64) {
	p.mu.Lock()
	if gen != p.timerGen || len(p.pending) > 0 || p.inFlight > 0 {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	idle := p.idle
	p.idle = nil
	p.live -= len(idle)
	p.mu.Unlock()

	closeAll(idle)
}

// Close fails tasks that never started, waits for in-flight tasks, and closes
// every executor. Submissions after Close fail with domain.ErrPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.stopTimerLocked()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, j := range pending {
		j.fut.Resolve(nil, executionFailure(j.task, domain.ErrPoolClosed))
	}

	p.wg.Wait()

	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.live -= len(idle)
	p.mu.Unlock()

	return closeAll(idle)
}

func closeAll(execs []ports.Executor) error {
	var errs error
	for _, e := range execs {
		if err := e.Close(); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, "failed to close executor"))
		}
	}
	return errs
}

func executionFailure(task *domain.Task, cause error) error {
	return zerr.With(errors.Join(domain.ErrExecutionFailure, cause), "asset", task.Name)
}
