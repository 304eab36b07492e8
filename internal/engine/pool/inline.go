package pool

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/optimize/internal/engine/future"
)

// Inline runs every task in-band on the submitting goroutine with a single
// executor. It backs a concurrency of zero.
type Inline struct {
	factory ports.ExecutorFactory

	mu     sync.Mutex
	exec   ports.Executor
	closed bool
}

// NewInline creates an in-band submitter.
func NewInline(factory ports.ExecutorFactory) *Inline {
	return &Inline{factory: factory}
}

// Submit runs task before returning; the future is already resolved.
func (in *Inline) Submit(ctx context.Context, task *domain.Task) *future.Future[*domain.Result] {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return future.Resolved[*domain.Result](nil, executionFailure(task, domain.ErrPoolClosed))
	}

	if err := ctx.Err(); err != nil {
		return future.Resolved[*domain.Result](nil, err)
	}

	if in.exec == nil {
		exec, err := in.factory.NewExecutor(context.WithoutCancel(ctx))
		if err != nil {
			return future.Resolved[*domain.Result](nil,
				executionFailure(task, errors.Join(domain.ErrExecutorStartFailed, err)))
		}
		in.exec = exec
	}

	res, err := in.exec.Execute(ctx, task)
	if err != nil {
		_ = in.exec.Close()
		in.exec = nil
		return future.Resolved[*domain.Result](nil, executionFailure(task, err))
	}
	return future.Resolved(res, nil)
}

// Close releases the executor.
func (in *Inline) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.closed = true
	if in.exec == nil {
		return nil
	}
	err := closeAll([]ports.Executor{in.exec})
	in.exec = nil
	return err
}
