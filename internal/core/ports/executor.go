// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/optimize/internal/core/domain"
)

// Executor runs one task at a time and returns its result.
//
// An executor may keep warm caches between tasks but no other state. The pool
// guarantees it is never handed two tasks concurrently.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute transforms the task and returns exactly one result.
	Execute(ctx context.Context, task *domain.Task) (*domain.Result, error)
	// Close releases the executor. It is called once, when the executor is retired.
	Close() error
}

// ExecutorFactory creates executors on demand for the pool.
type ExecutorFactory interface {
	// NewExecutor starts a fresh executor.
	NewExecutor(ctx context.Context) (Executor, error)
}

// Transformer is the per-file transformation collaborator.
type Transformer interface {
	// Transform produces the modern and optional legacy variants of a task's source.
	Transform(ctx context.Context, task *domain.Task) (*domain.Result, error)
}
