package executor

import (
	"context"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
)

// InProcess runs the transformer on the calling goroutine.
type InProcess struct {
	transformer ports.Transformer
}

// Execute implements ports.Executor.
func (e *InProcess) Execute(ctx context.Context, task *domain.Task) (*domain.Result, error) {
	return e.transformer.Transform(ctx, task)
}

// Close implements ports.Executor.
func (e *InProcess) Close() error {
	return nil
}

// InProcessFactory hands out in-process executors sharing one transformer.
type InProcessFactory struct {
	transformer ports.Transformer
}

// NewInProcessFactory creates a factory for transformer.
func NewInProcessFactory(transformer ports.Transformer) *InProcessFactory {
	return &InProcessFactory{transformer: transformer}
}

// NewExecutor implements ports.ExecutorFactory.
func (f *InProcessFactory) NewExecutor(_ context.Context) (ports.Executor, error) {
	return &InProcess{transformer: f.transformer}, nil
}
