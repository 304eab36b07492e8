package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/optimize/internal/adapters/logger"
	"go.trai.ch/optimize/internal/core/ports"
)

// NodeID is the unique identifier for the watcher factory Graft node.
const NodeID graft.ID = "adapter.watcher"

// Factory creates a fresh watcher for each watch session.
type Factory func() (*Watcher, error)

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func() (*Watcher, error) { return NewWatcher(log) }, nil
		},
	})
}
