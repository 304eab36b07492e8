package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/optimize/internal/adapters/cas"                //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/watcher"            //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			fs.HasherNodeID,
			fs.WalkerNodeID,
			cas.NodeID,
			progrock.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	walker, err := graft.Dep[*fs.Walker](ctx)
	if err != nil {
		return nil, err
	}
	manifests, err := graft.Dep[ports.ManifestStore](ctx)
	if err != nil {
		return nil, err
	}
	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}
	newWatcher, err := graft.Dep[watcher.Factory](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, log, hasher, walker, manifests, tel, newWatcher), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}
	return NewComponents(app, log, loader, tel), nil
}
