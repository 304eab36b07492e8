// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/optimize/internal/adapters/cas"
	_ "go.trai.ch/optimize/internal/adapters/config"
	_ "go.trai.ch/optimize/internal/adapters/fs"
	_ "go.trai.ch/optimize/internal/adapters/logger"
	_ "go.trai.ch/optimize/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/optimize/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/optimize/internal/app"
)
