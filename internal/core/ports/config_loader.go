package ports

import "go.trai.ch/optimize/internal/core/domain"

// ConfigLoader defines the interface for loading the optimizer configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given working directory. A missing file
	// yields domain.DefaultOptions.
	Load(cwd string) (domain.Options, error)
}
