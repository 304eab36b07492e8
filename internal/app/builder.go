package app

import (
	"go.trai.ch/optimize/internal/core/ports"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App          *App
	Logger       ports.Logger
	ConfigLoader ports.ConfigLoader
	Telemetry    ports.Telemetry
}

// NewComponents creates a new Components struct from dependencies.
func NewComponents(app *App, log ports.Logger, loader ports.ConfigLoader, tel ports.Telemetry) *Components {
	return &Components{
		App:          app,
		Logger:       log,
		ConfigLoader: loader,
		Telemetry:    tel,
	}
}
