package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/optimize/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/adapters/tui"                //nolint:depguard // Wired in app layer
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/zerr"
)

// withProgress records run on a fresh tape and renders it live until the pass ends.
func (a *App) withProgress(
	ctx context.Context,
	run func(ports.Telemetry) (*domain.Report, error),
) (*domain.Report, error) {
	stream := progrock.NewStream()
	recorder := progrock.NewRecorder(stream)

	opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(a.progress)}, a.teaOptions...)
	view := tui.NewRenderer(tui.NewModel(stream), opts...)
	view.Start()

	rep, err := run(recorder)

	// Closing the tape ends the view once it has drawn the last update.
	_ = recorder.Close()
	if viewErr := view.Wait(); viewErr != nil && ctx.Err() == nil {
		a.logger.Warn(zerr.Wrap(viewErr, "progress view failed").Error())
	}
	return rep, err
}
