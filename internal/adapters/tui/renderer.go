package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Renderer runs a Model as a Bubble Tea program.
type Renderer struct {
	program *tea.Program
	errCh   chan error
}

// NewRenderer creates a renderer for model.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		errCh:   make(chan error, 1),
	}
}

// Start launches the program in a background goroutine.
func (r *Renderer) Start() {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
}

// Stop signals the program to quit.
func (r *Renderer) Stop() {
	r.program.Quit()
}

// Wait blocks until the program has terminated. The program ends by itself
// once the tape ends.
func (r *Renderer) Wait() error {
	return <-r.errCh
}
