package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusCached    = "cached"
	statusFailed    = "failed"
)

// VertexState is the displayed state of one recorded step.
type VertexState struct {
	ID     string
	Name   string
	Status string
	Error  string
}

// Model is the Bubble Tea model following one pass on its tape.
type Model struct {
	tape     TapeSource
	vertices []VertexState
	index    map[string]int
	height   int
	spinner  spinner.Model
}

// NewModel creates a model reading updates from tape.
func NewModel(tape TapeSource) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle

	return &Model{
		tape:    tape,
		index:   make(map[string]int),
		spinner: s,
	}
}

// Init starts reading from the tape.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForTape(m.tape),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgTapeUpdate:
		m.apply(msg.Update)
		return m, WaitForTape(m.tape)
	case MsgTapeEnded:
		return m, tea.Quit
	}
	return m, nil
}

// apply merges the vertices of an update. Later updates of a vertex replace its state.
func (m *Model) apply(update *progrock.StatusUpdate) {
	if update == nil {
		return
	}
	for _, v := range update.Vertexes {
		i, ok := m.index[v.Id]
		if !ok {
			i = len(m.vertices)
			m.index[v.Id] = i
			m.vertices = append(m.vertices, VertexState{ID: v.Id, Name: v.Name})
		}
		m.vertices[i].Status = vertexStatus(v)
		if v.Error != nil {
			m.vertices[i].Error = *v.Error
		}
	}
}

func vertexStatus(v *progrock.Vertex) string {
	switch {
	case v.Completed == nil:
		return statusRunning
	case v.Error != nil:
		return statusFailed
	case v.Cached:
		return statusCached
	default:
		return statusCompleted
	}
}

// counts returns how many vertices finished and how many are known.
func (m *Model) counts() (done, total int) {
	for _, v := range m.vertices {
		if v.Status != statusRunning {
			done++
		}
	}
	return done, len(m.vertices)
}
