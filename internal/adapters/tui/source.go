// Package tui renders a live view of an optimization pass from its progrock tape.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
)

// TapeSource yields the updates written to a progrock tape, in order.
type TapeSource interface {
	// Read blocks for the next update. It returns an error once the tape has ended.
	Read() (*progrock.StatusUpdate, error)
}

// MsgTapeUpdate wraps the raw update from progrock.
type MsgTapeUpdate struct {
	Update *progrock.StatusUpdate
}

// MsgTapeEnded is sent when the tape stream has ended.
type MsgTapeEnded struct{}

// WaitForTape returns a Bubble Tea command that reads the next update from the tape.
// It returns MsgTapeUpdate on success or MsgTapeEnded on EOF or error.
func WaitForTape(tape TapeSource) tea.Cmd {
	return func() tea.Msg {
		update, err := tape.Read()
		if err != nil {
			return MsgTapeEnded{}
		}
		return MsgTapeUpdate{Update: update}
	}
}
