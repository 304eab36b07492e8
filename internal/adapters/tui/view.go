package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the steps seen so far, newest last. When the terminal is too
// short, the oldest steps are dropped.
func (m *Model) View() string {
	var s strings.Builder

	done, total := m.counts()
	s.WriteString(titleStyle.Render("OPTIMIZE") + fmt.Sprintf(" %d/%d\n", done, total))

	start := 0
	if rows := m.height - 1; rows > 0 && len(m.vertices) > rows {
		start = len(m.vertices) - rows
	}

	for _, v := range m.vertices[start:] {
		var icon string
		var style lipgloss.Style
		switch v.Status {
		case statusRunning:
			icon = m.spinner.View()
			style = runningStyle
		case statusCompleted:
			icon = "✓"
			style = completedStyle
		case statusCached:
			icon = "⚡"
			style = cachedStyle
		default:
			icon = "✗"
			style = failedStyle
		}

		fmt.Fprintf(&s, "%s %s\n", style.Render(icon), v.Name)
		if v.Status == statusFailed && v.Error != "" {
			s.WriteString(detailStyle.Render(v.Error) + "\n")
		}
	}

	return s.String()
}
