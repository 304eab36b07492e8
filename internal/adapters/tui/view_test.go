//nolint:testpackage // Test needs access to unexported fields
package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModel_View(t *testing.T) {
	m := NewModel(nil)
	m.vertices = []VertexState{
		{ID: "1", Name: "optimize main.js", Status: statusCompleted},
		{ID: "2", Name: "optimize vendor.js", Status: statusRunning},
		{ID: "3", Name: "optimize broken.js", Status: statusFailed, Error: "transform failed"},
		{ID: "4", Name: "bundle polyfills.legacy.js", Status: statusCached},
	}

	output := m.View()

	assert.Contains(t, output, "OPTIMIZE")
	assert.Contains(t, output, "3/4")
	for _, v := range m.vertices {
		assert.Contains(t, output, v.Name)
	}
	assert.Contains(t, output, "✓")
	assert.Contains(t, output, "✗")
	assert.Contains(t, output, "⚡")
	assert.Contains(t, output, "transform failed")
}

func TestModel_View_DropsOldestRows(t *testing.T) {
	m := NewModel(nil)
	m.height = 4
	for i := range 6 {
		m.vertices = append(m.vertices, VertexState{
			ID:     fmt.Sprint(i),
			Name:   fmt.Sprintf("optimize chunk-%d.js", i),
			Status: statusCompleted,
		})
	}

	output := m.View()

	assert.NotContains(t, output, "chunk-2.js")
	assert.Contains(t, output, "chunk-3.js")
	assert.Contains(t, output, "chunk-5.js")
	assert.Len(t, strings.Split(strings.TrimSpace(output), "\n"), 4)
}
