package domain

import "time"

// Asset is one script produced by the upstream bundler. Several output names may
// point at the same *Asset; the pointer is the asset's identity for one build pass.
type Asset struct {
	Source []byte
	Map    []byte
}

// File binds an output name to the asset stored under it.
type File struct {
	Name  string
	Asset *Asset
}

// Task is the immutable unit of work handed to an executor.
type Task struct {
	Name    string      `json:"name"`
	Source  []byte      `json:"source"`
	Map     []byte      `json:"map,omitempty"`
	Options TaskOptions `json:"options"`
}

// TaskOptions is the subset of Options a transformer needs.
type TaskOptions struct {
	SourceMap bool `json:"sourceMap,omitzero"`
	Minify    bool `json:"minify,omitzero"`
	Downlevel bool `json:"downlevel,omitzero"`
	Timings   bool `json:"timings,omitzero"`
}

// Output is one generated variant of an asset.
type Output struct {
	Code []byte `json:"code"`
	Map  []byte `json:"map,omitempty"`
}

// Timing is a single measured step. Depth is the indentation level used by the summary.
type Timing struct {
	Name     string        `json:"name"`
	Start    time.Time     `json:"start,omitzero"`
	Duration time.Duration `json:"duration"`
	Depth    int           `json:"depth,omitzero"`
}

// Result is what an executor returns for a Task.
type Result struct {
	Modern  Output   `json:"modern"`
	Legacy  *Output  `json:"legacy,omitempty"`
	Shims   []string `json:"shims,omitempty"`
	Timings []Timing `json:"timings,omitempty"`
}

// Artifact is the generated shared polyfill bundle.
type Artifact struct {
	Code  []byte
	Map   []byte
	Shims []string
}
