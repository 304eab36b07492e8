package domain

import "time"

// Manifest records what the last optimization pass wrote to an output directory.
type Manifest struct {
	Fingerprint string    `json:"fingerprint,omitzero"`
	Generated   []string  `json:"generated,omitzero"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}

// Report describes a completed optimization pass.
type Report struct {
	Files        []FileOutcome
	Shims        []string
	Reasons      map[string][]string
	Bundle       *Artifact
	BundleCached bool
	Timings      []Timing
	Duration     time.Duration
}

// FileOutcome is what happened to one candidate file.
type FileOutcome struct {
	Name       string
	LegacyName string
	HasLegacy  bool
	Shims      []string
}

// Generated lists every output name written by the pass other than modern outputs.
func (r *Report) Generated(bundleName string) []string {
	var names []string
	for _, f := range r.Files {
		if f.HasLegacy {
			names = append(names, f.LegacyName)
		}
	}
	if r.Bundle != nil {
		names = append(names, bundleName)
	}
	return names
}
