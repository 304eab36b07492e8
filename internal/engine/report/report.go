// Package report renders the verbose summary of an optimization pass.
package report

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	prefix      = "[optimize]"
	depthIndent = "      "
	maxReasons  = 3
)

// Write prints the summary of r to w: total time, the step timings and, when a
// shared bundle was produced, its compressed size and the shims grouped by the
// outputs that required them.
func Write(w io.Writer, r *domain.Report, bundleName string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Completed in %dms.", prefix, r.Duration.Milliseconds())
	for _, t := range sortedTimings(r.Timings) {
		ms := "- "
		if d := t.Duration.Milliseconds(); d > 0 {
			ms = fmt.Sprint(d)
		}
		fmt.Fprintf(&b, "\n  %s%6sms: %s", strings.Repeat(depthIndent, max(t.Depth, 0)), ms, t.Name)
	}
	b.WriteString("\n")

	if r.Bundle == nil {
		b.WriteString("No polyfills required.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	size, err := GzipSize(r.Bundle.Code)
	if err != nil {
		return err
	}
	fmt.Fprintf(&b, "%s is %s and bundles %d polyfills:", bundleName, formatKB(size), len(r.Shims))
	writeGroups(&b, r.Shims, r.Reasons)
	b.WriteString("\n")

	_, err = io.WriteString(w, b.String())
	return err
}

func sortedTimings(ts []domain.Timing) []domain.Timing {
	out := slices.Clone(ts)
	slices.SortStableFunc(out, func(a, b domain.Timing) int {
		return a.Start.Compare(b.Start)
	})
	return out
}

type shimGroup struct {
	reasons []string
	shims   []string
}

// writeGroups lists shims under the set of outputs that required them. Groups are
// ordered by their reason list; the last line of each group gets a closing branch.
func writeGroups(b *strings.Builder, shims []string, reasons map[string][]string) {
	type entry struct {
		id  string
		key string
	}
	entries := make([]entry, 0, len(shims))
	for _, id := range shims {
		entries = append(entries, entry{id: id, key: strings.Join(reasons[id], "\n")})
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return strings.Compare(a.key, b.key)
	})

	var groups []*shimGroup
	lastKey := ""
	for i, e := range entries {
		if i == 0 || e.key != lastKey {
			groups = append(groups, &shimGroup{reasons: reasons[e.id]})
			lastKey = e.key
		}
		g := groups[len(groups)-1]
		g.shims = append(g.shims, e.id)
	}

	for _, g := range groups {
		fmt.Fprintf(b, "\n└ Used by %s:", JoinReasons(g.reasons))
		for i, id := range g.shims {
			branch := "├"
			if i == len(g.shims)-1 {
				branch = "└"
			}
			fmt.Fprintf(b, "\n  %s %s", branch, id)
		}
	}
}

// JoinReasons renders a list of output names for humans: "a", "a and b",
// "a, b and c", or "a, b and N others" beyond three names.
func JoinReasons(names []string) string {
	switch {
	case len(names) == 0:
		return ""
	case len(names) == 1:
		return names[0]
	case len(names) > maxReasons:
		return fmt.Sprintf("%s, %s and %d others", names[0], names[1], len(names)-2)
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

// GzipSize returns the compressed size of data at the default level.
func GzipSize(data []byte) (int, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return 0, zerr.Wrap(err, "failed to compress bundle")
	}
	if err := zw.Close(); err != nil {
		return 0, zerr.Wrap(err, "failed to compress bundle")
	}
	return buf.Len(), nil
}

func formatKB(size int) string {
	return fmt.Sprintf("%.3gkB", float64(size)/1000)
}
