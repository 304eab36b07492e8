package domain

import (
	"slices"
	"strings"
)

const shimKeySeparator = "\n"

// CanonicalShims returns shims de-duplicated and sorted, leaving the input untouched.
func CanonicalShims(shims []string) []string {
	sorted := slices.Clone(shims)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

// ShimSetKey returns the cache key of a shim set. Discovery order never changes the key.
func ShimSetKey(shims []string) string {
	return strings.Join(CanonicalShims(shims), shimKeySeparator)
}
