package domain

import (
	"path"
	"slices"
	"strings"
)

const legacyMarker = ".legacy"

var scriptExtensions = []string{".js", ".mjs"}

// LegacyFilename derives the output name of an asset's legacy variant by inserting
// ".legacy" before a trailing .js/.mjs extension. Other names get ".legacy.js" appended.
func LegacyFilename(name string) string {
	for _, ext := range scriptExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext) + legacyMarker + ext
		}
	}
	return name + legacyMarker + ".js"
}

// IsLegacyFilename reports whether name looks like the output of LegacyFilename.
func IsLegacyFilename(name string) bool {
	base := path.Base(name)
	for _, ext := range scriptExtensions {
		if strings.HasSuffix(base, legacyMarker+ext) {
			return true
		}
	}
	return false
}

// HasExtension reports whether name ends in one of the allowed extensions.
func HasExtension(name string, extensions []string) bool {
	return slices.ContainsFunc(extensions, func(ext string) bool {
		return ext != "" && strings.HasSuffix(name, ext)
	})
}
