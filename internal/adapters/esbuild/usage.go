package esbuild

import (
	"regexp"
	"slices"
)

// usage maps a source pattern to the shim module that backs it in a legacy runtime.
type usage struct {
	pattern *regexp.Regexp
	shim    string
}

// usages lists the runtime features detected in modern code. The identifiers are
// resolved against the shims root, so they follow the core-js module layout.
var usages = []usage{
	{regexp.MustCompile(`\bPromise\b`), "core-js/modules/es.promise"},
	{regexp.MustCompile(`\bPromise\.allSettled\b`), "core-js/modules/es.promise.all-settled"},
	{regexp.MustCompile(`\bPromise\.any\b`), "core-js/modules/es.promise.any"},
	{regexp.MustCompile(`\.finally\s*\(`), "core-js/modules/es.promise.finally"},
	{regexp.MustCompile(`\bSymbol\b`), "core-js/modules/es.symbol"},
	{regexp.MustCompile(`\bSymbol\.asyncIterator\b`), "core-js/modules/es.symbol.async-iterator"},
	{regexp.MustCompile(`\bnew\s+Map\b`), "core-js/modules/es.map"},
	{regexp.MustCompile(`\bnew\s+Set\b`), "core-js/modules/es.set"},
	{regexp.MustCompile(`\bnew\s+WeakMap\b`), "core-js/modules/es.weak-map"},
	{regexp.MustCompile(`\bnew\s+WeakSet\b`), "core-js/modules/es.weak-set"},
	{regexp.MustCompile(`\bArray\.from\b`), "core-js/modules/es.array.from"},
	{regexp.MustCompile(`\bArray\.of\b`), "core-js/modules/es.array.of"},
	{regexp.MustCompile(`\.includes\s*\(`), "core-js/modules/es.array.includes"},
	{regexp.MustCompile(`\.find\s*\(`), "core-js/modules/es.array.find"},
	{regexp.MustCompile(`\.findIndex\s*\(`), "core-js/modules/es.array.find-index"},
	{regexp.MustCompile(`\.flat\s*\(`), "core-js/modules/es.array.flat"},
	{regexp.MustCompile(`\.flatMap\s*\(`), "core-js/modules/es.array.flat-map"},
	{regexp.MustCompile(`\bObject\.assign\b`), "core-js/modules/es.object.assign"},
	{regexp.MustCompile(`\bObject\.entries\b`), "core-js/modules/es.object.entries"},
	{regexp.MustCompile(`\bObject\.values\b`), "core-js/modules/es.object.values"},
	{regexp.MustCompile(`\bObject\.fromEntries\b`), "core-js/modules/es.object.from-entries"},
	{regexp.MustCompile(`\.startsWith\s*\(`), "core-js/modules/es.string.starts-with"},
	{regexp.MustCompile(`\.endsWith\s*\(`), "core-js/modules/es.string.ends-with"},
	{regexp.MustCompile(`\.padStart\s*\(`), "core-js/modules/es.string.pad-start"},
	{regexp.MustCompile(`\.padEnd\s*\(`), "core-js/modules/es.string.pad-end"},
	{regexp.MustCompile(`\.trimStart\s*\(`), "core-js/modules/es.string.trim-start"},
	{regexp.MustCompile(`\.trimEnd\s*\(`), "core-js/modules/es.string.trim-end"},
	{regexp.MustCompile(`\bNumber\.isNaN\b`), "core-js/modules/es.number.is-nan"},
	{regexp.MustCompile(`\bNumber\.isInteger\b`), "core-js/modules/es.number.is-integer"},
	{regexp.MustCompile(`\bMath\.trunc\b`), "core-js/modules/es.math.trunc"},
	{regexp.MustCompile(`\bMath\.sign\b`), "core-js/modules/es.math.sign"},
	{regexp.MustCompile(`\bglobalThis\b`), "core-js/modules/es.global-this"},
	{regexp.MustCompile(`\bfetch\s*\(`), "whatwg-fetch"},
	{regexp.MustCompile(`\bnew\s+URL\b`), "core-js/modules/web.url"},
	{regexp.MustCompile(`\bnew\s+URLSearchParams\b`), "core-js/modules/web.url-search-params"},
}

// detectShims returns the shims the code needs, in table order, without duplicates.
func detectShims(code []byte) []string {
	var shims []string
	for _, u := range usages {
		if u.pattern.Match(code) && !slices.Contains(shims, u.shim) {
			shims = append(shims, u.shim)
		}
	}
	return shims
}
