package fs

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// fingerprintSalt prefixes every configuration fingerprint.
const fingerprintSalt = "optimize"

// Hasher provides xxhash-based content and configuration digests.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ContentHash returns the XXHash of data as 16 hex digits.
func (h *Hasher) ContentHash(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Fingerprint hashes every option that changes generated output, so a host can
// fold it into its own content hashes. Options that only affect scheduling or
// diagnostics are left out.
func (h *Hasher) Fingerprint(opts domain.Options) (string, error) {
	hasher := xxhash.New()

	writeField(hasher, fingerprintSalt)
	writeField(hasher, "sourceMap="+strconv.FormatBool(opts.SourceMap))
	writeField(hasher, "minify="+strconv.FormatBool(opts.Minify))
	writeField(hasher, "downlevel="+strconv.FormatBool(opts.Downlevel))
	writeField(hasher, "polyfillsFilename="+opts.PolyfillsFilename)
	_, _ = hasher.Write([]byte{0}) // Section separator

	for _, ext := range opts.Extensions {
		writeField(hasher, ext)
	}
	_, _ = hasher.Write([]byte{0})

	writeField(hasher, "transformer="+string(opts.Transformer.Kind))
	for _, arg := range opts.Transformer.Command {
		writeField(hasher, arg)
	}
	_, _ = hasher.Write([]byte{0})

	if opts.Executor.Kind == domain.ExecutorWasm {
		writeField(hasher, "module="+opts.Executor.Module)
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func writeField(hasher *xxhash.Digest, s string) {
	_, _ = hasher.WriteString(s)
	_, _ = hasher.Write([]byte{0}) // Separator
}

