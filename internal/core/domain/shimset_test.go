package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/optimize/internal/core/domain"
)

func TestShimSetKey_OrderIndependent(t *testing.T) {
	a := domain.ShimSetKey([]string{"es.promise", "es.array.includes"})
	b := domain.ShimSetKey([]string{"es.array.includes", "es.promise"})
	assert.Equal(t, a, b)
}

func TestShimSetKey_Deduplicates(t *testing.T) {
	assert.Equal(t,
		domain.ShimSetKey([]string{"a", "b"}),
		domain.ShimSetKey([]string{"b", "a", "b"}),
	)
}

func TestShimSetKey_DistinctSets(t *testing.T) {
	assert.NotEqual(t,
		domain.ShimSetKey([]string{"a", "b"}),
		domain.ShimSetKey([]string{"a", "b", "c"}),
	)
}

func TestShimSetKey_DoesNotMutateInput(t *testing.T) {
	in := []string{"c", "a", "b"}
	_ = domain.ShimSetKey(in)
	assert.Equal(t, []string{"c", "a", "b"}, in)
}

func TestCanonicalShims(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, domain.CanonicalShims([]string{"c", "a", "b", "a"}))
	assert.Empty(t, domain.CanonicalShims(nil))
}
