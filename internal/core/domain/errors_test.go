package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestAnnotate_KeepsSentinel(t *testing.T) {
	err := domain.Annotate(domain.ErrShimNotFound, "shim", "whatwg-fetch", "root", "/shims")
	require.ErrorIs(t, err, domain.ErrShimNotFound)
	assert.Equal(t, "shim not found", err.Error())

	var z *zerr.Error
	require.ErrorAs(t, err, &z)
	assert.Equal(t, "whatwg-fetch", z.Metadata()["shim"])
	assert.Equal(t, "/shims", z.Metadata()["root"])
}

func TestAnnotate_SurvivesClassification(t *testing.T) {
	cause := domain.Annotate(domain.ErrShimNotFound, "shim", "core-js/modules/es.map")
	err := zerr.Wrap(zerr.With(errors.Join(domain.ErrBundleFailure, cause), "shims", "core-js/modules/es.map"),
		"bundle")

	assert.ErrorIs(t, err, domain.ErrBundleFailure)
	assert.ErrorIs(t, err, domain.ErrShimNotFound)
}

func TestAnnotate_Nil(t *testing.T) {
	assert.NoError(t, domain.Annotate(nil, "k", "v"))
}
