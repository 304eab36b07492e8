package ports_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/optimize/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var (
	_ ports.AssetStore      = (*mocks.MockAssetStore)(nil)
	_ ports.ManifestStore   = (*mocks.MockManifestStore)(nil)
	_ ports.Executor        = (*mocks.MockExecutor)(nil)
	_ ports.ExecutorFactory = (*mocks.MockExecutorFactory)(nil)
	_ ports.Transformer     = (*mocks.MockTransformer)(nil)
	_ ports.ShimResolver    = (*mocks.MockShimResolver)(nil)
	_ ports.ShimBundler     = (*mocks.MockShimBundler)(nil)
	_ ports.Hasher          = (*mocks.MockHasher)(nil)
	_ ports.Logger          = (*mocks.MockLogger)(nil)
	_ ports.ConfigLoader    = (*mocks.MockConfigLoader)(nil)
	_ ports.Telemetry       = (*mocks.MockTelemetry)(nil)
	_ ports.Vertex          = (*mocks.MockVertex)(nil)
)

func TestMockManifestStore_Put(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockManifestStore(ctrl)

	m := domain.Manifest{
		Fingerprint: "abc",
		Generated:   []string{"main.legacy.js", "polyfills.legacy.js"},
		Timestamp:   time.Unix(0, 0),
	}
	store.EXPECT().Put("/out", m).Return(nil)

	var s ports.ManifestStore = store
	require.NoError(t, s.Put("/out", m))
}
