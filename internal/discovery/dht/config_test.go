package dht

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kadcore/config"
)

// TestDefaultConfig 测试默认配置
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8, cfg.BucketSize)
	assert.Equal(t, 3, cfg.Alpha)
	assert.Equal(t, 8, cfg.MaxSteps)
	assert.Equal(t, AckBestEffort, cfg.StorePolicy)
	assert.True(t, cfg.LearnFromResponses)
	assert.False(t, cfg.EnableWireCodec)
}

// TestConfig_Validate 测试无效配置
func TestConfig_Validate(t *testing.T) {
	bad := []*Config{
		NewConfig(WithBucketSize(0)),
		NewConfig(WithAlpha(-1)),
		NewConfig(WithMaxSteps(0)),
		NewConfig(WithStorePolicy(StorePolicy(9))),
		{BucketSize: 1, Alpha: 1, MaxSteps: 1, LookupTimeout: -time.Second},
	}
	for i, cfg := range bad {
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "case %d", i)
	}
}

// TestParseStorePolicy 测试策略解析
func TestParseStorePolicy(t *testing.T) {
	for _, p := range []StorePolicy{AckBestEffort, AckAny, AckAll} {
		got, err := ParseStorePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParseStorePolicy("")
	require.NoError(t, err)
	assert.Equal(t, AckBestEffort, got)

	_, err = ParseStorePolicy("quorum")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestConfigFromUnified 测试统一配置转换
func TestConfigFromUnified(t *testing.T) {
	cfg, err := ConfigFromUnified(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	unified := config.NewConfig()
	require.NoError(t, config.ApplyPreset(unified, config.PresetStandard))
	unified.DHT.StorePolicy = config.StorePolicyAll
	unified.Wire.EnableCodec = true

	cfg, err = ConfigFromUnified(unified)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.BucketSize)
	assert.Equal(t, 20, cfg.MaxSteps)
	assert.Equal(t, AckAll, cfg.StorePolicy)
	assert.True(t, cfg.EnableWireCodec)
	assert.Equal(t, unified.DHT.LookupTimeout.Duration(), cfg.LookupTimeout)

	unified.DHT.StorePolicy = "quorum"
	_, err = ConfigFromUnified(unified)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
