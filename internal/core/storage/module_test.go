package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-kadcore/config"
	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
)

// TestConfigFromUnified 测试从统一配置转换
func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, engine.KindMemory, ConfigFromUnified(nil).Kind)

	cfg := config.NewConfig()
	cfg.Storage.Engine = config.StorageEngineBadger
	cfg.Storage.Path = "/data/kad"
	got := ConfigFromUnified(cfg)
	assert.Equal(t, engine.KindBadger, got.Kind)
	assert.Equal(t, "/data/kad", got.Path)

	assert.ErrorIs(t, Config{Kind: "rocks"}.Validate(), ErrInvalidConfig)
}

// TestNewEngine 测试两种引擎都可创建
func TestNewEngine(t *testing.T) {
	for _, kind := range []engine.Kind{engine.KindMemory, engine.KindBadger} {
		eng, err := NewEngine(Config{Kind: kind})
		require.NoError(t, err, kind)
		require.NoError(t, eng.Put([]byte("k"), []byte("v")))
		require.NoError(t, eng.Close())
	}

	_, err := NewEngine(Config{Kind: "rocks"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestModule_Lifecycle 测试 fx 模块在停止时关闭引擎
func TestModule_Lifecycle(t *testing.T) {
	var eng engine.Engine
	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		Module(),
		fx.Populate(&eng),
	)
	app.RequireStart()
	require.NotNil(t, eng)
	require.NoError(t, eng.Put([]byte("k"), []byte("v")))

	app.RequireStop()
	_, err := eng.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, eng.Close(), ErrClosed)
}
