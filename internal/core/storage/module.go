package storage

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-kadcore/config"
	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
	"github.com/dep2p/go-kadcore/internal/core/storage/engine/badger"
	"github.com/dep2p/go-kadcore/internal/core/storage/engine/memory"
	"github.com/dep2p/go-kadcore/pkg/lib/log"
)

var logger = log.Logger("core/storage")

// Params Storage 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Storage 模块提供的结果
type Result struct {
	fx.Out

	Engine engine.Engine
	Config Config
}

// Module 返回 Storage Fx 模块
//
// 提供:
//   - engine.Engine: 存储引擎实例
//   - Config: 存储配置
//
// 生命周期:
//   - OnStop: 关闭引擎
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideStorage),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideStorage 提供存储引擎和配置
func ProvideStorage(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	eng, err := NewEngine(cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{Engine: eng, Config: cfg}, nil
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, eng engine.Engine) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if err := eng.Close(); err != nil {
				logger.Warn("存储引擎关闭失败", "error", err)
				return err
			}
			logger.Debug("存储引擎已关闭")
			return nil
		},
	})
}

// NewEngine 根据配置创建存储引擎
func NewEngine(cfg Config) (engine.Engine, error) {
	logger.Debug("创建存储引擎", "kind", cfg.Kind, "path", cfg.Path)
	switch cfg.Kind {
	case engine.KindMemory:
		return memory.New(), nil
	case engine.KindBadger:
		eng, err := badger.New(cfg.Path)
		if err != nil {
			logger.Error("创建存储引擎失败", "error", err)
			return nil, err
		}
		return eng, nil
	default:
		return nil, engine.ErrInvalidConfig
	}
}
