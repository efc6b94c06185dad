package dht

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-kadcore/config"
	"github.com/dep2p/go-kadcore/internal/core/eventbus"
	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
)

// Module DHT fx 模块
//
// 提供:
//   - *Network: 模拟网络（成员表与 RPC 分发）
//   - *LookupEngine: 迭代查询引擎
//   - *StoreRouter: 存储路由
//   - *Metrics: 指标
//
// 生命周期:
//   - OnStop: 关闭网络
//
// 注入 *eventbus.Bus 时发布成员事件。
var Module = fx.Module("discovery_dht",
	fx.Provide(NewFromParams),
	fx.Invoke(registerDHTLifecycle),
)

// Params DHT 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Engine     engine.Engine
	Clock      clock.Clock           `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Bus        *eventbus.Bus         `optional:"true"`
}

// Result DHT 模块导出结果
type Result struct {
	fx.Out

	Network *Network
	Lookup  *LookupEngine
	Router  *StoreRouter
	Metrics *Metrics
}

// NewFromParams 从 Fx 参数创建 DHT 组件
func NewFromParams(p Params) (Result, error) {
	cfg, err := ConfigFromUnified(p.UnifiedCfg)
	if err != nil {
		return Result{}, err
	}

	metrics := NewMetrics(p.Registerer)

	opts := []NetworkOption{WithEngine(p.Engine), WithMetrics(metrics)}
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}
	if p.Bus != nil {
		opts = append(opts, WithEventBus(p.Bus))
	}
	network, err := NewNetwork(cfg, opts...)
	if err != nil {
		return Result{}, err
	}

	lookup := NewLookupEngine(cfg, network, metrics)
	return Result{
		Network: network,
		Lookup:  lookup,
		Router:  NewStoreRouter(cfg, lookup, network, metrics),
		Metrics: metrics,
	}, nil
}

// ConfigFromUnified 从统一配置创建 DHT 配置
func ConfigFromUnified(cfg *config.Config) (*Config, error) {
	if cfg == nil {
		return DefaultConfig(), nil
	}

	policy, err := ParseStorePolicy(cfg.DHT.StorePolicy)
	if err != nil {
		return nil, err
	}

	out := &Config{
		BucketSize:         cfg.DHT.BucketSize,
		Alpha:              cfg.DHT.Alpha,
		MaxSteps:           cfg.DHT.MaxSteps,
		StorePolicy:        policy,
		LearnFromResponses: cfg.DHT.LearnFromResponses,
		LookupTimeout:      cfg.DHT.LookupTimeout.Duration(),
		EnableWireCodec:    cfg.Wire.EnableCodec,
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// registerDHTLifecycle 注册生命周期钩子
func registerDHTLifecycle(lc fx.Lifecycle, n *Network) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			logger.Debug("关闭 DHT 网络", "members", n.Len())
			return n.Close()
		},
	})
}
