package kadcore

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-kadcore/config"
	"github.com/dep2p/go-kadcore/internal/core/eventbus"
	"github.com/dep2p/go-kadcore/internal/core/storage"
	"github.com/dep2p/go-kadcore/internal/discovery/dht"
	"github.com/dep2p/go-kadcore/pkg/lib/log"
)

var fxLogger = log.Logger("kadcore/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置注入
//  2. Storage: 共享存储引擎
//  3. EventBus: 成员事件
//  4. DHT: Network → LookupEngine → StoreRouter
//
// 停止时按相反顺序关闭：网络、事件总线、存储引擎。
func buildFxApp(o *options, c *Cluster) (*fx.App, error) {
	if err := config.ValidateAll(o.config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(o.config),
		storage.Module(),
		eventbus.Module(),
		dht.Module,
	}

	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	reg := o.registerer
	if reg == nil && o.config.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		c.gatherer = registry
		reg = registry
	}
	if reg != nil {
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	fxLogger.Debug("构建 Fx 应用",
		"storage", o.config.Storage.Engine,
		"bucketSize", o.config.DHT.BucketSize,
		"metrics", reg != nil,
	)

	modules = append(modules,
		fx.Populate(&c.network, &c.lookup, &c.router, &c.metrics, &c.bus),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...), nil
}
