package kadcore

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-kadcore/config"
)

// 预设名称
const (
	// PresetDemo K=8, α=3, 最多 8 轮
	PresetDemo = config.PresetDemo

	// PresetStandard K=20, α=3, 最多 20 轮
	PresetStandard = config.PresetStandard
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// config 统一配置，各选项直接修改它
	config *config.Config

	clock      clock.Clock
	registerer prometheus.Registerer
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{
		config: config.NewConfig(),
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置来源
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 以完整配置替换当前配置
//
// 应放在其他选项之前，否则会覆盖之前的修改。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config is nil")
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithPreset 应用预设
func WithPreset(name string) Option {
	return func(o *options) error {
		return config.ApplyPreset(o.config, name)
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              DHT 参数
// ════════════════════════════════════════════════════════════════════════════

// WithBucketSize 设置 K
func WithBucketSize(k int) Option {
	return func(o *options) error {
		if k <= 0 {
			return fmt.Errorf("%w: bucket size must be positive", ErrInvalidConfig)
		}
		o.config.DHT.BucketSize = k
		return nil
	}
}

// WithAlpha 设置每轮最多访问的候选数
func WithAlpha(alpha int) Option {
	return func(o *options) error {
		if alpha <= 0 {
			return fmt.Errorf("%w: alpha must be positive", ErrInvalidConfig)
		}
		o.config.DHT.Alpha = alpha
		return nil
	}
}

// WithMaxSteps 设置查询最大轮数
func WithMaxSteps(steps int) Option {
	return func(o *options) error {
		if steps <= 0 {
			return fmt.Errorf("%w: max steps must be positive", ErrInvalidConfig)
		}
		o.config.DHT.MaxSteps = steps
		return nil
	}
}

// WithStorePolicy 设置存储确认策略
func WithStorePolicy(p StorePolicy) Option {
	return func(o *options) error {
		o.config.DHT.StorePolicy = p.String()
		return nil
	}
}

// WithLearnFromResponses 设置发起方是否记录应答过的候选
func WithLearnFromResponses(enabled bool) Option {
	return func(o *options) error {
		o.config.DHT.LearnFromResponses = enabled
		return nil
	}
}

// WithWireCodec 设置每次 RPC 是否经过线格式编解码
func WithWireCodec(enabled bool) Option {
	return func(o *options) error {
		o.config.Wire.EnableCodec = enabled
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              基础设施
// ════════════════════════════════════════════════════════════════════════════

// WithStorageEngine 设置节点存储引擎（"memory" 或 "badger"）
//
// path 为空时 badger 以内存模式运行。
func WithStorageEngine(engine, path string) Option {
	return func(o *options) error {
		o.config.Storage.Engine = engine
		o.config.Storage.Path = path
		return nil
	}
}

// WithClock 注入时钟（测试用 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		o.clock = c
		return nil
	}
}

// WithRegisterer 注册 DHT 指标
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithMetrics 启用指标，未注入 Registerer 时使用集群自己的 Registry
func WithMetrics(enabled bool) Option {
	return func(o *options) error {
		o.config.Metrics.Enabled = enabled
		return nil
	}
}
