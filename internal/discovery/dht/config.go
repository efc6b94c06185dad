package dht

import (
	"fmt"
	"time"
)

// ============================================================================
//                              默认参数
// ============================================================================

const (
	// DefaultBucketSize PeerList 容量与查询结果上限（K）
	DefaultBucketSize = 8

	// DefaultAlpha 每轮最多访问的候选数（α）
	DefaultAlpha = 3

	// DefaultMaxSteps 迭代查询最多推进的轮数
	DefaultMaxSteps = 8
)

// ============================================================================
//                              存储确认策略
// ============================================================================

// StorePolicy 存储的确认策略
type StorePolicy int

const (
	// AckBestEffort 逐个尝试，忽略单点失败
	AckBestEffort StorePolicy = iota
	// AckAny 至少一个目标确认
	AckAny
	// AckAll 所有目标确认
	AckAll
)

// String 返回策略名
func (p StorePolicy) String() string {
	switch p {
	case AckBestEffort:
		return "best_effort"
	case AckAny:
		return "any"
	case AckAll:
		return "all"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseStorePolicy 从名称解析策略
func ParseStorePolicy(s string) (StorePolicy, error) {
	switch s {
	case "best_effort", "":
		return AckBestEffort, nil
	case "any":
		return AckAny, nil
	case "all":
		return AckAll, nil
	default:
		return AckBestEffort, fmt.Errorf("%w: unknown store policy %q", ErrInvalidConfig, s)
	}
}

// ============================================================================
//                              Config
// ============================================================================

// Config DHT 配置
type Config struct {
	// BucketSize PeerList 容量，同时是查询结果上限（K）
	BucketSize int

	// Alpha 每轮最多访问的候选数
	Alpha int

	// MaxSteps 迭代查询最多推进的轮数
	MaxSteps int

	// StorePolicy 存储确认策略
	StorePolicy StorePolicy

	// LearnFromResponses 发起方是否记录应答过的候选
	//
	// 关闭时只有被访问方记录调用方，新加入节点的 PeerList
	// 只能通过 Bootstrap 获得第一个联系人。
	LearnFromResponses bool

	// LookupTimeout 单次查询超时，0 表示不限
	LookupTimeout time.Duration

	// EnableWireCodec 每次 RPC 都经过线格式编码再解码
	EnableWireCodec bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		BucketSize:         DefaultBucketSize,
		Alpha:              DefaultAlpha,
		MaxSteps:           DefaultMaxSteps,
		StorePolicy:        AckBestEffort,
		LearnFromResponses: true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.BucketSize <= 0 {
		return fmt.Errorf("%w: bucket size must be positive", ErrInvalidConfig)
	}
	if c.Alpha <= 0 {
		return fmt.Errorf("%w: alpha must be positive", ErrInvalidConfig)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive", ErrInvalidConfig)
	}
	if c.LookupTimeout < 0 {
		return fmt.Errorf("%w: lookup timeout cannot be negative", ErrInvalidConfig)
	}
	if c.StorePolicy < AckBestEffort || c.StorePolicy > AckAll {
		return fmt.Errorf("%w: unknown store policy %d", ErrInvalidConfig, int(c.StorePolicy))
	}
	return nil
}

// ConfigOption 配置选项
type ConfigOption func(*Config)

// WithBucketSize 设置 K
func WithBucketSize(k int) ConfigOption {
	return func(c *Config) {
		c.BucketSize = k
	}
}

// WithAlpha 设置 α
func WithAlpha(alpha int) ConfigOption {
	return func(c *Config) {
		c.Alpha = alpha
	}
}

// WithMaxSteps 设置最大轮数
func WithMaxSteps(steps int) ConfigOption {
	return func(c *Config) {
		c.MaxSteps = steps
	}
}

// WithStorePolicy 设置存储确认策略
func WithStorePolicy(p StorePolicy) ConfigOption {
	return func(c *Config) {
		c.StorePolicy = p
	}
}

// WithLearnFromResponses 设置发起方是否记录应答方
func WithLearnFromResponses(enabled bool) ConfigOption {
	return func(c *Config) {
		c.LearnFromResponses = enabled
	}
}

// WithWireCodec 启用线格式编解码
func WithWireCodec(enabled bool) ConfigOption {
	return func(c *Config) {
		c.EnableWireCodec = enabled
	}
}

// NewConfig 在默认配置上应用选项
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
