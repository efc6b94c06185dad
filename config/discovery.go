package config

import (
	"fmt"
	"time"
)

// 存储确认策略名称
const (
	StorePolicyBestEffort = "best_effort"
	StorePolicyAny        = "any"
	StorePolicyAll        = "all"
)

// DHTConfig 路由表与迭代查询配置
type DHTConfig struct {
	// BucketSize 每个节点 PeerList 容量，同时是查询结果上限（K）
	BucketSize int `json:"bucket_size"`

	// Alpha 每轮最多访问的候选数
	Alpha int `json:"alpha"`

	// MaxSteps 迭代查询最多推进的轮数
	MaxSteps int `json:"max_steps"`

	// StorePolicy 存储确认策略：best_effort / any / all
	StorePolicy string `json:"store_policy"`

	// LearnFromResponses 发起方是否记录应答过的候选
	LearnFromResponses bool `json:"learn_from_responses"`

	// LookupTimeout 单次查询超时，0 表示不限
	LookupTimeout Duration `json:"lookup_timeout,omitempty"`
}

// DefaultDHTConfig 返回默认的 DHT 配置（demo 规模）
func DefaultDHTConfig() DHTConfig {
	return DHTConfig{
		BucketSize:         8,
		Alpha:              3,
		MaxSteps:           8,
		StorePolicy:        StorePolicyBestEffort,
		LearnFromResponses: true,
		LookupTimeout:      Duration(5 * time.Second),
	}
}

// Validate 验证 DHT 配置
func (c *DHTConfig) Validate() error {
	if c.BucketSize <= 0 {
		return fmt.Errorf("dht: bucket_size must be positive")
	}
	if c.Alpha <= 0 {
		return fmt.Errorf("dht: alpha must be positive")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("dht: max_steps must be positive")
	}
	if c.LookupTimeout < 0 {
		return fmt.Errorf("dht: lookup_timeout cannot be negative")
	}
	switch c.StorePolicy {
	case StorePolicyBestEffort, StorePolicyAny, StorePolicyAll:
	default:
		return fmt.Errorf("dht: unknown store_policy %q", c.StorePolicy)
	}
	return nil
}
