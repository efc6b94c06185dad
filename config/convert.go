package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// 预设名称
const (
	PresetDemo     = "demo"
	PresetStandard = "standard"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "dht": {"bucket_size": 20, "store_policy": "any"},
//	  "storage": {"engine": "badger"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return FromJSON(data)
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "demo": K=8, α=3, 最多 8 轮
//   - "standard": K=20, α=3, 最多 20 轮
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case PresetDemo:
		cfg.DHT.BucketSize = 8
		cfg.DHT.Alpha = 3
		cfg.DHT.MaxSteps = 8
	case PresetStandard:
		cfg.DHT.BucketSize = 20
		cfg.DHT.Alpha = 3
		cfg.DHT.MaxSteps = 20
	case "":
		// 空预设，不做任何操作
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	return nil
}
