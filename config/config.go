// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入各子配置，支持从 JSON 加载和保存，
// 支持预设配置（demo/standard）。
//
// 使用示例：
//
//	// 创建默认配置（demo 预设）
//	cfg := config.NewConfig()
//	cfg.Storage.Engine = "badger"
//
//	// 应用预设到现有配置
//	config.ApplyPreset(cfg, "standard")
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

// Config 是 kadcore 的完整配置结构
//
// 配置按照功能模块组织：
//   - DHT: 路由表与迭代查询参数
//   - Storage: 节点本地存储引擎
//   - Wire: 模拟 RPC 的线格式编解码
//   - Metrics: Prometheus 指标
type Config struct {
	// DHT 路由与查询配置
	DHT DHTConfig `json:"dht"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage"`

	// Wire 线格式配置
	Wire WireConfig `json:"wire"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 未注入 Registerer 时自建 Registry 并注册 DHT 指标
	Enabled bool `json:"enabled"`
}

// WireConfig 线格式配置
type WireConfig struct {
	// EnableCodec 每次 RPC 都经过 protobuf 线格式编码再解码
	//
	// 用于校验消息可序列化；关闭时消息直接在内存中传递。
	EnableCodec bool `json:"enable_codec"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		DHT:     DefaultDHTConfig(),
		Storage: DefaultStorageConfig(),
		Wire:    WireConfig{},
		Metrics: MetricsConfig{},
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.DHT.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return nil
}

// Clone 返回配置副本
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cloned := *c
	return &cloned
}
