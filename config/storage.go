package config

import "fmt"

// 存储引擎名称
const (
	StorageEngineMemory = "memory"
	StorageEngineBadger = "badger"
)

// StorageConfig 存储配置
//
// 所有节点共享一个引擎实例，通过键前缀隔离各自的数据。
type StorageConfig struct {
	// Engine 引擎类型：memory / badger
	Engine string `json:"engine"`

	// Path BadgerDB 目录，为空时 badger 使用内存模式
	Path string `json:"path,omitempty"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Engine: StorageEngineMemory,
	}
}

// Validate 验证存储配置的有效性
func (c *StorageConfig) Validate() error {
	switch c.Engine {
	case StorageEngineMemory:
		if c.Path != "" {
			return fmt.Errorf("storage: path is only valid for the badger engine")
		}
	case StorageEngineBadger:
	default:
		return fmt.Errorf("storage: unknown engine %q", c.Engine)
	}
	return nil
}
