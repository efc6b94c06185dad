// Package storage 提供节点本地存储的引擎装配
//
// 根据统一配置选择 memory 或 badger 引擎，通过 fx 提供给 DHT 模块，
// 并在应用停止时关闭引擎。
package storage

import (
	"github.com/dep2p/go-kadcore/config"
	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
)

// Config Storage 模块配置
type Config struct {
	// Kind 引擎类型
	Kind engine.Kind

	// Path BadgerDB 目录，为空时使用内存模式
	Path string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Kind: engine.KindMemory}
}

// ConfigFromUnified 从统一配置创建 Storage 配置
func ConfigFromUnified(cfg *config.Config) Config {
	storageCfg := DefaultConfig()
	if cfg == nil {
		return storageCfg
	}
	if cfg.Storage.Engine != "" {
		storageCfg.Kind = engine.Kind(cfg.Storage.Engine)
	}
	storageCfg.Path = cfg.Storage.Path
	return storageCfg
}

// Validate 验证配置
func (c Config) Validate() error {
	if !c.Kind.Valid() {
		return engine.ErrInvalidConfig
	}
	return nil
}
