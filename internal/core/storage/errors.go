package storage

import (
	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
)

// 重导出 engine 包的错误，方便使用方直接使用
var (
	// ErrNotFound 键不存在
	ErrNotFound = engine.ErrNotFound

	// ErrClosed 引擎已关闭
	ErrClosed = engine.ErrClosed

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = engine.ErrInvalidConfig
)
