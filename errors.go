package kadcore

import (
	"github.com/dep2p/go-kadcore/internal/discovery/dht"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 集群生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrClusterClosed 集群已关闭
	ErrClusterClosed = dht.ErrNetworkClosed

	// ────────────────────────────────────────────────────────────────────────
	// DHT 错误（与 errors.Is 配合使用）
	// ────────────────────────────────────────────────────────────────────────

	// ErrNodeNotFound 节点不在成员表中
	ErrNodeNotFound = dht.ErrNodeNotFound

	// ErrUnreachable 节点在成员表中但已失效
	ErrUnreachable = dht.ErrUnreachable

	// ErrDuplicateNode 标识已被占用
	ErrDuplicateNode = dht.ErrDuplicateNode

	// ErrStoreFailed 存储未满足确认策略
	ErrStoreFailed = dht.ErrStoreFailed

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = dht.ErrInvalidConfig
)
