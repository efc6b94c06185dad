package dht

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrNodeNotFound 目标不在成员表中
	ErrNodeNotFound = errors.New("dht: node not found")

	// ErrUnreachable 目标在成员表中但已失效
	ErrUnreachable = errors.New("dht: node unreachable")

	// ErrDuplicateNode 标识已被占用
	ErrDuplicateNode = errors.New("dht: node already exists")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("dht: invalid config")

	// ErrNetworkClosed 网络已关闭
	ErrNetworkClosed = errors.New("dht: network is closed")

	// ErrStoreFailed 存储未满足确认策略
	ErrStoreFailed = errors.New("dht: store failed")

	// ErrIDExhausted 多次生成随机标识均冲突
	ErrIDExhausted = errors.New("dht: could not allocate a unique node id")
)

// IsUnreachable 报告 err 是否表示目标无法应答
//
// 对查询而言，不在成员表与已失效都视为不可达。
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable) || errors.Is(err, ErrNodeNotFound)
}

// DHTError DHT 错误类型
type DHTError struct {
	Op      string // 操作名称
	Err     error  // 底层错误
	Message string // 错误消息
}

// Error 实现 error 接口
func (e *DHTError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("dht %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("dht %s: %v", e.Op, e.Err)
}

// Unwrap 实现错误解包
func (e *DHTError) Unwrap() error {
	return e.Err
}

// NewDHTError 创建 DHT 错误
func NewDHTError(op string, err error, message string) *DHTError {
	return &DHTError{
		Op:      op,
		Err:     err,
		Message: message,
	}
}
