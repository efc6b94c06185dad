package wire

import (
	"fmt"

	"github.com/dep2p/go-kadcore/pkg/types"
)

// Op RPC 操作类型
type Op uint8

const (
	// OpPing 存活探测
	OpPing Op = iota + 1
	// OpStore 存储键值
	OpStore
	// OpFindValue 查询值
	OpFindValue
	// OpFindNode 查询邻居
	OpFindNode
)

// String 返回操作名
func (o Op) String() string {
	switch o {
	case OpPing:
		return "ping"
	case OpStore:
		return "store"
	case OpFindValue:
		return "find_value"
	case OpFindNode:
		return "find_node"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Status 响应状态
type Status uint8

const (
	// StatusOK 成功
	StatusOK Status = iota
	// StatusNotFound 目标不在成员表中
	StatusNotFound
	// StatusUnreachable 目标存在但不可达
	StatusUnreachable
)

// String 返回状态名
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Message RPC 请求或响应
type Message struct {
	Op       Op
	Response bool

	From types.NodeID
	To   types.NodeID

	// Key/Value 用于 Store 与 FindValue
	Key   []byte
	Value []byte

	// Target 用于 FindNode
	Target types.NodeID

	// Peers FindNode 响应中的邻居列表
	Peers []types.NodeID

	// Found FindValue 响应是否命中
	Found bool

	Status Status
}

// Reply 基于请求构造响应骨架（交换 From/To）
func (m *Message) Reply() *Message {
	return &Message{
		Op:       m.Op,
		Response: true,
		From:     m.To,
		To:       m.From,
		Status:   StatusOK,
	}
}
