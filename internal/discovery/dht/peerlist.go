package dht

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/dep2p/go-kadcore/pkg/types"
)

// ============================================================================
//                              PeerList
// ============================================================================

// PeerList 节点的联系人列表
//
// 容量为 K 的 LRU：最久未联系的在前，最近联系的在后。
// 不包含所有者自身，不含重复项。
//
// 唯一的常规修改入口是 Observe；Remove 只供全局驱逐使用。
// 非并发安全，由 Network 的互斥锁保护。
type PeerList struct {
	owner    types.NodeID
	capacity int
	lru      *simplelru.LRU[types.NodeID, struct{}]
}

// NewPeerList 创建联系人列表
//
// capacity 非正时使用 DefaultBucketSize。
func NewPeerList(owner types.NodeID, capacity int) *PeerList {
	if capacity <= 0 {
		capacity = DefaultBucketSize
	}
	// 容量为正时 NewLRU 不会返回错误
	lru, _ := simplelru.NewLRU[types.NodeID, struct{}](capacity, nil)
	return &PeerList{
		owner:    owner,
		capacity: capacity,
		lru:      lru,
	}
}

// Observe 记录一次联系
//
// 已存在则移到最新位置；不存在则追加到末尾，超出容量时丢弃最旧的一项。
// 对所有者自身不做任何修改。返回是否丢弃了最旧的联系人。
func (pl *PeerList) Observe(id types.NodeID) (evicted bool) {
	if id == pl.owner {
		return false
	}
	return pl.lru.Add(id, struct{}{})
}

// Remove 移除联系人，返回是否存在
func (pl *PeerList) Remove(id types.NodeID) bool {
	return pl.lru.Remove(id)
}

// Contains 检查是否包含（不影响新旧顺序）
func (pl *PeerList) Contains(id types.NodeID) bool {
	return pl.lru.Contains(id)
}

// IDs 按从旧到新的顺序返回联系人快照
func (pl *PeerList) IDs() []types.NodeID {
	return pl.lru.Keys()
}

// Len 返回联系人数量
func (pl *PeerList) Len() int {
	return pl.lru.Len()
}

// Cap 返回容量
func (pl *PeerList) Cap() int {
	return pl.capacity
}

// Owner 返回所有者标识
func (pl *PeerList) Owner() types.NodeID {
	return pl.owner
}
