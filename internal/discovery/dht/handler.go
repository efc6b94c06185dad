package dht

import (
	"time"

	"github.com/dep2p/go-kadcore/internal/core/storage/kv"
	"github.com/dep2p/go-kadcore/internal/core/wire"
	"github.com/dep2p/go-kadcore/pkg/types"
)

// ============================================================================
//                              节点记录
// ============================================================================

// nodeRecord 单个模拟节点的状态
type nodeRecord struct {
	id    types.NodeID
	alive bool
	store *kv.Store
	peers *PeerList

	joinedAt  time.Time
	deadSince time.Time
}

// accept 入站请求的公共前置处理
//
// 失效节点直接返回 ErrUnreachable，不产生任何副作用；
// 存活节点记录调用方（调用方为自身时除外）。
func (r *nodeRecord) accept(from types.NodeID) error {
	if !r.alive {
		return ErrUnreachable
	}
	if from != r.id {
		r.peers.Observe(from)
	}
	return nil
}

// handle 处理一条请求并返回响应
func (r *nodeRecord) handle(req *wire.Message, k int) (*wire.Message, error) {
	if err := r.accept(req.From); err != nil {
		return nil, err
	}

	resp := req.Reply()
	switch req.Op {
	case wire.OpPing:
		// 仅存活确认

	case wire.OpStore:
		if err := r.store.Put(req.Key, req.Value); err != nil {
			return nil, err
		}

	case wire.OpFindValue:
		value, found, err := r.store.Get(req.Key)
		if err != nil {
			return nil, err
		}
		resp.Key = req.Key
		resp.Found = found
		if found {
			resp.Value = value
		}

	case wire.OpFindNode:
		resp.Target = req.Target
		resp.Peers = ClosestK(req.Target, r.peers.IDs(), k)
	}
	return resp, nil
}

// info 导出诊断快照
func (r *nodeRecord) info() NodeInfo {
	return NodeInfo{
		ID:        r.id,
		Alive:     r.alive,
		Peers:     r.peers.IDs(),
		JoinedAt:  r.joinedAt,
		DeadSince: r.deadSince,
	}
}

// NodeInfo 节点诊断快照
type NodeInfo struct {
	// ID 节点标识
	ID types.NodeID

	// Alive 是否存活
	Alive bool

	// Peers 联系人（从旧到新）
	Peers []types.NodeID

	// JoinedAt 加入时间
	JoinedAt time.Time

	// DeadSince 失效时间，存活时为零值
	DeadSince time.Time
}
