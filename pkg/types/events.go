package types

import (
	"time"
)

// ============================================================================
//                              成员事件
// ============================================================================

// EvtNodeJoined 节点加入成员表
type EvtNodeJoined struct {
	ID NodeID
	At time.Time
}

// EvtNodeDied 节点被标记为失效
type EvtNodeDied struct {
	ID NodeID
	At time.Time
}

// EvtNodeEvicted 节点被从其他节点的 PeerList 中驱逐
//
// RemovedFrom 为实际移除的 PeerList 数量，至少为 1。
type EvtNodeEvicted struct {
	ID          NodeID
	RemovedFrom int
}
