package dht

import (
	"github.com/dep2p/go-kadcore/pkg/types"
)

// ============================================================================
//                              存活状态
// ============================================================================

// MarkDead 将节点标记为失效（故障注入）
//
// 失效节点保留在成员表中，对所有入站 RPC 返回 ErrUnreachable。
// 重复标记不报错。
func (n *Network) MarkDead(id types.NodeID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	rec, ok := n.records[id]
	if !ok {
		return NewDHTError("mark_dead", ErrNodeNotFound, id.ShortString())
	}
	if !rec.alive {
		return nil
	}
	rec.alive = false
	rec.deadSince = n.clock.Now()
	n.events.nodeDied(types.EvtNodeDied{ID: id, At: rec.deadSince})
	logger.Info("节点已标记失效", "node", id.ShortString())
	return nil
}

// IsAlive 检查节点是否存活（不在成员表时返回 false）
func (n *Network) IsAlive(id types.NodeID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	rec, ok := n.records[id]
	return ok && rec.alive
}

// EvictEverywhere 从所有节点（含失效节点）的 PeerList 中移除 id
//
// 返回实际移除的 PeerList 数量。
func (n *Network) EvictEverywhere(id types.NodeID) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	removed := 0
	for _, rec := range n.records {
		if rec.peers.Remove(id) {
			removed++
		}
	}
	if removed > 0 {
		n.events.nodeEvicted(types.EvtNodeEvicted{ID: id, RemovedFrom: removed})
	}
	return removed
}

// ============================================================================
//                              LivenessMonitor
// ============================================================================

// LivenessMonitor 查询过程中的存活判定
//
// Screen 只查成员表；Probe 发 ping；任一失败后由调用方执行 Evict。
type LivenessMonitor struct {
	members   Membership
	transport Transport
	evictor   Evictor
	metrics   *Metrics
}

// NewLivenessMonitor 创建存活监视器
func NewLivenessMonitor(members Membership, transport Transport, evictor Evictor, metrics *Metrics) *LivenessMonitor {
	return &LivenessMonitor{
		members:   members,
		transport: transport,
		evictor:   evictor,
		metrics:   metrics,
	}
}

// Screen 不发 RPC 的存活检查
//
// 不在成员表返回 ErrNodeNotFound，已失效返回 ErrUnreachable。
func (lm *LivenessMonitor) Screen(id types.NodeID) error {
	if !lm.members.Contains(id) {
		return ErrNodeNotFound
	}
	if !lm.members.IsAlive(id) {
		return ErrUnreachable
	}
	return nil
}

// Probe 由 from 向 to 发 ping
func (lm *LivenessMonitor) Probe(from, to types.NodeID) error {
	return lm.transport.Ping(from, to)
}

// Evict 全局驱逐 id，返回移除的 PeerList 数量
//
// 只有实际移除了记录才计入驱逐指标。
func (lm *LivenessMonitor) Evict(id types.NodeID) int {
	removed := lm.evictor.EvictEverywhere(id)
	if removed > 0 {
		lm.metrics.observeEviction()
	}
	logger.Debug("驱逐失效节点", "node", id.ShortString(), "removedFrom", removed)
	return removed
}
