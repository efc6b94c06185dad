package kadcore

import (
	"github.com/dep2p/go-kadcore/internal/discovery/dht"
	"github.com/dep2p/go-kadcore/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

// NodeID 160 位节点标识
type NodeID = types.NodeID

// LookupResult 迭代查询结果
type LookupResult = dht.LookupResult

// StoreReport 存储的逐目标结果
type StoreReport = dht.StoreReport

// NodeInfo 节点快照
type NodeInfo = dht.NodeInfo

// Termination 查询终止原因
type Termination = dht.Termination

// StorePolicy 存储确认策略
type StorePolicy = dht.StorePolicy

// EvtNodeJoined 节点加入事件
type EvtNodeJoined = types.EvtNodeJoined

// EvtNodeDied 节点失效事件
type EvtNodeDied = types.EvtNodeDied

// EvtNodeEvicted 节点被驱逐事件
type EvtNodeEvicted = types.EvtNodeEvicted

// 查询终止原因
const (
	TerminationConverged  = dht.TerminationConverged
	TerminationStepLimit  = dht.TerminationStepLimit
	TerminationValueFound = dht.TerminationValueFound
	TerminationExhausted  = dht.TerminationExhausted
	TerminationCanceled   = dht.TerminationCanceled
)

// 存储确认策略
const (
	AckBestEffort = dht.AckBestEffort
	AckAny        = dht.AckAny
	AckAll        = dht.AckAll
)

// XORDistance 返回 a 与 b 的 XOR 距离
func XORDistance(a, b NodeID) NodeID {
	return dht.XORDistance(a, b)
}

// CommonPrefixLen 返回 a 与 b 的公共前缀位数
func CommonPrefixLen(a, b NodeID) int {
	return dht.CommonPrefixLen(a, b)
}
