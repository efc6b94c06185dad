package dht

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kadcore/pkg/types"
)

// newTestNetwork 创建测试网络，测试结束时关闭
func newTestNetwork(t *testing.T, cfg *Config, opts ...NetworkOption) *Network {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	n, err := NewNetwork(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

// addNodes 加入 count 个随机标识节点
func addNodes(t *testing.T, n *Network, count int) []types.NodeID {
	t.Helper()
	ids := make([]types.NodeID, 0, count)
	for i := 0; i < count; i++ {
		id, err := n.AddNode()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

// connectAll 每对节点引导一次，使双方互相记录
func connectAll(t *testing.T, n *Network, ids []types.NodeID) {
	t.Helper()
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			require.NoError(t, n.Bootstrap(ids[j], ids[i]))
		}
	}
}

// idFromByte 构造首字节为 b、其余为 0 的标识
func idFromByte(b byte) types.NodeID {
	var id types.NodeID
	id[0] = b
	return id
}

// without 返回去掉 skip 后的副本
func without(ids []types.NodeID, skip types.NodeID) []types.NodeID {
	out := make([]types.NodeID, 0, len(ids))
	for _, id := range ids {
		if id != skip {
			out = append(out, id)
		}
	}
	return out
}

// assertSortedByDistance 检查 ids 按到 target 的距离严格升序
func assertSortedByDistance(t *testing.T, target types.NodeID, ids []types.NodeID) {
	t.Helper()
	for i := 1; i < len(ids); i++ {
		require.Negative(t, CompareDistance(ids[i-1], ids[i], target), "位置 %d 未按距离升序", i)
	}
}

// recordingCollab 记录 RPC 顺序与 FindNode 应答，并可注入 ping 失败
type recordingCollab struct {
	*Network
	calls    []string
	answers  []findNodeAnswer
	failPing map[types.NodeID]bool
}

// findNodeAnswer 一次成功 FindNode 的应答方与邻居列表
type findNodeAnswer struct {
	from      types.NodeID
	neighbors []types.NodeID
}

func (r *recordingCollab) Ping(from, to types.NodeID) error {
	r.calls = append(r.calls, "ping:"+to.String())
	if r.failPing[to] {
		return NewDHTError("ping", ErrUnreachable, to.ShortString())
	}
	return r.Network.Ping(from, to)
}

func (r *recordingCollab) FindNode(from, to, target types.NodeID) ([]types.NodeID, error) {
	r.calls = append(r.calls, "find_node:"+to.String())
	neighbors, err := r.Network.FindNode(from, to, target)
	if err == nil {
		r.answers = append(r.answers, findNodeAnswer{from: to, neighbors: neighbors})
	}
	return neighbors, err
}

// failingStore 对指定目标的 Store 返回不可达
type failingStore struct {
	*Network
	fail map[types.NodeID]bool
}

func (f *failingStore) Store(from, to types.NodeID, key, value []byte) error {
	if f.fail[to] {
		return NewDHTError("store", ErrUnreachable, to.ShortString())
	}
	return f.Network.Store(from, to, key, value)
}
