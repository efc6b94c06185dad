package dht

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kadcore/pkg/types"
)

// ============================================================================
// FindNode
// ============================================================================

// TestFindNode_FullyConnected 测试规模不超过 K 的全连接网络返回其余全部成员
func TestFindNode_FullyConnected(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 5)
	connectAll(t, n, ids)

	engine := NewLookupEngine(n.Config(), n, nil)
	target := types.NodeIDFromKey([]byte("anything"))

	res, err := engine.FindNode(context.Background(), ids[0], target)
	require.NoError(t, err)

	assert.Equal(t, ClosestK(target, ids[1:], DefaultBucketSize), res.Closest)
	assert.Equal(t, TerminationConverged, res.Termination)
	assert.Equal(t, ModeFindNode, res.Mode)
	assert.NotEmpty(t, res.QueryID)
	assert.Empty(t, res.Evicted)

	t.Log("✅ 全连接网络返回其余全部成员")
}

// TestFindNode_ResultBounds 测试结果至多 K 个、升序、不含发起方
func TestFindNode_ResultBounds(t *testing.T) {
	cfg := NewConfig(WithBucketSize(4))
	n := newTestNetwork(t, cfg)
	ids := addNodes(t, n, 20)
	engine := NewLookupEngine(cfg, n, nil)
	ctx := context.Background()

	for _, id := range ids[1:] {
		require.NoError(t, n.Bootstrap(id, ids[0]))
		_, err := engine.FindNode(ctx, id, id)
		require.NoError(t, err)
	}

	for i, from := range ids {
		target := types.NodeIDFromKey([]byte{byte(i)})
		res, err := engine.FindNode(ctx, from, target)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(res.Closest), 4)
		assert.NotEmpty(t, res.Closest)
		assert.NotContains(t, res.Closest, from)
		assertSortedByDistance(t, target, res.Closest)
		assert.LessOrEqual(t, res.Rounds, cfg.MaxSteps)
		for _, id := range res.Closest {
			assert.True(t, n.Contains(id))
		}

		peers, _ := n.Peers(from)
		assert.LessOrEqual(t, len(peers), 4)
	}
}

// TestFindNode_Isolated 测试孤立节点返回空结果
func TestFindNode_Isolated(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 1)
	engine := NewLookupEngine(n.Config(), n, nil)

	res, err := engine.FindNode(context.Background(), ids[0], idFromByte(1))
	require.NoError(t, err)
	assert.Empty(t, res.Closest)
	assert.Equal(t, TerminationConverged, res.Termination)
	assert.Equal(t, 1, res.Rounds)
	assert.Equal(t, 1, res.Visited)
}

// TestFindNode_InitiatorErrors 测试发起方不存在或失效
func TestFindNode_InitiatorErrors(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 2)
	engine := NewLookupEngine(n.Config(), n, nil)
	ctx := context.Background()

	_, err := engine.FindNode(ctx, idFromByte(7), ids[0])
	assert.ErrorIs(t, err, ErrNodeNotFound)

	require.NoError(t, n.MarkDead(ids[1]))
	_, err = engine.FindNode(ctx, ids[1], ids[0])
	assert.ErrorIs(t, err, ErrUnreachable)
}

// TestFindNode_EvictsDeadCandidate 测试查询遇到失效节点后将其从所有 PeerList 移除
func TestFindNode_EvictsDeadCandidate(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 6)
	connectAll(t, n, ids)
	require.NoError(t, n.MarkDead(ids[2]))

	engine := NewLookupEngine(n.Config(), n, nil)
	res, err := engine.FindNode(context.Background(), ids[0], types.NodeIDFromKey([]byte("x")))
	require.NoError(t, err)

	assert.Equal(t, []types.NodeID{ids[2]}, res.Evicted)
	assert.NotContains(t, res.Closest, ids[2])
	for _, id := range ids {
		peers, err := n.Peers(id)
		require.NoError(t, err)
		assert.NotContains(t, peers, ids[2], "节点 %s 仍记录失效节点", id.ShortString())
	}

	t.Log("✅ 失效节点被全局驱逐")
}

// TestFindNode_ProbeFailureEvicts 测试 ping 探测失败的候选被丢弃并驱逐
func TestFindNode_ProbeFailureEvicts(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 5)
	connectAll(t, n, ids)

	rc := &recordingCollab{Network: n, failPing: map[types.NodeID]bool{ids[3]: true}}
	engine := NewLookupEngine(n.Config(), rc, nil)

	res, err := engine.FindNode(context.Background(), ids[0], ids[3])
	require.NoError(t, err)

	assert.Equal(t, []types.NodeID{ids[3]}, res.Evicted)
	assert.NotContains(t, res.Closest, ids[3])
	assert.NotContains(t, rc.calls, "find_node:"+ids[3].String(), "探测失败后不再发 FindNode")
	for _, id := range ids {
		peers, _ := n.Peers(id)
		assert.NotContains(t, peers, ids[3])
	}
}

// TestFindNode_SequentialVisits 测试候选按距离顺序逐个访问，先 ping 后 FindNode
func TestFindNode_SequentialVisits(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 5)
	connectAll(t, n, ids)

	rc := &recordingCollab{Network: n}
	engine := NewLookupEngine(n.Config(), rc, nil)
	target := types.NodeIDFromKey([]byte("order"))

	res, err := engine.FindNode(context.Background(), ids[0], target)
	require.NoError(t, err)
	require.Equal(t, TerminationConverged, res.Termination)
	require.Equal(t, 1, res.Rounds)

	batch := ClosestK(target, ids, DefaultAlpha)
	expected := make([]string, 0, 2*len(batch))
	for _, id := range batch {
		expected = append(expected, "ping:"+id.String(), "find_node:"+id.String())
	}
	assert.Equal(t, expected, rc.calls)
	assert.Equal(t, DefaultAlpha, res.Visited)
}

// TestFindNode_SameRoundSeesEviction 测试同一轮中先访问的候选驱逐后，后续候选的应答已不含该节点
func TestFindNode_SameRoundSeesEviction(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 5)
	connectAll(t, n, ids)

	// 以 ids[3] 为目标，它距离为 0，必然排在第一轮批次首位
	target := ids[3]
	batch := ClosestK(target, ids, DefaultAlpha)
	require.Equal(t, target, batch[0])

	rc := &recordingCollab{Network: n, failPing: map[types.NodeID]bool{target: true}}
	engine := NewLookupEngine(n.Config(), rc, nil)

	res, err := engine.FindNode(context.Background(), ids[0], target)
	require.NoError(t, err)
	assert.Equal(t, []types.NodeID{target}, res.Evicted)

	// 第一轮先 ping 失败者，随后访问批次中的下一个候选
	require.GreaterOrEqual(t, len(rc.calls), 3)
	assert.Equal(t, "ping:"+target.String(), rc.calls[0])
	assert.Equal(t, "ping:"+batch[1].String(), rc.calls[1])
	assert.Equal(t, "find_node:"+batch[1].String(), rc.calls[2])

	// 驱逐前每个节点都记录着 target，应答中不出现说明驱逐先于应答生效
	require.NotEmpty(t, rc.answers)
	assert.Equal(t, batch[1], rc.answers[0].from)
	for _, a := range rc.answers {
		assert.NotContains(t, a.neighbors, target, "节点 %s 的应答仍含已驱逐节点", a.from.ShortString())
	}

	t.Log("✅ 同一轮后续候选看到先前的驱逐")
}

// TestFindNode_StepLimit 测试达到最大轮数
func TestFindNode_StepLimit(t *testing.T) {
	cfg := NewConfig(WithMaxSteps(1))
	n := newTestNetwork(t, cfg)
	ids := addNodes(t, n, 10)
	for _, id := range ids[1:] {
		require.NoError(t, n.Bootstrap(id, ids[0]))
	}
	joiner, err := n.AddNode()
	require.NoError(t, err)
	require.NoError(t, n.Bootstrap(joiner, ids[0]))

	engine := NewLookupEngine(cfg, n, nil)
	res, err := engine.FindNode(context.Background(), joiner, types.NodeIDFromKey([]byte("far")))
	require.NoError(t, err)

	assert.Equal(t, TerminationStepLimit, res.Termination)
	assert.Equal(t, 1, res.Rounds)
	assert.NotEmpty(t, res.Closest)
}

// TestFindNode_Exhausted 测试只剩失效候选时终止
func TestFindNode_Exhausted(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 3)
	a, b, d := ids[0], ids[1], ids[2]

	require.NoError(t, n.Bootstrap(b, d))
	require.NoError(t, n.Bootstrap(a, b))
	require.NoError(t, n.MarkDead(d))

	engine := NewLookupEngine(n.Config(), n, nil)
	res, err := engine.FindNode(context.Background(), a, types.NodeIDFromKey([]byte("t")))
	require.NoError(t, err)

	assert.Equal(t, TerminationExhausted, res.Termination)
	assert.Equal(t, 1, res.Rounds)
	assert.Equal(t, []types.NodeID{d}, res.Evicted)
	assert.Equal(t, []types.NodeID{b}, res.Closest)
}

// TestFindNode_LearnFromResponses 测试新节点通过查询充实 PeerList
func TestFindNode_LearnFromResponses(t *testing.T) {
	for _, learn := range []bool{true, false} {
		cfg := NewConfig(WithLearnFromResponses(learn))
		n := newTestNetwork(t, cfg)
		ids := addNodes(t, n, 5)
		connectAll(t, n, ids)

		joiner, err := n.AddNode()
		require.NoError(t, err)
		require.NoError(t, n.Bootstrap(joiner, ids[0]))

		engine := NewLookupEngine(cfg, n, nil)
		_, err = engine.FindNode(context.Background(), joiner, joiner)
		require.NoError(t, err)

		peers, _ := n.Peers(joiner)
		assert.Contains(t, peers, ids[0])
		if learn {
			assert.Greater(t, len(peers), 1)
		} else {
			assert.Equal(t, []types.NodeID{ids[0]}, peers)
		}
	}
}

// TestFindNode_Canceled 测试 context 取消返回部分结果
func TestFindNode_Canceled(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 3)
	connectAll(t, n, ids)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewLookupEngine(n.Config(), n, nil)
	res, err := engine.FindNode(ctx, ids[0], ids[1])
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, TerminationCanceled, res.Termination)
	assert.Zero(t, res.Rounds)
}

// ============================================================================
// FindValue
// ============================================================================

// TestFindValue_FoundAndMissing 测试命中、空值与未命中
func TestFindValue_FoundAndMissing(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 4)
	connectAll(t, n, ids)

	for _, id := range ids[1:] {
		require.NoError(t, n.Store(ids[0], id, []byte("hello"), []byte("world")))
		require.NoError(t, n.Store(ids[0], id, []byte("empty"), []byte{}))
	}

	engine := NewLookupEngine(n.Config(), n, nil)
	ctx := context.Background()

	res, err := engine.FindValue(ctx, ids[0], []byte("hello"))
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, []byte("world"), res.Value)
	assert.Equal(t, TerminationValueFound, res.Termination)
	assert.Contains(t, ids[1:], res.ValueFrom)
	assert.Equal(t, types.NodeIDFromKey([]byte("hello")), res.Target)

	res, err = engine.FindValue(ctx, ids[0], []byte("empty"))
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.NotNil(t, res.Value)
	assert.Empty(t, res.Value)

	res, err = engine.FindValue(ctx, ids[0], []byte("missing"))
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Value)
	assert.NotEqual(t, TerminationValueFound, res.Termination)
	assert.ElementsMatch(t, ids[1:], res.Closest)

	t.Log("✅ FindValue 正确区分空值与未命中")
}

// TestFindValue_DeadHolderSkipped 测试持有值的失效节点被跳过，值仍可从其他节点取得
func TestFindValue_DeadHolderSkipped(t *testing.T) {
	n := newTestNetwork(t, nil)
	ids := addNodes(t, n, 5)
	connectAll(t, n, ids)

	for _, id := range ids[1:] {
		require.NoError(t, n.Store(ids[1], id, []byte("k"), []byte("v")))
	}
	require.NoError(t, n.MarkDead(ids[2]))

	engine := NewLookupEngine(n.Config(), n, nil)
	res, err := engine.FindValue(context.Background(), ids[0], []byte("k"))
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.NotEqual(t, ids[2], res.ValueFrom)
	assert.Contains(t, res.Evicted, ids[2])
}

// TestModeAndTerminationStrings 测试名称
func TestModeAndTerminationStrings(t *testing.T) {
	assert.Equal(t, "find_value", ModeFindValue.String())
	assert.Equal(t, "step_limit", TerminationStepLimit.String())
	assert.Equal(t, "exhausted", TerminationExhausted.String())
	assert.Equal(t, "termination(42)", Termination(42).String())
}
