package dht

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetrics_Collect 测试 RPC、查询、驱逐与线格式指标
func TestMetrics_Collect(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	cfg := NewConfig(WithWireCodec(true))
	n := newTestNetwork(t, cfg, WithMetrics(m))
	ids := addNodes(t, n, 4)
	connectAll(t, n, ids)

	assert.Equal(t, float64(6), testutil.ToFloat64(m.rpcs.WithLabelValues("ping", "ok")))
	assert.Greater(t, testutil.ToFloat64(m.wireBytes), float64(0))

	require.NoError(t, n.MarkDead(ids[3]))
	assert.Error(t, n.Ping(ids[0], ids[3]))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rpcs.WithLabelValues("ping", "unreachable")))

	engine := NewLookupEngine(cfg, n, m)
	_, err := engine.FindNode(context.Background(), ids[0], ids[1])
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.lookups.WithLabelValues("find_node", "converged")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.evictions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.lookupRounds))

	router := NewStoreRouter(cfg, engine, n, m)
	_, err = router.Store(context.Background(), ids[0], []byte("k"), []byte("v"))
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.storeTargets.WithLabelValues("acked")))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	t.Log("✅ 指标采集正确")
}

// TestMetrics_EvictionCountsRemovals 测试重复驱逐不重复计数
func TestMetrics_EvictionCountsRemovals(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	n := newTestNetwork(t, nil, WithMetrics(m))
	ids := addNodes(t, n, 4)
	connectAll(t, n, ids)
	require.NoError(t, n.MarkDead(ids[3]))

	lm := NewLivenessMonitor(n, n, n, m)
	assert.Equal(t, 3, lm.Evict(ids[3]))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.evictions))

	// 已被清除的节点再次驱逐不计数
	assert.Zero(t, lm.Evict(ids[3]))
	assert.Zero(t, lm.Evict(idFromByte(0x42)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.evictions))

	t.Log("✅ 驱逐指标只统计实际移除")
}

// TestMetrics_NilSafe 测试未启用指标
func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeLookup(ModeFindNode, TerminationConverged, 1)
		m.observeEviction()
		m.observeRPC("ping", "ok")
		m.observeStoreTarget(true)
		m.observeWireBytes(10)
	})

	// 无注册表也可使用
	assert.NotNil(t, NewMetrics(nil))
}
