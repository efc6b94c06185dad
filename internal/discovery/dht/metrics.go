package dht

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "kadcore"

// Metrics DHT 指标
//
// 所有方法对 nil 接收者安全，未启用指标时传 nil 即可。
type Metrics struct {
	lookups      *prometheus.CounterVec
	lookupRounds prometheus.Histogram
	evictions    prometheus.Counter
	rpcs         *prometheus.CounterVec
	storeTargets *prometheus.CounterVec
	wireBytes    prometheus.Counter
}

// NewMetrics 创建指标并注册到 reg（reg 为 nil 时不注册）
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lookups_total",
			Help:      "Iterative lookups by mode and termination reason.",
		}, []string{"mode", "termination"}),
		lookupRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "lookup_rounds",
			Help:      "Rounds executed per iterative lookup.",
			Buckets:   prometheus.LinearBuckets(0, 1, 21),
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "evictions_total",
			Help:      "Global eviction sweeps that removed the node from at least one peer list.",
		}),
		rpcs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rpc_total",
			Help:      "Dispatched RPCs by operation and result.",
		}, []string{"op", "result"}),
		storeTargets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_targets_total",
			Help:      "Store attempts per target by result.",
		}, []string{"result"}),
		wireBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "wire_bytes_total",
			Help:      "Bytes encoded by the wire codec.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.lookups, m.lookupRounds, m.evictions, m.rpcs, m.storeTargets, m.wireBytes)
	}
	return m
}

func (m *Metrics) observeLookup(mode Mode, term Termination, rounds int) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(mode.String(), term.String()).Inc()
	m.lookupRounds.Observe(float64(rounds))
}

func (m *Metrics) observeEviction() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *Metrics) observeRPC(op, result string) {
	if m == nil {
		return
	}
	m.rpcs.WithLabelValues(op, result).Inc()
}

func (m *Metrics) observeStoreTarget(ok bool) {
	if m == nil {
		return
	}
	result := "acked"
	if !ok {
		result = "failed"
	}
	m.storeTargets.WithLabelValues(result).Inc()
}

func (m *Metrics) observeWireBytes(n int) {
	if m == nil {
		return
	}
	m.wireBytes.Add(float64(n))
}
