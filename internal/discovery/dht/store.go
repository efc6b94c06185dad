package dht

import (
	"context"

	"go.uber.org/multierr"

	"github.com/dep2p/go-kadcore/pkg/types"
)

// StoreReport 一次存储的逐目标结果
type StoreReport struct {
	Key   []byte
	KeyID types.NodeID

	// Targets FindNode 返回的最近节点
	Targets []types.NodeID

	// Acked 确认写入的节点
	Acked []types.NodeID

	// Failed 写入失败的节点及原因
	Failed map[types.NodeID]error

	// Lookup 定位目标所用的查询结果
	Lookup *LookupResult
}

// StoreRouter 把键值复制到距键标识最近的 K 个节点
type StoreRouter struct {
	cfg       *Config
	engine    *LookupEngine
	transport Transport
	metrics   *Metrics
}

// NewStoreRouter 创建存储路由
func NewStoreRouter(cfg *Config, engine *LookupEngine, transport Transport, metrics *Metrics) *StoreRouter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &StoreRouter{
		cfg:       cfg,
		engine:    engine,
		transport: transport,
		metrics:   metrics,
	}
}

// Store 以 from 为发起方存储键值
//
// 先对 SHA-1(key) 执行 FindNode，再依次向结果中的每个节点发 Store。
// 单个目标失败不会中断后续目标；是否返回错误由 StorePolicy 决定，
// 无论成败都返回完整的 StoreReport（查询本身失败时除外）。
func (r *StoreRouter) Store(ctx context.Context, from types.NodeID, key, value []byte) (*StoreReport, error) {
	keyID := types.NodeIDFromKey(key)

	res, err := r.engine.FindNode(ctx, from, keyID)
	if err != nil {
		return nil, err
	}

	report := &StoreReport{
		Key:     key,
		KeyID:   keyID,
		Targets: res.Closest,
		Acked:   make([]types.NodeID, 0, len(res.Closest)),
		Failed:  make(map[types.NodeID]error),
		Lookup:  res,
	}

	var errs error
	for _, target := range res.Closest {
		if err := r.transport.Store(from, target, key, value); err != nil {
			report.Failed[target] = err
			errs = multierr.Append(errs, err)
			r.metrics.observeStoreTarget(false)
			logger.Warn("存储到目标失败", "queryID", res.QueryID, "target", target.ShortString(), "error", err)
			continue
		}
		report.Acked = append(report.Acked, target)
		r.metrics.observeStoreTarget(true)
	}

	logger.Debug("存储完成",
		"queryID", res.QueryID,
		"key", keyID.ShortString(),
		"targets", len(report.Targets),
		"acked", len(report.Acked),
		"policy", r.cfg.StorePolicy.String(),
	)
	return report, r.evaluate(report, errs)
}

// evaluate 按策略判定存储结果
func (r *StoreRouter) evaluate(report *StoreReport, errs error) error {
	switch r.cfg.StorePolicy {
	case AckAny:
		if len(report.Acked) > 0 {
			return nil
		}
	case AckAll:
		if len(report.Failed) == 0 && len(report.Acked) > 0 {
			return nil
		}
	default:
		return nil
	}

	if errs == nil {
		return NewDHTError("store", ErrStoreFailed, "no targets")
	}
	return NewDHTError("store", multierr.Append(ErrStoreFailed, errs), report.KeyID.ShortString())
}
