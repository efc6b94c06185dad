package dht

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-kadcore/pkg/types"
)

// ============================================================================
//                              查询模式与终止原因
// ============================================================================

// Mode 查询模式
type Mode int

const (
	// ModeFindNode 查找距目标最近的节点
	ModeFindNode Mode = iota
	// ModeFindValue 查找键对应的值，命中即停止
	ModeFindValue
)

// String 返回模式名
func (m Mode) String() string {
	switch m {
	case ModeFindNode:
		return "find_node"
	case ModeFindValue:
		return "find_value"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Termination 查询终止原因
type Termination int

const (
	// TerminationConverged 一轮下来最近距离未改善且没有新标识
	TerminationConverged Termination = iota
	// TerminationStepLimit 达到最大轮数
	TerminationStepLimit
	// TerminationValueFound 命中值
	TerminationValueFound
	// TerminationExhausted 没有可访问的候选
	TerminationExhausted
	// TerminationCanceled context 取消或超时
	TerminationCanceled
)

// String 返回终止原因名
func (t Termination) String() string {
	switch t {
	case TerminationConverged:
		return "converged"
	case TerminationStepLimit:
		return "step_limit"
	case TerminationValueFound:
		return "value_found"
	case TerminationExhausted:
		return "exhausted"
	case TerminationCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("termination(%d)", int(t))
	}
}

// LookupResult 查询结果
type LookupResult struct {
	// QueryID 查询关联 ID，出现在该次查询的所有日志中
	QueryID string

	Mode   Mode
	Target types.NodeID

	// Closest 距目标最近的至多 K 个存活节点（升序，不含发起方）
	Closest []types.NodeID

	// Value/Found FindValue 的结果；Found 为 true 时 Value 可能为空切片
	Value []byte
	Found bool

	// ValueFrom 返回值的节点
	ValueFrom types.NodeID

	Termination Termination
	Rounds      int
	Visited     int

	// Evicted 本次查询触发全局驱逐的标识
	Evicted []types.NodeID
}

// ============================================================================
//                              LookupEngine
// ============================================================================

// LookupEngine 迭代查询引擎
//
// 每次查询：
//  1. 以发起方的 PeerList 加上发起方自身作为候选列表，按距离排序
//  2. 每轮先筛掉不在成员表或已失效的候选（失效者全局驱逐），
//     再选取至多 α 个未访问的候选
//  3. 顺序访问：ping 探测，失败则丢弃并驱逐；成功则发 FindValue/FindNode
//  4. 合并新标识，排序并截断到 K 个（发起方不计入）
//  5. 最近距离未改善且没有新标识时收敛，否则进入下一轮，最多 MaxSteps 轮
type LookupEngine struct {
	cfg      *Config
	collab   Collaborator
	liveness *LivenessMonitor
	metrics  *Metrics
}

// NewLookupEngine 创建查询引擎
func NewLookupEngine(cfg *Config, collab Collaborator, metrics *Metrics) *LookupEngine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &LookupEngine{
		cfg:      cfg,
		collab:   collab,
		liveness: NewLivenessMonitor(collab, collab, collab, metrics),
		metrics:  metrics,
	}
}

// FindNode 查找距 target 最近的节点
func (e *LookupEngine) FindNode(ctx context.Context, from, target types.NodeID) (*LookupResult, error) {
	return e.run(ctx, ModeFindNode, from, target, nil)
}

// FindValue 查找 key 对应的值
//
// 未找到值不是错误：Found 为 false，Closest 为最近的节点。
func (e *LookupEngine) FindValue(ctx context.Context, from types.NodeID, key []byte) (*LookupResult, error) {
	return e.run(ctx, ModeFindValue, from, types.NodeIDFromKey(key), key)
}

// run 执行一次查询
//
// context 取消时返回部分结果和 ctx.Err()。
func (e *LookupEngine) run(ctx context.Context, mode Mode, from, target types.NodeID, key []byte) (*LookupResult, error) {
	if err := e.liveness.Screen(from); err != nil {
		return nil, NewDHTError(mode.String(), err, from.ShortString())
	}
	seeds, err := e.collab.Peers(from)
	if err != nil {
		return nil, err
	}

	if e.cfg.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.LookupTimeout)
		defer cancel()
	}

	q := newLookup(e, mode, from, target, key)
	q.seed(seeds)

	start := time.Now()
	err = q.iterate(ctx)
	res := q.complete()

	e.metrics.observeLookup(mode, res.Termination, res.Rounds)
	logger.Debug("DHT 迭代查询完成",
		"queryID", res.QueryID,
		"mode", mode.String(),
		"from", from.ShortString(),
		"target", target.ShortString(),
		"termination", res.Termination.String(),
		"rounds", res.Rounds,
		"visited", res.Visited,
		"evicted", len(res.Evicted),
		"closest", len(res.Closest),
		"found", res.Found,
		"duration", time.Since(start),
	)
	return res, err
}

// ============================================================================
//                              单次查询状态
// ============================================================================

// lookup 单次查询的可变状态
type lookup struct {
	engine *LookupEngine
	mode   Mode
	from   types.NodeID
	target types.NodeID
	key    []byte

	shortlist []types.NodeID          // 按距离升序
	seen      map[types.NodeID]struct{} // 出现过的所有标识（含已丢弃）
	visited   map[types.NodeID]struct{}
	dropped   map[types.NodeID]struct{}
	best      Distance // 已知最近距离，单调不增

	result *LookupResult
}

func newLookup(e *LookupEngine, mode Mode, from, target types.NodeID, key []byte) *lookup {
	return &lookup{
		engine:  e,
		mode:    mode,
		from:    from,
		target:  target,
		key:     key,
		seen:    make(map[types.NodeID]struct{}),
		visited: make(map[types.NodeID]struct{}),
		dropped: make(map[types.NodeID]struct{}),
		best:    MaxDistance,
		result: &LookupResult{
			QueryID: uuid.NewString(),
			Mode:    mode,
			Target:  target,
		},
	}
}

// seed 以发起方 PeerList 和发起方自身初始化候选列表
func (q *lookup) seed(peers []types.NodeID) {
	q.merge(peers)
	q.merge([]types.NodeID{q.from})
	sortByDistance(q.target, q.shortlist)
	q.updateBest()
}

// iterate 逐轮推进直到终止
func (q *lookup) iterate(ctx context.Context) error {
	cfg := q.engine.cfg

	for q.result.Rounds < cfg.MaxSteps {
		if err := ctx.Err(); err != nil {
			q.result.Termination = TerminationCanceled
			return err
		}

		batch := q.selectBatch()
		if len(batch) == 0 {
			q.result.Termination = TerminationExhausted
			return nil
		}
		q.result.Rounds++

		before := q.best
		merged := 0
		for _, id := range batch {
			if err := ctx.Err(); err != nil {
				q.result.Termination = TerminationCanceled
				return err
			}
			n, found := q.visit(id)
			if found {
				q.result.Termination = TerminationValueFound
				return nil
			}
			merged += n
		}

		q.truncate()
		q.updateBest()
		if merged == 0 && CompareDistances(before, q.best) == 0 {
			q.result.Termination = TerminationConverged
			return nil
		}
	}

	q.result.Termination = TerminationStepLimit
	return nil
}

// selectBatch 筛掉失效候选后选取至多 α 个未访问的候选
func (q *lookup) selectBatch() []types.NodeID {
	alpha := q.engine.cfg.Alpha
	kept := make([]types.NodeID, 0, len(q.shortlist))
	batch := make([]types.NodeID, 0, alpha)

	for _, id := range q.shortlist {
		if err := q.engine.liveness.Screen(id); err != nil {
			q.penalize(id, err)
			continue
		}
		kept = append(kept, id)
		if _, done := q.visited[id]; !done && len(batch) < alpha {
			batch = append(batch, id)
		}
	}
	q.shortlist = kept
	return batch
}

// visit 访问一个候选，返回新合并的标识数以及是否命中值
func (q *lookup) visit(id types.NodeID) (int, bool) {
	e := q.engine

	if err := e.liveness.Probe(q.from, id); err != nil {
		q.discard(id, err)
		return 0, false
	}
	q.visited[id] = struct{}{}
	q.result.Visited++

	if e.cfg.LearnFromResponses && id != q.from {
		if err := e.collab.ObserveContact(q.from, id); err != nil {
			logger.Debug("记录应答方失败", "queryID", q.result.QueryID, "peer", id.ShortString(), "error", err)
		}
	}

	if q.mode == ModeFindValue {
		value, found, err := e.collab.FindValue(q.from, id, q.key)
		if err != nil {
			q.discard(id, err)
			return 0, false
		}
		if found {
			q.result.Value = value
			q.result.Found = true
			q.result.ValueFrom = id
			return 0, true
		}
	}

	neighbors, err := e.collab.FindNode(q.from, id, q.target)
	if err != nil {
		q.discard(id, err)
		return 0, false
	}
	return q.merge(neighbors), false
}

// merge 追加从未出现过的标识，返回追加数量
func (q *lookup) merge(ids []types.NodeID) int {
	added := 0
	for _, id := range ids {
		if _, ok := q.seen[id]; ok {
			continue
		}
		q.seen[id] = struct{}{}
		q.shortlist = append(q.shortlist, id)
		added++
	}
	return added
}

// discard 从候选列表移除并按原因处理
func (q *lookup) discard(id types.NodeID, cause error) {
	kept := q.shortlist[:0]
	for _, c := range q.shortlist {
		if c != id {
			kept = append(kept, c)
		}
	}
	q.shortlist = kept
	q.penalize(id, cause)
}

// penalize 记录丢弃；失效节点触发全局驱逐（每次查询每个标识至多一次）
func (q *lookup) penalize(id types.NodeID, cause error) {
	if _, ok := q.dropped[id]; ok {
		return
	}
	q.dropped[id] = struct{}{}

	logger.Debug("丢弃候选", "queryID", q.result.QueryID, "peer", id.ShortString(), "cause", cause)
	if errors.Is(cause, ErrUnreachable) {
		q.engine.liveness.Evict(id)
		q.result.Evicted = append(q.result.Evicted, id)
	}
}

// truncate 排序并保留发起方加上最近的 K 个其他候选
//
// 发起方不占 K 的名额：它留在候选列表中只为读取自身 PeerList，complete 会将其排除，结果仍至多 K 个。
func (q *lookup) truncate() {
	sortByDistance(q.target, q.shortlist)

	k := q.engine.cfg.BucketSize
	kept := q.shortlist[:0]
	others := 0
	for _, id := range q.shortlist {
		if id == q.from {
			kept = append(kept, id)
			continue
		}
		if others < k {
			kept = append(kept, id)
			others++
		}
	}
	q.shortlist = kept
}

// updateBest 用当前候选列表更新已知最近距离
func (q *lookup) updateBest() {
	for _, id := range q.shortlist {
		if d := XORDistance(id, q.target); CompareDistances(d, q.best) < 0 {
			q.best = d
		}
	}
}

// complete 生成最终结果：最近的 K 个存活候选，不含发起方
func (q *lookup) complete() *LookupResult {
	sortByDistance(q.target, q.shortlist)

	k := q.engine.cfg.BucketSize
	closest := make([]types.NodeID, 0, k)
	for _, id := range q.shortlist {
		if len(closest) == k {
			break
		}
		if id == q.from {
			continue
		}
		if err := q.engine.liveness.Screen(id); err != nil {
			q.penalize(id, err)
			continue
		}
		closest = append(closest, id)
	}
	q.result.Closest = closest
	return q.result
}
