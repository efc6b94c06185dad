package dht

import (
	"errors"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-kadcore/internal/core/eventbus"
	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
	"github.com/dep2p/go-kadcore/internal/core/storage/engine/memory"
	"github.com/dep2p/go-kadcore/internal/core/storage/kv"
	"github.com/dep2p/go-kadcore/internal/core/wire"
	"github.com/dep2p/go-kadcore/pkg/lib/log"
	"github.com/dep2p/go-kadcore/pkg/types"
)

var logger = log.Logger("discovery/dht")

// maxIDAttempts 随机标识冲突时的最大重试次数
const maxIDAttempts = 16

// ============================================================================
//                              协作方接口
// ============================================================================

// Transport 节点间 RPC
//
// 所有方法以 from 作为调用方。目标不在成员表时返回 ErrNodeNotFound，
// 目标已失效时返回 ErrUnreachable（均以 DHTError 包装）。
type Transport interface {
	Ping(from, to types.NodeID) error
	Store(from, to types.NodeID, key, value []byte) error
	FindValue(from, to types.NodeID, key []byte) (value []byte, found bool, err error)
	FindNode(from, to, target types.NodeID) ([]types.NodeID, error)
}

// Membership 成员表只读视图（不产生 RPC，也不修改联系人）
type Membership interface {
	Contains(id types.NodeID) bool
	IsAlive(id types.NodeID) bool
	Peers(id types.NodeID) ([]types.NodeID, error)
}

// Evictor 从所有节点的 PeerList 中移除一个标识
type Evictor interface {
	EvictEverywhere(id types.NodeID) int
}

// ContactObserver 让 owner 记录一次与 contact 的联系
type ContactObserver interface {
	ObserveContact(owner, contact types.NodeID) error
}

// Collaborator 查询引擎需要的全部协作能力
type Collaborator interface {
	Transport
	Membership
	Evictor
	ContactObserver
}

var _ Collaborator = (*Network)(nil)

// ============================================================================
//                              Network
// ============================================================================

// Network 进程内模拟网络
//
// 持有所有节点记录，负责 RPC 分发。所有节点共享一个存储引擎，
// 各自的本地存储通过 kv 前缀隔离。
type Network struct {
	cfg        *Config
	clock      clock.Clock
	engine     engine.Engine
	ownsEngine bool
	metrics    *Metrics
	bus        *eventbus.Bus
	events     *networkEvents

	mu      sync.Mutex
	records map[types.NodeID]*nodeRecord
	order   []types.NodeID
	closed  bool
}

// NetworkOption Network 选项
type NetworkOption func(*Network)

// WithClock 设置时钟（测试中使用 clock.NewMock）
func WithClock(c clock.Clock) NetworkOption {
	return func(n *Network) {
		n.clock = c
	}
}

// WithEngine 设置共享存储引擎（由调用方负责关闭）
func WithEngine(e engine.Engine) NetworkOption {
	return func(n *Network) {
		n.engine = e
	}
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) NetworkOption {
	return func(n *Network) {
		n.metrics = m
	}
}

// WithEventBus 在 bus 上发布成员事件（EvtNodeJoined/EvtNodeDied/EvtNodeEvicted）
func WithEventBus(bus *eventbus.Bus) NetworkOption {
	return func(n *Network) {
		n.bus = bus
	}
}

// NewNetwork 创建空网络
//
// 未指定存储引擎时使用内存引擎，并在 Close 时关闭。
func NewNetwork(cfg *Config, opts ...NetworkOption) (*Network, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := &Network{
		cfg:     cfg,
		clock:   clock.New(),
		records: make(map[types.NodeID]*nodeRecord),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.bus != nil {
		events, err := newNetworkEvents(n.bus)
		if err != nil {
			return nil, err
		}
		n.events = events
	}
	if n.engine == nil {
		n.engine = memory.New()
		n.ownsEngine = true
	}
	return n, nil
}

// Config 返回配置
func (n *Network) Config() *Config {
	return n.cfg
}

// Metrics 返回指标（可能为 nil）
func (n *Network) Metrics() *Metrics {
	return n.metrics
}

// ============================================================================
//                              成员管理
// ============================================================================

// AddNode 以随机标识加入一个节点
//
// 标识冲突时重新生成。
func (n *Network) AddNode() (types.NodeID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return types.EmptyNodeID, ErrNetworkClosed
	}
	for i := 0; i < maxIDAttempts; i++ {
		id, err := types.RandomNodeID()
		if err != nil {
			return types.EmptyNodeID, err
		}
		if _, exists := n.records[id]; exists {
			continue
		}
		n.addLocked(id)
		return id, nil
	}
	return types.EmptyNodeID, ErrIDExhausted
}

// AddNodeWithID 以指定标识加入一个节点
func (n *Network) AddNodeWithID(id types.NodeID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNetworkClosed
	}
	if _, exists := n.records[id]; exists {
		return NewDHTError("add_node", ErrDuplicateNode, id.ShortString())
	}
	n.addLocked(id)
	return nil
}

func (n *Network) addLocked(id types.NodeID) {
	n.records[id] = &nodeRecord{
		id:       id,
		alive:    true,
		store:    kv.New(n.engine, kv.NodePrefix(id)),
		peers:    NewPeerList(id, n.cfg.BucketSize),
		joinedAt: n.clock.Now(),
	}
	n.order = append(n.order, id)
	n.events.nodeJoined(types.EvtNodeJoined{ID: id, At: n.records[id].joinedAt})
	logger.Debug("节点加入", "node", id.ShortString(), "members", len(n.order))
}

// Contains 检查标识是否在成员表中
func (n *Network) Contains(id types.NodeID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.records[id]
	return ok
}

// Len 返回成员数量（含失效节点）
func (n *Network) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.order)
}

// Members 按加入顺序返回所有成员
func (n *Network) Members() []types.NodeID {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]types.NodeID, len(n.order))
	copy(out, n.order)
	return out
}

// Peers 返回节点 PeerList 快照（从旧到新）
func (n *Network) Peers(id types.NodeID) ([]types.NodeID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rec, ok := n.records[id]
	if !ok {
		return nil, NewDHTError("peers", ErrNodeNotFound, id.ShortString())
	}
	return rec.peers.IDs(), nil
}

// Info 返回节点诊断快照
func (n *Network) Info(id types.NodeID) (NodeInfo, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rec, ok := n.records[id]
	if !ok {
		return NodeInfo{}, NewDHTError("info", ErrNodeNotFound, id.ShortString())
	}
	return rec.info(), nil
}

// LocalValue 直接读取节点本地存储
//
// 用于诊断，不经过 RPC，不检查存活，也不修改联系人。
func (n *Network) LocalValue(id types.NodeID, key []byte) ([]byte, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rec, ok := n.records[id]
	if !ok {
		return nil, false, NewDHTError("local_value", ErrNodeNotFound, id.ShortString())
	}
	return rec.store.Get(key)
}

// ObserveContact 让 owner 记录一次与 contact 的联系
func (n *Network) ObserveContact(owner, contact types.NodeID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	rec, ok := n.records[owner]
	if !ok {
		return NewDHTError("observe", ErrNodeNotFound, owner.ShortString())
	}
	rec.peers.Observe(contact)
	return nil
}

// Bootstrap 新节点通过已知节点加入
//
// joiner 向 bootstrap 发 ping（bootstrap 因此记录 joiner），
// 成功后 joiner 记录 bootstrap。
func (n *Network) Bootstrap(joiner, bootstrap types.NodeID) error {
	if err := n.Ping(joiner, bootstrap); err != nil {
		return err
	}
	if err := n.ObserveContact(joiner, bootstrap); err != nil {
		return err
	}
	logger.Debug("引导完成", "joiner", joiner.ShortString(), "bootstrap", bootstrap.ShortString())
	return nil
}

// Close 关闭网络，之后所有 RPC 返回 ErrNetworkClosed
func (n *Network) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	n.events.close()
	if n.ownsEngine {
		return n.engine.Close()
	}
	return nil
}

// ============================================================================
//                              RPC 分发
// ============================================================================

// Ping 存活探测
func (n *Network) Ping(from, to types.NodeID) error {
	_, err := n.call(&wire.Message{Op: wire.OpPing, From: from, To: to})
	return err
}

// Store 将键值写入 to 的本地存储
func (n *Network) Store(from, to types.NodeID, key, value []byte) error {
	_, err := n.call(&wire.Message{Op: wire.OpStore, From: from, To: to, Key: key, Value: value})
	return err
}

// FindValue 在 to 的本地存储中查找键
//
// 找到空值时返回非 nil 的空切片和 true。
func (n *Network) FindValue(from, to types.NodeID, key []byte) ([]byte, bool, error) {
	resp, err := n.call(&wire.Message{Op: wire.OpFindValue, From: from, To: to, Key: key})
	if err != nil {
		return nil, false, err
	}
	if !resp.Found {
		return nil, false, nil
	}
	value := resp.Value
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

// FindNode 返回 to 的 PeerList 中距 target 最近的至多 K 个标识
func (n *Network) FindNode(from, to, target types.NodeID) ([]types.NodeID, error) {
	resp, err := n.call(&wire.Message{Op: wire.OpFindNode, From: from, To: to, Target: target})
	if err != nil {
		return nil, err
	}
	if resp.Peers == nil {
		return []types.NodeID{}, nil
	}
	return resp.Peers, nil
}

// call 发送请求并把响应状态转换为两级错误
func (n *Network) call(req *wire.Message) (*wire.Message, error) {
	op := req.Op.String()

	resp, err := n.dispatch(n.transmit(req))
	if err != nil {
		n.metrics.observeRPC(op, "error")
		return nil, NewDHTError(op, err, req.To.ShortString())
	}
	resp = n.transmit(resp)
	n.metrics.observeRPC(op, resp.Status.String())

	switch resp.Status {
	case wire.StatusOK:
		return resp, nil
	case wire.StatusNotFound:
		return nil, NewDHTError(op, ErrNodeNotFound, req.To.ShortString())
	default:
		return nil, NewDHTError(op, ErrUnreachable, req.To.ShortString())
	}
}

// dispatch 在锁内把请求交给目标节点处理
func (n *Network) dispatch(req *wire.Message) (*wire.Message, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, ErrNetworkClosed
	}
	rec, ok := n.records[req.To]
	if !ok {
		resp := req.Reply()
		resp.Status = wire.StatusNotFound
		return resp, nil
	}
	resp, err := rec.handle(req, n.cfg.BucketSize)
	if errors.Is(err, ErrUnreachable) {
		resp = req.Reply()
		resp.Status = wire.StatusUnreachable
		return resp, nil
	}
	return resp, err
}

// transmit 启用编解码时让消息经过一次线格式往返
func (n *Network) transmit(m *wire.Message) *wire.Message {
	if !n.cfg.EnableWireCodec {
		return m
	}
	b, err := wire.Encode(m)
	if err != nil {
		logger.Error("线格式编码失败", "op", m.Op.String(), "error", err)
		return m
	}
	n.metrics.observeWireBytes(len(b))
	decoded, err := wire.Decode(b)
	if err != nil {
		logger.Error("线格式解码失败", "op", m.Op.String(), "error", err)
		return m
	}
	return decoded
}
