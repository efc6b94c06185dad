package kadcore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-kadcore/config"
	"github.com/dep2p/go-kadcore/internal/core/eventbus"
	"github.com/dep2p/go-kadcore/internal/discovery/dht"
	"github.com/dep2p/go-kadcore/pkg/lib/log"
)

var logger = log.Logger("kadcore")

// stopTimeout 关闭 Fx 应用的超时
const stopTimeout = 10 * time.Second

// Cluster 模拟 DHT 集群
//
// Cluster 是用户交互的主入口：管理成员、注入故障并以任意成员为发起方
// 执行查询与存储。所有方法可并发调用。
type Cluster struct {
	config *config.Config
	app    *fx.App

	network *dht.Network
	lookup  *dht.LookupEngine
	router  *dht.StoreRouter
	metrics *dht.Metrics
	bus     *eventbus.Bus

	// gatherer 集群自建的 Registry（仅 Metrics.Enabled 且未注入 Registerer 时）
	gatherer prometheus.Gatherer

	mu     sync.Mutex
	closed bool
}

// New 创建并启动集群
func New(ctx context.Context, opts ...Option) (*Cluster, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	c := &Cluster{config: o.config}

	app, err := buildFxApp(o, c)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return nil, fmt.Errorf("start cluster: %w", err)
	}
	c.app = app

	logger.Info("集群已启动",
		"bucketSize", o.config.DHT.BucketSize,
		"alpha", o.config.DHT.Alpha,
		"maxSteps", o.config.DHT.MaxSteps,
		"storePolicy", o.config.DHT.StorePolicy,
		"storage", o.config.Storage.Engine,
	)
	return c, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              成员管理
// ════════════════════════════════════════════════════════════════════════════

// AddNode 加入一个随机标识的新节点，PeerList 为空
func (c *Cluster) AddNode() (NodeID, error) {
	return c.network.AddNode()
}

// AddNodeWithID 以指定标识加入节点
func (c *Cluster) AddNodeWithID(id NodeID) error {
	return c.network.AddNodeWithID(id)
}

// AddNodes 加入 count 个节点，按加入顺序返回标识
func (c *Cluster) AddNodes(count int) ([]NodeID, error) {
	ids := make([]NodeID, 0, count)
	for i := 0; i < count; i++ {
		id, err := c.network.AddNode()
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Bootstrap 让 joiner 认识 bootstrap：ping 成功后双方互相记录
func (c *Cluster) Bootstrap(joiner, bootstrap NodeID) error {
	return c.network.Bootstrap(joiner, bootstrap)
}

// Join 引导后以自身标识执行一次 FindNode，充实 joiner 的 PeerList
func (c *Cluster) Join(ctx context.Context, joiner, bootstrap NodeID) (*LookupResult, error) {
	if err := c.network.Bootstrap(joiner, bootstrap); err != nil {
		return nil, err
	}
	return c.lookup.FindNode(ctx, joiner, joiner)
}

// Kill 将节点标记为失效
func (c *Cluster) Kill(id NodeID) error {
	return c.network.MarkDead(id)
}

// Contains 检查节点是否在成员表中
func (c *Cluster) Contains(id NodeID) bool {
	return c.network.Contains(id)
}

// Members 按加入顺序返回所有成员（含失效节点）
func (c *Cluster) Members() []NodeID {
	return c.network.Members()
}

// Len 返回成员数
func (c *Cluster) Len() int {
	return c.network.Len()
}

// Node 返回节点快照
func (c *Cluster) Node(id NodeID) (NodeInfo, error) {
	return c.network.Info(id)
}

// Peers 返回节点的 PeerList（最久未联系在前）
func (c *Cluster) Peers(id NodeID) ([]NodeID, error) {
	return c.network.Peers(id)
}

// ════════════════════════════════════════════════════════════════════════════
//                              RPC 与查询
// ════════════════════════════════════════════════════════════════════════════

// Ping 由 from 向 to 发 ping
func (c *Cluster) Ping(from, to NodeID) error {
	return c.network.Ping(from, to)
}

// FindNode 以 from 为发起方查找距 target 最近的节点
func (c *Cluster) FindNode(ctx context.Context, from, target NodeID) (*LookupResult, error) {
	return c.lookup.FindNode(ctx, from, target)
}

// FindValue 以 from 为发起方查找 key 对应的值
func (c *Cluster) FindValue(ctx context.Context, from NodeID, key []byte) (*LookupResult, error) {
	return c.lookup.FindValue(ctx, from, key)
}

// Store 以 from 为发起方把键值复制到距 SHA-1(key) 最近的节点
func (c *Cluster) Store(ctx context.Context, from NodeID, key, value []byte) (*StoreReport, error) {
	return c.router.Store(ctx, from, key, value)
}

// LocalValue 读取节点本地存储（不经过 RPC）
func (c *Cluster) LocalValue(id NodeID, key []byte) ([]byte, bool, error) {
	return c.network.LocalValue(id, key)
}

// ════════════════════════════════════════════════════════════════════════════
//                              事件
// ════════════════════════════════════════════════════════════════════════════

// Subscription 事件订阅
type Subscription interface {
	// Out 返回事件通道，Close 或集群关闭后通道关闭
	Out() <-chan interface{}

	// Close 取消订阅
	Close() error
}

// Subscribe 订阅成员事件
//
// eventType 传指针，如 new(kadcore.EvtNodeDied)。bufSize <= 0 时使用默认容量，
// 缓冲区满时新事件被丢弃。
func (c *Cluster) Subscribe(eventType interface{}, bufSize int) (Subscription, error) {
	sub, err := c.bus.Subscribe(eventType, eventbus.BufSize(bufSize))
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              访问器与生命周期
// ════════════════════════════════════════════════════════════════════════════

// Config 返回生效的配置
func (c *Cluster) Config() *config.Config {
	return c.config
}

// Gatherer 返回集群自建的指标 Registry，未启用时为 nil
func (c *Cluster) Gatherer() prometheus.Gatherer {
	return c.gatherer
}

// Close 停止集群并释放存储
//
// 重复调用返回 nil。
func (c *Cluster) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := c.app.Stop(ctx); err != nil {
		return fmt.Errorf("stop cluster: %w", err)
	}
	logger.Info("集群已关闭")
	return nil
}
