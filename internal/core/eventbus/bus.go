package eventbus

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-kadcore/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrClosed 事件总线已关闭
	ErrClosed = errors.New("eventbus closed")
	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = errors.New("invalid event type")
	// ErrNonPointerType 非指针类型
	ErrNonPointerType = errors.New("event type must be a pointer")
)

// ============================================================================
// Bus
// ============================================================================

// Bus 事件总线
type Bus struct {
	mu     sync.RWMutex
	nodes  map[reflect.Type]*node
	closed bool
}

// node 单个事件类型的分发点
type node struct {
	lk        sync.Mutex
	typ       reflect.Type
	sinks     []*Subscription
	nEmitters atomic.Int32
	keepLast  bool
	last      interface{}
	dropCount atomic.Int64
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{
		nodes: make(map[reflect.Type]*node),
	}
}

// Subscribe 订阅 eventType（传指针，如 new(EvtNodeDied)）的事件
func (b *Bus) Subscribe(eventType interface{}, opts ...SubscriptionOpt) (*Subscription, error) {
	typ, err := elemType(eventType)
	if err != nil {
		return nil, err
	}

	settings := &subscriptionSettings{buffer: defaultBufSize}
	for _, opt := range opts {
		opt(settings)
	}

	sub := &Subscription{
		bus: b,
		typ: typ,
		out: make(chan interface{}, settings.buffer),
	}

	ok := b.withNode(typ, func(n *node) {
		n.sinks = append(n.sinks, sub)
		if n.keepLast && n.last != nil {
			sub.out <- n.last
		}
	})
	if !ok {
		return nil, ErrClosed
	}
	return sub, nil
}

// Emitter 获取 eventType 的发射器
func (b *Bus) Emitter(eventType interface{}, opts ...EmitterOpt) (*Emitter, error) {
	typ, err := elemType(eventType)
	if err != nil {
		return nil, err
	}

	settings := &emitterSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	var n *node
	ok := b.withNode(typ, func(nd *node) {
		n = nd
		n.nEmitters.Add(1)
		if settings.stateful {
			n.keepLast = true
		}
	})
	if !ok {
		return nil, ErrClosed
	}
	return &Emitter{bus: b, node: n, typ: typ}, nil
}

// EventTypes 返回已注册的事件类型（零值实例）
func (b *Bus) EventTypes() []interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]interface{}, 0, len(b.nodes))
	for typ := range b.nodes {
		out = append(out, reflect.Zero(typ).Interface())
	}
	return out
}

// Dropped 返回 eventType 因缓冲区满被丢弃的事件数
func (b *Bus) Dropped(eventType interface{}) int64 {
	typ, err := elemType(eventType)
	if err != nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n, ok := b.nodes[typ]; ok {
		return n.dropCount.Load()
	}
	return 0
}

// Close 关闭所有订阅
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true

	var subs []*Subscription
	for _, n := range b.nodes {
		n.lk.Lock()
		subs = append(subs, n.sinks...)
		n.lk.Unlock()
	}
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}

// ============================================================================
// 内部方法
// ============================================================================

func elemType(eventType interface{}) (reflect.Type, error) {
	if eventType == nil {
		return nil, ErrInvalidEventType
	}
	typ := reflect.TypeOf(eventType)
	if typ.Kind() != reflect.Ptr {
		return nil, ErrNonPointerType
	}
	return typ.Elem(), nil
}

// withNode 在类型节点上执行 cb，总线已关闭时返回 false
func (b *Bus) withNode(typ reflect.Type, cb func(*node)) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}

	n, ok := b.nodes[typ]
	if !ok {
		n = &node{typ: typ}
		b.nodes[typ] = n
	}

	n.lk.Lock()
	b.mu.Unlock()

	cb(n)
	n.lk.Unlock()
	return true
}

// tryDropNode 没有订阅者和发射器时删除类型节点
func (b *Bus) tryDropNode(typ reflect.Type) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.nodes[typ]
	if !ok {
		return
	}
	n.lk.Lock()
	idle := len(n.sinks) == 0 && n.nEmitters.Load() == 0 && !n.keepLast
	n.lk.Unlock()
	if idle {
		delete(b.nodes, typ)
	}
}

// removeSub 移除订阅
func (b *Bus) removeSub(sub *Subscription) {
	b.mu.RLock()
	n, ok := b.nodes[sub.typ]
	b.mu.RUnlock()
	if !ok {
		return
	}

	n.lk.Lock()
	for i, s := range n.sinks {
		if s == sub {
			n.sinks = append(n.sinks[:i], n.sinks[i+1:]...)
			break
		}
	}
	n.lk.Unlock()

	b.tryDropNode(sub.typ)
}

// emit 非阻塞地发给所有订阅者
func (n *node) emit(event interface{}) {
	n.lk.Lock()
	defer n.lk.Unlock()

	if n.keepLast {
		n.last = event
	}

	for _, sub := range n.sinks {
		select {
		case sub.out <- event:
		default:
			// 每 100 次丢弃警告一次
			if dropped := n.dropCount.Add(1); dropped%100 == 1 {
				logger.Warn("慢消费者检测",
					"dropped", dropped,
					"type", n.typ.String(),
				)
			}
		}
	}
}
