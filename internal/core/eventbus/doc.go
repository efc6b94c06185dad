// Package eventbus 实现进程内事件总线
//
// 按事件类型分发，发射不阻塞：订阅者缓冲区满时丢弃事件并计数。
// DHT 网络用它发布成员变化（加入、失效、驱逐）。
//
//	bus := eventbus.NewBus()
//
//	sub, _ := bus.Subscribe(new(types.EvtNodeDied))
//	defer sub.Close()
//
//	em, _ := bus.Emitter(new(types.EvtNodeDied))
//	_ = em.Emit(types.EvtNodeDied{ID: id})
//
//	evt := (<-sub.Out()).(types.EvtNodeDied)
//
// Bus.Close 关闭所有订阅通道，之后的 Subscribe 返回 ErrClosed，Emit 静默丢弃。
package eventbus
