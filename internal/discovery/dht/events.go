package dht

import (
	"github.com/dep2p/go-kadcore/internal/core/eventbus"
	"github.com/dep2p/go-kadcore/pkg/types"
)

// networkEvents 成员变化事件的发射器
//
// nil 接收者上的方法为空操作。
type networkEvents struct {
	joined  *eventbus.Emitter
	died    *eventbus.Emitter
	evicted *eventbus.Emitter
}

func newNetworkEvents(bus *eventbus.Bus) (*networkEvents, error) {
	joined, err := bus.Emitter(new(types.EvtNodeJoined))
	if err != nil {
		return nil, err
	}
	died, err := bus.Emitter(new(types.EvtNodeDied))
	if err != nil {
		return nil, err
	}
	evicted, err := bus.Emitter(new(types.EvtNodeEvicted))
	if err != nil {
		return nil, err
	}
	return &networkEvents{joined: joined, died: died, evicted: evicted}, nil
}

func (e *networkEvents) emit(em *eventbus.Emitter, evt interface{}) {
	if err := em.Emit(evt); err != nil {
		logger.Debug("发射成员事件失败", "error", err)
	}
}

func (e *networkEvents) nodeJoined(evt types.EvtNodeJoined) {
	if e != nil {
		e.emit(e.joined, evt)
	}
}

func (e *networkEvents) nodeDied(evt types.EvtNodeDied) {
	if e != nil {
		e.emit(e.died, evt)
	}
}

func (e *networkEvents) nodeEvicted(evt types.EvtNodeEvicted) {
	if e != nil {
		e.emit(e.evicted, evt)
	}
}

func (e *networkEvents) close() {
	if e == nil {
		return
	}
	_ = e.joined.Close()
	_ = e.died.Close()
	_ = e.evicted.Close()
}
