// Package memory 提供进程内 map 存储引擎
package memory

import (
	"sync"

	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
)

// Engine 进程内存储引擎
type Engine struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

var _ engine.Engine = (*Engine)(nil)

// New 创建内存引擎
func New() *Engine {
	return &Engine{data: make(map[string][]byte)}
}

// Get 获取指定键的值
func (e *Engine) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, engine.ErrEmptyKey
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, engine.ErrClosed
	}
	v, ok := e.data[string(key)]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return append([]byte{}, v...), nil
}

// Put 设置键值对
func (e *Engine) Put(key, value []byte) error {
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.ErrClosed
	}
	e.data[string(key)] = append([]byte{}, value...)
	return nil
}

// Has 检查键是否存在
func (e *Engine) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, engine.ErrEmptyKey
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false, engine.ErrClosed
	}
	_, ok := e.data[string(key)]
	return ok, nil
}

// Delete 删除指定键
func (e *Engine) Delete(key []byte) error {
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.ErrClosed
	}
	delete(e.data, string(key))
	return nil
}

// Close 关闭引擎
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return engine.ErrClosed
	}
	e.closed = true
	e.data = nil
	return nil
}
