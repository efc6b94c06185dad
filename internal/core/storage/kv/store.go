// Package kv 提供带前缀隔离的 KV 存储抽象层
//
// 所有模拟节点共享同一个存储引擎，每个节点的本地存储使用
// 节点标识作为前缀隔离：
//
//	n/<20 字节节点标识>/<键>
//
// # 使用示例
//
//	eng := memory.New()
//	store := kv.New(eng, kv.NodePrefix(id))
//	store.Put([]byte("hello"), []byte("world"))  // 实际键: n/<id>/hello
package kv

import (
	"errors"

	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
	"github.com/dep2p/go-kadcore/pkg/types"
)

// Store 带前缀隔离的 KV 存储
type Store struct {
	engine engine.Engine
	prefix []byte
}

// New 创建新的 KVStore
//
// 参数:
//   - eng: 底层存储引擎
//   - prefix: 键前缀（所有操作会自动添加此前缀）
func New(eng engine.Engine, prefix []byte) *Store {
	return &Store{
		engine: eng,
		prefix: append([]byte{}, prefix...),
	}
}

// NodePrefix 返回节点本地存储的键前缀
func NodePrefix(id types.NodeID) []byte {
	p := make([]byte, 0, 3+types.IDLength)
	p = append(p, 'n', '/')
	p = append(p, id[:]...)
	return append(p, '/')
}

// Prefix 返回前缀副本
func (s *Store) Prefix() []byte {
	return append([]byte{}, s.prefix...)
}

// prefixKey 为键添加前缀
func (s *Store) prefixKey(key []byte) []byte {
	prefixed := make([]byte, len(s.prefix)+len(key))
	copy(prefixed, s.prefix)
	copy(prefixed[len(s.prefix):], key)
	return prefixed
}

// Get 获取指定键的值
//
// 键不存在时返回 (nil, false, nil)。找到空值时返回非 nil 的空切片和 true。
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	v, err := s.engine.Get(s.prefixKey(key))
	if errors.Is(err, engine.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, true, nil
}

// Put 设置键值对（覆盖已有值）
func (s *Store) Put(key, value []byte) error {
	return s.engine.Put(s.prefixKey(key), value)
}

// Delete 删除指定键
func (s *Store) Delete(key []byte) error {
	return s.engine.Delete(s.prefixKey(key))
}

// Has 检查键是否存在
func (s *Store) Has(key []byte) (bool, error) {
	return s.engine.Has(s.prefixKey(key))
}
