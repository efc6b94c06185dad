package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
	"github.com/dep2p/go-kadcore/internal/core/storage/engine/badger"
	"github.com/dep2p/go-kadcore/internal/core/storage/engine/memory"
	"github.com/dep2p/go-kadcore/pkg/types"
)

// engines 返回所有引擎实现，确保 Store 在两种引擎上语义一致
func engines(t *testing.T) map[string]engine.Engine {
	t.Helper()

	bdg, err := badger.New("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdg.Close() })

	return map[string]engine.Engine{
		"memory": memory.New(),
		"badger": bdg,
	}
}

// TestStore_PrefixIsolation 测试不同节点前缀互相隔离
func TestStore_PrefixIsolation(t *testing.T) {
	for name, eng := range engines(t) {
		t.Run(name, func(t *testing.T) {
			a := New(eng, NodePrefix(types.NodeIDFromKey([]byte("a"))))
			b := New(eng, NodePrefix(types.NodeIDFromKey([]byte("b"))))

			require.NoError(t, a.Put([]byte("hello"), []byte("world")))

			v, found, err := a.Get([]byte("hello"))
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []byte("world"), v)

			v, found, err = b.Get([]byte("hello"))
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, v)

			ok, err := b.Has([]byte("hello"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	t.Log("✅ 前缀隔离正确")
}

// TestStore_EmptyValueAndEmptyKey 测试空值可区分且空键可用
func TestStore_EmptyValueAndEmptyKey(t *testing.T) {
	for name, eng := range engines(t) {
		t.Run(name, func(t *testing.T) {
			s := New(eng, NodePrefix(types.NodeIDFromKey([]byte("n"))))

			// 前缀保证引擎侧的键非空
			require.NoError(t, s.Put(nil, []byte{}))

			v, found, err := s.Get(nil)
			require.NoError(t, err)
			assert.True(t, found)
			assert.NotNil(t, v)
			assert.Empty(t, v)

			require.NoError(t, s.Delete(nil))
			_, found, err = s.Get(nil)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

// TestNodePrefix 测试前缀格式
func TestNodePrefix(t *testing.T) {
	id := types.NodeIDFromKey([]byte("x"))
	p := NodePrefix(id)

	assert.Len(t, p, 3+types.IDLength)
	assert.Equal(t, byte('n'), p[0])
	assert.Equal(t, byte('/'), p[len(p)-1])

	s := New(memory.New(), p)
	assert.Equal(t, p, s.Prefix())
}
