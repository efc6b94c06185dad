package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-kadcore/internal/core/storage/engine"
)

// testEngine 创建内存模式的测试引擎
func testEngine(t *testing.T) *Engine {
	t.Helper()

	e, err := New("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// TestEngine_PutGet 测试基本读写
func TestEngine_PutGet(t *testing.T) {
	e := testEngine(t)

	require.NoError(t, e.Put([]byte("k"), []byte("v1")))
	got, err := e.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, e.Put([]byte("k"), []byte("v2")))
	got, err = e.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	t.Log("✅ 读写正确")
}

// TestEngine_GetNotFound 测试不存在的键
func TestEngine_GetNotFound(t *testing.T) {
	e := testEngine(t)

	_, err := e.Get([]byte("missing"))
	assert.ErrorIs(t, err, engine.ErrNotFound)

	ok, err := e.Has([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestEngine_EmptyValue 测试空值与不存在可区分
func TestEngine_EmptyValue(t *testing.T) {
	e := testEngine(t)

	require.NoError(t, e.Put([]byte("empty"), []byte{}))

	got, err := e.Get([]byte("empty"))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	ok, err := e.Has([]byte("empty"))
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestEngine_Delete 测试删除
func TestEngine_Delete(t *testing.T) {
	e := testEngine(t)

	require.NoError(t, e.Put([]byte("k"), []byte("v")))
	require.NoError(t, e.Delete([]byte("k")))
	_, err := e.Get([]byte("k"))
	assert.ErrorIs(t, err, engine.ErrNotFound)

	// 删除不存在的键不报错
	assert.NoError(t, e.Delete([]byte("never")))
}

// TestEngine_EmptyKeyAndClosed 测试空键与关闭后的行为
func TestEngine_EmptyKeyAndClosed(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)

	assert.ErrorIs(t, e.Put(nil, []byte("v")), engine.ErrEmptyKey)

	require.NoError(t, e.Close())
	assert.ErrorIs(t, e.Close(), engine.ErrClosed)
	_, err = e.Get([]byte("k"))
	assert.ErrorIs(t, err, engine.ErrClosed)
}

// TestEngine_Persistent 测试持久化模式重开后数据仍在
func TestEngine_Persistent(t *testing.T) {
	dir := t.TempDir()

	e, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, e.Put([]byte("k"), []byte("v")))
	require.NoError(t, e.Close())

	e, err = New(dir)
	require.NoError(t, err)
	defer e.Close()

	got, err := e.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
