package dht

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-kadcore/pkg/types"
)

// TestPeerList_ObserveOrder 测试从旧到新的顺序
func TestPeerList_ObserveOrder(t *testing.T) {
	pl := NewPeerList(idFromByte(0xff), 4)

	pl.Observe(idFromByte(1))
	pl.Observe(idFromByte(2))
	pl.Observe(idFromByte(3))
	assert.Equal(t, []types.NodeID{idFromByte(1), idFromByte(2), idFromByte(3)}, pl.IDs())

	// 再次联系移到最新位置
	pl.Observe(idFromByte(1))
	assert.Equal(t, []types.NodeID{idFromByte(2), idFromByte(3), idFromByte(1)}, pl.IDs())
	assert.Equal(t, 3, pl.Len())

	t.Log("✅ PeerList 顺序正确")
}

// TestPeerList_EvictsOldest 测试超出容量时丢弃最旧的联系人
func TestPeerList_EvictsOldest(t *testing.T) {
	pl := NewPeerList(idFromByte(0xff), 2)

	assert.False(t, pl.Observe(idFromByte(1)))
	assert.False(t, pl.Observe(idFromByte(2)))
	assert.True(t, pl.Observe(idFromByte(3)))

	assert.Equal(t, []types.NodeID{idFromByte(2), idFromByte(3)}, pl.IDs())
	assert.False(t, pl.Contains(idFromByte(1)))
	assert.LessOrEqual(t, pl.Len(), pl.Cap())
}

// TestPeerList_IgnoresOwner 测试不记录所有者自身
func TestPeerList_IgnoresOwner(t *testing.T) {
	owner := idFromByte(0x42)
	pl := NewPeerList(owner, 2)

	assert.False(t, pl.Observe(owner))
	assert.Zero(t, pl.Len())
	assert.Equal(t, owner, pl.Owner())
}

// TestPeerList_Remove 测试移除
func TestPeerList_Remove(t *testing.T) {
	pl := NewPeerList(idFromByte(0xff), 3)
	pl.Observe(idFromByte(1))
	pl.Observe(idFromByte(2))

	assert.True(t, pl.Remove(idFromByte(1)))
	assert.False(t, pl.Remove(idFromByte(1)))
	assert.Equal(t, []types.NodeID{idFromByte(2)}, pl.IDs())
}

// TestPeerList_DefaultCapacity 测试非正容量使用默认值
func TestPeerList_DefaultCapacity(t *testing.T) {
	pl := NewPeerList(idFromByte(0xff), 0)
	assert.Equal(t, DefaultBucketSize, pl.Cap())

	for i := 0; i < DefaultBucketSize+3; i++ {
		pl.Observe(idFromByte(byte(i)))
	}
	assert.Equal(t, DefaultBucketSize, pl.Len())
}

// TestPeerList_IDsSnapshot 测试快照与内部状态独立
func TestPeerList_IDsSnapshot(t *testing.T) {
	pl := NewPeerList(idFromByte(0xff), 3)
	pl.Observe(idFromByte(1))

	ids := pl.IDs()
	ids[0] = idFromByte(9)
	assert.True(t, pl.Contains(idFromByte(1)))
}
