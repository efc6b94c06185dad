package dht

import (
	"bytes"
	"math/bits"
	"sort"

	"github.com/dep2p/go-kadcore/pkg/types"
)

// Distance XOR 距离（大端序，按字节字典序比较）
type Distance = types.NodeID

// MaxDistance 最大距离（全 1）
var MaxDistance = func() Distance {
	var d Distance
	for i := range d {
		d[i] = 0xff
	}
	return d
}()

// XORDistance 计算两个标识的 XOR 距离
func XORDistance(a, b types.NodeID) Distance {
	var d Distance
	for i := range d {
		d[i] = a[i] ^ b[i]
	}
	return d
}

// CompareDistances 比较两个距离
// 返回：
//
//	-1 如果 d1 < d2
//	 0 如果 d1 == d2
//	 1 如果 d1 > d2
func CompareDistances(d1, d2 Distance) int {
	return bytes.Compare(d1[:], d2[:])
}

// CompareDistance 比较 a 和 b 到 target 的距离
func CompareDistance(a, b, target types.NodeID) int {
	return CompareDistances(XORDistance(a, target), XORDistance(b, target))
}

// ClosestK 返回 candidates 中距 target 最近的至多 k 个标识
//
// 稳定排序：距离相同的标识保持输入顺序。不修改输入切片。
func ClosestK(target types.NodeID, candidates []types.NodeID, k int) []types.NodeID {
	if k <= 0 || len(candidates) == 0 {
		return []types.NodeID{}
	}

	sorted := make([]types.NodeID, len(candidates))
	copy(sorted, candidates)
	sortByDistance(target, sorted)

	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// sortByDistance 按到 target 的距离原地稳定排序
func sortByDistance(target types.NodeID, ids []types.NodeID) {
	sort.SliceStable(ids, func(i, j int) bool {
		return CompareDistance(ids[i], ids[j], target) < 0
	})
}

// CommonPrefixLen 计算两个标识的公共前缀位数
func CommonPrefixLen(a, b types.NodeID) int {
	d := XORDistance(a, b)
	for i, v := range d {
		if v != 0 {
			return i*8 + bits.LeadingZeros8(v)
		}
	}
	return types.IDBits
}
