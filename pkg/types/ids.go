package types

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// ============================================================================
//                              NodeID - 标识符
// ============================================================================

const (
	// IDLength 标识符字节长度
	IDLength = 20

	// IDBits 标识符位数
	IDBits = IDLength * 8
)

// NodeID 160 位标识符
//
// 节点标识和键标识共享同一空间：节点标识随机生成，
// 键标识为键字节的 SHA-1 摘要。
//
// 外部表示格式：
//   - String(): Base58 编码
//   - ShortString(): Base58 前缀（日志简短标识）
//   - Hex(): 十六进制编码
type NodeID [IDLength]byte

// EmptyNodeID 全零标识
var EmptyNodeID NodeID

// ErrInvalidNodeID 无效的标识
var ErrInvalidNodeID = errors.New("invalid node ID: must be 20 bytes, Base58 or hex encoded")

// String 返回 Base58 字符串表示
func (id NodeID) String() string {
	return base58.Encode(id[:])
}

// ShortString 返回 Base58 前 8 个字符
func (id NodeID) ShortString() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Hex 返回十六进制字符串表示
func (id NodeID) Hex() string {
	return hex.EncodeToString(id[:])
}

// Bytes 返回字节切片副本
func (id NodeID) Bytes() []byte {
	b := make([]byte, IDLength)
	copy(b, id[:])
	return b
}

// Equal 比较两个 NodeID 是否相等
func (id NodeID) Equal(other NodeID) bool {
	return id == other
}

// IsEmpty 检查 NodeID 是否为全零
func (id NodeID) IsEmpty() bool {
	return id == EmptyNodeID
}

// NodeIDFromBytes 从字节切片创建 NodeID
func NodeIDFromBytes(b []byte) (NodeID, error) {
	if len(b) != IDLength {
		return EmptyNodeID, ErrInvalidNodeID
	}
	var id NodeID
	copy(id[:], b)
	return id, nil
}

// ParseNodeID 从字符串解析 NodeID
//
// 40 个字符的输入按十六进制解析，其余按 Base58 解析。
func ParseNodeID(s string) (NodeID, error) {
	if len(s) == hex.EncodedLen(IDLength) {
		if b, err := hex.DecodeString(s); err == nil {
			return NodeIDFromBytes(b)
		}
	}
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyNodeID, fmt.Errorf("%w: %v", ErrInvalidNodeID, err)
	}
	return NodeIDFromBytes(b)
}

// NodeIDFromKey 计算键的标识（SHA-1 摘要）
func NodeIDFromKey(key []byte) NodeID {
	return NodeID(sha1.Sum(key))
}

// RandomNodeID 生成随机标识
func RandomNodeID() (NodeID, error) {
	var id NodeID
	if _, err := rand.Read(id[:]); err != nil {
		return EmptyNodeID, fmt.Errorf("generate node id: %w", err)
	}
	return id, nil
}

// ShortStrings 批量返回短字符串，用于日志
func ShortStrings(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.ShortString()
	}
	return out
}
