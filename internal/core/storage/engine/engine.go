// Package engine 定义存储引擎接口
//
// 节点的本地键值存储建立在引擎之上，所有节点共享同一个引擎实例，
// 通过 kv.Store 的键前缀隔离。
package engine

// Kind 引擎类型
type Kind string

const (
	// KindMemory 进程内 map 实现
	KindMemory Kind = "memory"
	// KindBadger BadgerDB 实现（Path 为空时使用内存模式）
	KindBadger Kind = "badger"
)

// Valid 检查引擎类型是否受支持
func (k Kind) Valid() bool {
	return k == KindMemory || k == KindBadger
}

// Engine 键值存储引擎
//
// 实现必须保证：
//   - Get 对不存在的键返回 ErrNotFound
//   - 空值可以写入，且读出后与"不存在"可区分
//   - 读写的切片与调用方不共享底层数组
type Engine interface {
	// Get 获取指定键的值
	Get(key []byte) ([]byte, error)

	// Put 设置键值对（覆盖已有值）
	Put(key, value []byte) error

	// Has 检查键是否存在
	Has(key []byte) (bool, error)

	// Delete 删除指定键（不存在时不报错）
	Delete(key []byte) error

	// Close 关闭引擎
	Close() error
}
