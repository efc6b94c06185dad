// Package types 定义 kadcore 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 kadcore 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - ids.go - NodeID（160 位标识符空间中的节点与键标识）
//   - events.go - 成员变化事件（加入、失效、驱逐）
package types
