// Package dht 实现 Kademlia 风格的路由与迭代查询核心
//
// # 模块概述
//
// 所有节点运行在同一进程内，由 Network 持有成员表并分发 RPC。
// 每个节点维护一张容量为 K 的 PeerList（按最近联系排序的 LRU），
// 查询引擎在 XOR 度量下逐轮逼近目标。
//
// # 组件
//
//   - xor.go: 160 位标识符空间的距离与排序
//   - peerlist.go: 每个节点的 LRU 联系人列表
//   - handler.go: 节点对入站 RPC 的处理（存活检查与联系人记录）
//   - network.go: 成员表、RPC 分发、两级错误
//   - liveness.go: 存活标记、探测与全局驱逐
//   - query.go: FindNode / FindValue 迭代查询
//   - store.go: 键值复制到最近的 K 个节点
//   - metrics.go: Prometheus 指标
//   - events.go: 成员变化事件（加入、失效、驱逐）
//   - module.go: fx 模块装配
//
// # 执行模型
//
// 查询在调用方 goroutine 中顺序执行，不并发访问候选；
// 同一轮中后访问的候选能看到先前 RPC 对联系人列表的修改。
// Network 内部有一把互斥锁，保证从多个 goroutine 调用时的安全。
//
// # 使用示例
//
//	net, _ := dht.NewNetwork(dht.DefaultConfig())
//	a, _ := net.AddNode()
//	b, _ := net.AddNode()
//	_ = net.Bootstrap(b, a)
//
//	engine := dht.NewLookupEngine(dht.DefaultConfig(), net, nil)
//	res, _ := engine.FindNode(ctx, b, a)
package dht
