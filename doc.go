// Package kadcore 提供 Kademlia 风格 DHT 的路由与查询核心
//
// 网络在进程内模拟：每个节点有 160 位标识、容量为 K 的 PeerList
// 和本地键值存储，RPC（ping / store / find_value / find_node）同步分发。
//
// # 快速开始
//
//	cluster, err := kadcore.New(ctx, kadcore.WithPreset(kadcore.PresetDemo))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cluster.Close()
//
//	ids, _ := cluster.AddNodes(5)
//	for _, id := range ids[1:] {
//	    _ = cluster.Bootstrap(id, ids[0])
//	}
//
//	_, _ = cluster.Store(ctx, ids[0], []byte("hello"), []byte("world"))
//	res, _ := cluster.FindValue(ctx, ids[3], []byte("hello"))
//
// # 查询
//
// FindNode/FindValue 每轮最多访问 α 个候选，按距离顺序逐个访问，
// 遇到失效节点立即从所有 PeerList 中驱逐。结果至多 K 个、按 XOR 距离升序、
// 不含发起方。未找到值不是错误，LookupResult.Found 为 false。
//
// # 故障注入
//
// Kill 将节点标记为失效：它仍在成员表中，但对所有 RPC 返回 ErrUnreachable。
package kadcore
