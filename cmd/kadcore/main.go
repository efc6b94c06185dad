// Package main 提供 kadcore 演示程序入口
//
// 流程：创建 N 个节点并互相引导，存储一个键值，从另一节点查找，
// 使一个节点失效后再次查找，最后让新节点经节点 0 加入并做一次自查找。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dep2p/go-kadcore"
	"github.com/dep2p/go-kadcore/config"
	"github.com/dep2p/go-kadcore/internal/util/logger"
	"github.com/dep2p/go-kadcore/pkg/lib/log"
)

var clog = log.Logger("kadcore/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径（JSON）")
	preset     = flag.String("preset", kadcore.PresetDemo, "预设配置 (demo/standard)")
	nodeCount  = flag.Int("nodes", 5, "初始节点数")
	key        = flag.String("key", "hello", "演示存储的键")
	value      = flag.String("value", "world", "演示存储的值")
	killIndex  = flag.Int("kill", 2, "被标记失效的节点序号（<0 跳过）")
	logLevel   = flag.String("log-level", "", "日志级别，如 info 或 discovery/dht=debug,warn")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(kadcore.VersionInfo())
		return nil
	}
	if *nodeCount < 2 {
		return fmt.Errorf("至少需要 2 个节点，当前 %d", *nodeCount)
	}

	cfg := logger.ConfigFromEnv()
	if *logLevel != "" {
		logger.ApplyLevelSpec(cfg, *logLevel)
	}
	logger.Install(cfg)

	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx := context.Background()
	cluster, err := kadcore.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = cluster.Close() }()

	fmt.Printf("📦 %s\n", kadcore.VersionInfo())
	return demo(ctx, cluster)
}

// buildOptions 构建选项
//
// 配置文件先加载，预设在其上覆盖 DHT 参数。
func buildOptions() ([]kadcore.Option, error) {
	var opts []kadcore.Option
	if *configFile != "" {
		cfg, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		opts = append(opts, kadcore.WithConfig(cfg))
		if !isFlagSet("preset") {
			return opts, nil
		}
	}
	return append(opts, kadcore.WithPreset(*preset)), nil
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// demo 执行演示流程
func demo(ctx context.Context, c *kadcore.Cluster) error {
	ids, err := c.AddNodes(*nodeCount)
	if err != nil {
		return err
	}

	// ─────────────────────────────────────────────────────────────────────
	// 引导：每个节点 ping 所有先加入的节点
	// ─────────────────────────────────────────────────────────────────────
	for i := range ids {
		for j := 0; j < i; j++ {
			if err := c.Bootstrap(ids[i], ids[j]); err != nil {
				return fmt.Errorf("引导 %s: %w", ids[i].ShortString(), err)
			}
		}
	}
	fmt.Printf("\n═══ %d 个节点已互相引导 ═══\n", len(ids))
	printPeers(c, ids)

	// ─────────────────────────────────────────────────────────────────────
	// 存储与查找
	// ─────────────────────────────────────────────────────────────────────
	report, err := c.Store(ctx, ids[0], []byte(*key), []byte(*value))
	if err != nil {
		clog.Warn("存储未满足确认策略", "error", err)
	}
	if report != nil {
		fmt.Printf("\n存储 %q (keyID=%s) 到 %d 个节点，确认 %d 个\n",
			*key, report.KeyID.Hex(), len(report.Targets), len(report.Acked))
	}

	reader := ids[len(ids)-1]
	if err := findAndPrint(ctx, c, reader); err != nil {
		return err
	}

	// ─────────────────────────────────────────────────────────────────────
	// 故障注入
	// ─────────────────────────────────────────────────────────────────────
	if *killIndex >= 0 && *killIndex < len(ids) {
		victim := ids[*killIndex]
		if err := c.Kill(victim); err != nil {
			return err
		}
		fmt.Printf("\n节点 %d (%s) 已失效\n", *killIndex, victim.Hex())

		from := ids[0]
		if from == victim {
			from = ids[1]
		}
		if err := findAndPrint(ctx, c, from); err != nil {
			return err
		}
	}

	// ─────────────────────────────────────────────────────────────────────
	// 新节点加入
	// ─────────────────────────────────────────────────────────────────────
	joiner, err := c.AddNode()
	if err != nil {
		return err
	}
	res, err := c.Join(ctx, joiner, ids[0])
	if err != nil {
		return fmt.Errorf("加入失败: %w", err)
	}
	fmt.Printf("\n新节点 %s 经节点 0 加入，自查找 %d 轮，终止原因 %s\n",
		joiner.Hex(), res.Rounds, res.Termination)
	printPeers(c, []kadcore.NodeID{joiner})
	return nil
}

// findAndPrint 以 from 为发起方查找演示键
func findAndPrint(ctx context.Context, c *kadcore.Cluster, from kadcore.NodeID) error {
	res, err := c.FindValue(ctx, from, []byte(*key))
	if err != nil {
		return fmt.Errorf("查找失败: %w", err)
	}
	if res.Found {
		fmt.Printf("节点 %s 查找 %q → %q（来自 %s，%d 轮，驱逐 %d 个）\n",
			from.ShortString(), *key, res.Value, res.ValueFrom.ShortString(), res.Rounds, len(res.Evicted))
		return nil
	}
	fmt.Printf("节点 %s 查找 %q 未命中，最近节点 %v\n", from.ShortString(), *key, res.Closest)
	return nil
}

// printPeers 打印 PeerList 及与所有者的公共前缀位数
func printPeers(c *kadcore.Cluster, ids []kadcore.NodeID) {
	for _, id := range ids {
		peers, err := c.Peers(id)
		if err != nil {
			clog.Warn("读取 PeerList 失败", "node", id.ShortString(), "error", err)
			continue
		}
		fmt.Printf("  %s\n", id.Hex())
		for _, p := range peers {
			fmt.Printf("    └─ %s  cpl=%d\n", p.Hex(), kadcore.CommonPrefixLen(id, p))
		}
	}
}
