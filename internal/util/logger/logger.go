package logger

import (
	"io"
	"log/slog"

	"github.com/dep2p/go-kadcore/pkg/lib/log"
)

// Install 按配置安装全局默认 logger
//
// 安装后所有 log.Logger(...) 声明的组件 logger 立即生效。
//
// 示例:
//
//	cfg := logger.ConfigFromEnv()
//	logger.Install(cfg)
func Install(cfg *Config) *slog.Logger {
	l := slog.New(NewHandler(cfg))
	log.SetDefault(l)
	return l
}

// InstallFromEnv 使用环境变量配置安装默认 logger
func InstallFromEnv() *slog.Logger {
	return Install(ConfigFromEnv())
}

// Discard 安装并返回一个丢弃所有日志的 Logger
//
// 主要用于测试，避免日志输出干扰测试结果。
func Discard() *slog.Logger {
	l := slog.New(discardHandler{})
	log.SetDefault(l)
	return l
}

// SetOutput 设置全局日志输出目标
//
// 已安装的 handler 通过 dynamicWriter 写出，切换立即生效。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
