package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/dep2p/go-kadcore/pkg/lib/log"
)

var (
	// globalOutput 全局日志输出目标，默认为 stderr
	globalOutput   io.Writer = os.Stderr
	globalOutputMu sync.RWMutex
)

// dynamicWriter 每次写入时查找 globalOutput
type dynamicWriter struct{}

func (w *dynamicWriter) Write(p []byte) (n int, err error) {
	globalOutputMu.RLock()
	output := globalOutput
	globalOutputMu.RUnlock()
	return output.Write(p)
}

// componentHandler 按 component 属性过滤级别的 slog.Handler
//
// log.LazyLogger 通过 With("component", ...) 附加组件名，
// handler 在 WithAttrs 时捕获它并确定该组件的级别。
type componentHandler struct {
	cfg   *Config
	level slog.Level
	inner slog.Handler
}

// NewHandler 创建按组件分级的 Handler
func NewHandler(cfg *Config) slog.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	opts := &slog.HandlerOptions{
		// 内层 handler 不再过滤，由 componentHandler 判断
		Level:     cfg.minLevel(),
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(levelToString(lvl))
				}
			}
			return a
		},
	}

	output := &dynamicWriter{}

	var inner slog.Handler
	if cfg.Format == FormatJSON {
		inner = slog.NewJSONHandler(output, opts)
	} else {
		inner = slog.NewTextHandler(output, opts)
	}

	return &componentHandler{
		cfg:   cfg,
		level: cfg.DefaultLevel,
		inner: inner,
	}
}

// Enabled 检查是否启用指定级别
func (h *componentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle 处理日志记录
func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

// WithAttrs 添加属性，遇到 component 时切换级别
func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	level := h.level
	for _, a := range attrs {
		if a.Key == log.ComponentKey {
			level = h.cfg.LevelFor(a.Value.String())
		}
	}
	return &componentHandler{
		cfg:   h.cfg,
		level: level,
		inner: h.inner.WithAttrs(attrs),
	}
}

// WithGroup 添加组
func (h *componentHandler) WithGroup(name string) slog.Handler {
	return &componentHandler{
		cfg:   h.cfg,
		level: h.level,
		inner: h.inner.WithGroup(name),
	}
}

// levelToString 将日志级别转换为小写字符串
func levelToString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

// discardHandler 丢弃所有日志的 Handler（用于测试）
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
