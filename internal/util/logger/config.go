// Package logger 负责根据环境变量装配 kadcore 的默认日志 handler
//
// 支持通过环境变量配置日志级别：
//   - KADCORE_LOG_LEVEL: 设置日志级别，支持按组件配置
//     格式: 组件=级别,组件=级别,默认级别
//     示例: discovery/dht=debug,storage=warn,info
//   - KADCORE_LOG_FORMAT: 日志格式 (text 或 json)
//   - KADCORE_LOG_ADD_SOURCE: 是否输出源码位置
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量名
const (
	EnvLevel     = "KADCORE_LOG_LEVEL"
	EnvFormat    = "KADCORE_LOG_FORMAT"
	EnvAddSource = "KADCORE_LOG_ADD_SOURCE"
)

// LogFormat 日志输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	// DefaultLevel 默认日志级别
	DefaultLevel slog.Level

	// ComponentLevels 各组件的日志级别
	ComponentLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat

	// AddSource 是否添加源码位置
	AddSource bool
}

// DefaultConfig 返回默认配置（info 级别，文本格式）
func DefaultConfig() *Config {
	return &Config{
		DefaultLevel:    slog.LevelInfo,
		ComponentLevels: make(map[string]slog.Level),
		Format:          FormatText,
	}
}

// LevelFor 获取指定组件的日志级别
//
// 组件名按 "/" 分段逐级回退，discovery/dht 未配置时使用 discovery 的级别。
func (c *Config) LevelFor(component string) slog.Level {
	for name := component; name != ""; {
		if level, ok := c.ComponentLevels[name]; ok {
			return level
		}
		idx := strings.LastIndex(name, "/")
		if idx < 0 {
			break
		}
		name = name[:idx]
	}
	return c.DefaultLevel
}

// minLevel 返回所有配置中最低的级别
func (c *Config) minLevel() slog.Level {
	lvl := c.DefaultLevel
	for _, l := range c.ComponentLevels {
		if l < lvl {
			lvl = l
		}
	}
	return lvl
}

var (
	configCache *Config
	configOnce  sync.Once
)

// ConfigFromEnv 从环境变量解析配置（结果缓存）
func ConfigFromEnv() *Config {
	configOnce.Do(func() {
		configCache = parseConfig()
	})
	return configCache
}

func parseConfig() *Config {
	cfg := DefaultConfig()

	if levelStr := os.Getenv(EnvLevel); levelStr != "" {
		ApplyLevelSpec(cfg, levelStr)
	}

	if formatStr := os.Getenv(EnvFormat); formatStr != "" {
		switch strings.ToLower(formatStr) {
		case "json":
			cfg.Format = FormatJSON
		default:
			cfg.Format = FormatText
		}
	}

	if addSourceStr := os.Getenv(EnvAddSource); addSourceStr != "" {
		cfg.AddSource = addSourceStr != "false" && addSourceStr != "0"
	}

	return cfg
}

// ApplyLevelSpec 解析日志级别配置字符串并写入 cfg
//
// 格式: component=level,component=level,defaultLevel
// 无法识别的级别名被忽略。
func ApplyLevelSpec(cfg *Config, spec string) {
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if name, levelName, ok := strings.Cut(part, "="); ok {
			if level, ok := parseLevel(strings.TrimSpace(levelName)); ok {
				cfg.ComponentLevels[strings.TrimSpace(name)] = level
			}
			continue
		}
		if level, ok := parseLevel(part); ok {
			cfg.DefaultLevel = level
		}
	}
}

// parseLevel 解析日志级别名称
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ResetConfig 重置配置缓存（仅用于测试）
func ResetConfig() {
	configOnce = sync.Once{}
	configCache = nil
}
