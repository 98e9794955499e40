// Package logger 安装 rtdbridge 的统一日志系统
//
// 支持通过配置文件与环境变量配置日志级别：
//   - 配置文件 log_level: 默认级别
//   - 配置文件 log.subsystems: 按组件覆盖
//   - RTDBRIDGE_LOG_LEVEL: 覆盖以上两者
//     格式: 组件=级别,组件=级别,默认级别
//     示例: core/dispatch=debug,core/multiplex=warn,info
//   - RTDBRIDGE_LOG_FORMAT: 日志格式 (text 或 json)
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/dep2p/go-rtdbridge/config"
)

// LogFormat 日志输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// 环境变量名
const (
	envLevel  = "RTDBRIDGE_LOG_LEVEL"
	envFormat = "RTDBRIDGE_LOG_FORMAT"
)

// Config 日志配置
type Config struct {
	// DefaultLevel 默认日志级别
	DefaultLevel slog.Level

	// SubsystemLevels 各组件的日志级别
	SubsystemLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat

	// AddSource 是否添加源码位置
	AddSource bool
}

// LevelForSubsystem 获取指定组件的日志级别
//
// 组件名按前缀匹配，"core" 的设置对 "core/dispatch" 同样生效，最长前缀优先。
func (c *Config) LevelForSubsystem(subsystem string) slog.Level {
	if level, ok := c.SubsystemLevels[subsystem]; ok {
		return level
	}
	best, found := -1, c.DefaultLevel
	for name, level := range c.SubsystemLevels {
		if strings.HasPrefix(subsystem, name+"/") && len(name) > best {
			best, found = len(name), level
		}
	}
	return found
}

// FromConfig 根据统一配置构建日志配置，并应用环境变量覆盖
func FromConfig(c *config.Config) (*Config, error) {
	level, err := config.ParseLogLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DefaultLevel:    level,
		SubsystemLevels: make(map[string]slog.Level, len(c.Log.Subsystems)),
		Format:          FormatText,
		AddSource:       c.Log.AddSource,
	}
	if c.Log.Format == "json" {
		cfg.Format = FormatJSON
	}
	for sub, name := range c.Log.Subsystems {
		lvl, err := config.ParseLogLevel(name)
		if err != nil {
			return nil, err
		}
		cfg.SubsystemLevels[sub] = lvl
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv 应用环境变量覆盖
func applyEnv(cfg *Config) {
	if levelStr := os.Getenv(envLevel); levelStr != "" {
		parseLevelConfig(cfg, levelStr)
	}
	if formatStr := os.Getenv(envFormat); formatStr != "" {
		switch strings.ToLower(formatStr) {
		case "json":
			cfg.Format = FormatJSON
		default:
			cfg.Format = FormatText
		}
	}
}

// parseLevelConfig 解析日志级别配置字符串
// 格式: subsystem=level,subsystem=level,defaultLevel
// 示例: core/dispatch=debug,core/multiplex=warn,info
func parseLevelConfig(cfg *Config, levelStr string) {
	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if sub, name, ok := strings.Cut(part, "="); ok {
			if level, err := config.ParseLogLevel(name); err == nil {
				cfg.SubsystemLevels[strings.TrimSpace(sub)] = level
			}
			continue
		}
		if level, err := config.ParseLogLevel(part); err == nil {
			cfg.DefaultLevel = level
		}
	}
}
