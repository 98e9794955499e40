// Package config 提供统一的配置管理
package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// 额外的日志级别
const (
	// LevelTrace 比 Debug 更详细
	LevelTrace = slog.Level(-8)
	// LevelOff 关闭所有日志
	LevelOff = slog.Level(100)
)

// LogConfig 日志配置
//
// 级别本身由顶层 log_level 控制，这里只包含格式与子系统覆盖。
type LogConfig struct {
	// Format 输出格式: text 或 json
	// 默认值: "text"
	Format string `json:"format"`

	// Subsystems 按子系统覆盖的级别，如 {"core/dispatch": "debug"}
	Subsystems map[string]string `json:"subsystems,omitempty"`

	// AddSource 是否输出源码位置
	AddSource bool `json:"add_source"`

	// FileName 日志文件名（位于配置目录下）
	// 默认值: "log.txt"
	FileName string `json:"file_name"`
}

// DefaultLogConfig 返回默认的日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Format:   "text",
		FileName: "log.txt",
	}
}

// Validate 验证日志配置的有效性
func (c *LogConfig) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", c.Format)
	}
	if c.FileName == "" {
		return fmt.Errorf("log: file_name cannot be empty")
	}
	for sub, lvl := range c.Subsystems {
		if _, err := ParseLogLevel(lvl); err != nil {
			return fmt.Errorf("log: subsystem %s: %w", sub, err)
		}
	}
	return nil
}

// ParseLogLevel 解析日志级别名称（大小写不敏感）
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return LevelOff, fmt.Errorf("log_level: unknown level %q", name)
	}
}
