package config

import (
	"errors"
	"time"
)

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，额外处理 nil 配置。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 未知的日志级别 -> off
//   - 未知的日志格式 -> text
//   - 非正的重试间隔 -> 默认值
//   - 非正的总线缓冲 -> 默认值
//   - 空的 ProgID 或指标前缀 -> 默认值
//   - 负的缓存容量 -> 0
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		c.LogLevel = "off"
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		c.Log.Format = "text"
	}
	if c.Log.FileName == "" {
		c.Log.FileName = DefaultLogConfig().FileName
	}
	for sub, lvl := range c.Log.Subsystems {
		if _, err := ParseLogLevel(lvl); err != nil {
			delete(c.Log.Subsystems, sub)
		}
	}
	if c.AuthMechanism != nil && c.AuthMechanism.Validate() != nil {
		c.AuthMechanism = nil
	}

	if c.Dispatcher.RetryBackoff <= 0 {
		c.Dispatcher.RetryBackoff = Duration(250 * time.Millisecond)
	}
	if c.Dispatcher.ErrorLogInterval < 0 {
		c.Dispatcher.ErrorLogInterval = 0
	}

	if c.Bus.UpdateBuffer < 1 {
		c.Bus.UpdateBuffer = DefaultBusConfig().UpdateBuffer
	}
	if c.Bus.DropWarnEvery < 1 {
		c.Bus.DropWarnEvery = DefaultBusConfig().DropWarnEvery
	}

	if c.Storage.InMemory {
		c.Storage.DataDir = ""
	}

	if c.Storage.CacheSize < 0 {
		c.Storage.CacheSize = 0
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsConfig().Namespace
	}

	if c.Session.ProgID == "" {
		c.Session.ProgID = DefaultSessionConfig().ProgID
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
