// Package config 提供统一的配置管理
package config

import (
	"fmt"
	"time"
)

// DispatcherConfig 宿主通知派发配置
type DispatcherConfig struct {
	// RetryBackoff 通知失败后的重试间隔
	// 默认值: 250ms
	RetryBackoff Duration `json:"retry_backoff"`

	// ErrorLogInterval 重试失败日志的最小输出间隔
	// 默认值: 5s
	ErrorLogInterval Duration `json:"error_log_interval"`
}

// DefaultDispatcherConfig 返回默认的派发配置
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		RetryBackoff:     Duration(250 * time.Millisecond),
		ErrorLogInterval: Duration(5 * time.Second),
	}
}

// Validate 验证派发配置的有效性
func (c *DispatcherConfig) Validate() error {
	if c.RetryBackoff <= 0 {
		return fmt.Errorf("dispatcher: retry_backoff must be positive")
	}
	if c.ErrorLogInterval < 0 {
		return fmt.Errorf("dispatcher: error_log_interval cannot be negative")
	}
	return nil
}
