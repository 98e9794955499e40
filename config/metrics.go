// Package config 提供统一的配置管理
package config

import (
	"fmt"
	"net"
)

// MetricsConfig 指标配置
//
// 指标注册在会话私有的 Prometheus 注册表上，不写入全局默认注册表。
type MetricsConfig struct {
	// Enabled 是否收集指标
	// 默认值: true
	Enabled bool `json:"enabled"`

	// Namespace 指标名前缀
	// 默认值: "rtdbridge"
	Namespace string `json:"namespace"`

	// Runtime 是否同时导出 Go 运行时与进程指标
	// 默认值: false
	Runtime bool `json:"runtime"`

	// ListenAddr 命令行暴露 /metrics 的监听地址
	// 默认值: "127.0.0.1:6060"
	ListenAddr string `json:"listen_addr"`
}

// DefaultMetricsConfig 返回默认的指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:    true,
		Namespace:  "rtdbridge",
		Runtime:    false,
		ListenAddr: "127.0.0.1:6060",
	}
}

// Validate 验证指标配置的有效性
func (c *MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Namespace == "" {
		return fmt.Errorf("metrics: namespace cannot be empty")
	}
	if c.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
			return fmt.Errorf("metrics: invalid listen_addr %q: %w", c.ListenAddr, err)
		}
	}
	return nil
}
