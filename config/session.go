// Package config 提供统一的配置管理
package config

import "fmt"

// SessionConfig 宿主会话配置
type SessionConfig struct {
	// ProgID RTD 服务器在宿主中注册的程序标识
	// 默认值: "RtdBridge"
	ProgID string `json:"prog_id"`

	// Category 工作表函数分类
	// 默认值: "RtdBridge"
	Category string `json:"category"`

	// RegisterUDFs 宿主加载时是否注册写入函数
	// 默认值: true
	RegisterUDFs bool `json:"register_udfs"`
}

// DefaultSessionConfig 返回默认的会话配置
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ProgID:       "RtdBridge",
		Category:     "RtdBridge",
		RegisterUDFs: true,
	}
}

// Validate 验证会话配置的有效性
func (c *SessionConfig) Validate() error {
	if c.ProgID == "" {
		return fmt.Errorf("session: prog_id cannot be empty")
	}
	if len(c.Category) > 255 {
		return fmt.Errorf("session: category longer than 255 characters")
	}
	return nil
}
