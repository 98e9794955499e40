// Package config 提供统一的配置管理
package config

import "fmt"

// BusConfig 数据总线配置
type BusConfig struct {
	// UpdateBuffer 每个订阅的更新通道容量
	// 通道满时丢弃最旧的更新
	// 默认值: 64
	UpdateBuffer int `json:"update_buffer"`

	// Persist 是否将每个路径的最新值持久化到存储
	// 重启后订阅可以立即读到上次的值
	// 默认值: false
	Persist bool `json:"persist"`

	// DropWarnEvery 每丢弃多少次更新输出一次警告
	// 默认值: 100
	DropWarnEvery int `json:"drop_warn_every"`
}

// DefaultBusConfig 返回默认的总线配置
func DefaultBusConfig() BusConfig {
	return BusConfig{
		UpdateBuffer:  64,
		Persist:       false,
		DropWarnEvery: 100,
	}
}

// Validate 验证总线配置的有效性
func (c *BusConfig) Validate() error {
	if c.UpdateBuffer < 1 {
		return fmt.Errorf("bus: update_buffer must be at least 1")
	}
	if c.DropWarnEvery < 1 {
		return fmt.Errorf("bus: drop_warn_every must be at least 1")
	}
	return nil
}
