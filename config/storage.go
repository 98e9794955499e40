// Package config 提供统一的配置管理
package config

import (
	"fmt"
	"path/filepath"
)

// StorageConfig 存储配置
//
// 最新值持久化使用 BadgerDB，数据目录结构：
//
//	${DataDir}/
//	└── rtdbridge.db/       # BadgerDB 主数据库
//	    ├── 000001.vlog
//	    ├── 000001.sst
//	    └── MANIFEST
//
// DataDir 为空时使用配置目录下的 data 子目录。
type StorageConfig struct {
	// DataDir 数据目录路径
	DataDir string `json:"data_dir"`

	// InMemory 使用内存模式（不落盘，测试与临时会话使用）
	InMemory bool `json:"in_memory"`

	// SyncWrites 每次写入后同步到磁盘
	SyncWrites bool `json:"sync_writes"`

	// ResetOnStart 启动时清空已持久化的最新值
	ResetOnStart bool `json:"reset_on_start"`

	// CacheSize 最新值读缓存的条目数，0 表示不缓存
	// 默认值: 1024
	CacheSize int `json:"cache_size"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{CacheSize: 1024}
}

// Validate 验证存储配置的有效性
func (c *StorageConfig) Validate() error {
	if c.InMemory && c.DataDir != "" {
		return fmt.Errorf("storage: data_dir must be empty in memory mode")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("storage: cache_size must not be negative")
	}
	return nil
}

// DBPath 返回 BadgerDB 数据库路径
//
// base 为配置目录，DataDir 为空时使用。
func (c *StorageConfig) DBPath(base string) string {
	dir := c.DataDir
	if dir == "" {
		dir = filepath.Join(base, "data")
	}
	return filepath.Join(dir, "rtdbridge.db")
}
