package engine

import (
	"os"
	"path/filepath"
	"time"
)

// Config 存储引擎配置
//
// 测试代码应使用 t.TempDir() 或 InMemory 模式。
type Config struct {
	// Path 数据目录路径（InMemory 时忽略）
	Path string

	// InMemory 内存模式，不落盘
	InMemory bool

	// SyncWrites 是否同步写入
	SyncWrites bool

	// BlockCacheSize 块缓存大小（字节）
	BlockCacheSize int64

	// ZSTDCompressionLevel ZSTD 压缩级别，0 表示禁用
	ZSTDCompressionLevel int

	// GCInterval 值日志垃圾回收间隔，0 表示禁用
	GCInterval time.Duration

	// GCDiscardRatio 垃圾回收丢弃比例
	GCDiscardRatio float64
}

// DefaultConfig 返回默认配置
//
// 最新值记录很小，缓存按此缩小。
func DefaultConfig(path string) *Config {
	return &Config{
		Path:                 path,
		BlockCacheSize:       16 << 20, // 16MB
		ZSTDCompressionLevel: 1,
		GCInterval:           10 * time.Minute,
		GCDiscardRatio:       0.5,
	}
}

// InMemoryConfig 返回内存模式配置
func InMemoryConfig() *Config {
	cfg := DefaultConfig("")
	cfg.InMemory = true
	cfg.GCInterval = 0
	return cfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return ErrInvalidConfig
	}
	if c.GCDiscardRatio < 0 || c.GCDiscardRatio >= 1 {
		return ErrInvalidConfig
	}
	if c.BlockCacheSize < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// EnsureDir 确保数据目录存在，内存模式下不做任何事
func (c *Config) EnsureDir() error {
	if c.InMemory {
		return nil
	}
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = absPath
	return os.MkdirAll(c.Path, 0755)
}
