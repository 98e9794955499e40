package storage

import (
	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/internal/core/storage/engine"
)

// BaseDir 配置目录，StorageConfig.DataDir 为空时数据库放在其下的 data 子目录
type BaseDir string

// ConfigFromUnified 从统一配置创建引擎配置
func ConfigFromUnified(cfg *config.Config, base BaseDir) *engine.Config {
	if cfg == nil {
		return engine.InMemoryConfig()
	}

	if cfg.Storage.InMemory {
		ecfg := engine.InMemoryConfig()
		ecfg.SyncWrites = cfg.Storage.SyncWrites
		return ecfg
	}

	ecfg := engine.DefaultConfig(cfg.Storage.DBPath(string(base)))
	ecfg.SyncWrites = cfg.Storage.SyncWrites
	return ecfg
}
