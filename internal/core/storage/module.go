package storage

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/internal/core/storage/engine"
	"github.com/dep2p/go-rtdbridge/internal/core/storage/engine/badger"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
)

var logger = log.Logger("core/storage")

// Params Storage 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	BaseDir    BaseDir        `optional:"true"`
}

// Result Storage 模块提供的结果
type Result struct {
	fx.Out

	Engine engine.Engine
	Values *Values
}

// Module 返回 Storage Fx 模块
//
// 提供:
//   - engine.Engine: 存储引擎实例
//   - *Values: 路径最新值存储
//
// 生命周期:
//   - OnStart: 启动引擎（值日志 GC），按配置清空最新值
//   - OnStop: 未开启同步写入时先刷盘，然后关闭引擎
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideStorage),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideStorage 提供存储引擎和最新值存储
func ProvideStorage(p Params) (Result, error) {
	eng, err := NewEngine(ConfigFromUnified(p.UnifiedCfg, p.BaseDir))
	if err != nil {
		return Result{}, err
	}
	var cacheSize int
	if p.UnifiedCfg != nil {
		cacheSize = p.UnifiedCfg.Storage.CacheSize
	}
	return Result{Engine: eng, Values: NewValues(eng, WithCache(cacheSize))}, nil
}

// lifecycleInput 生命周期注册参数
type lifecycleInput struct {
	fx.In
	LC         fx.Lifecycle
	Engine     engine.Engine
	Values     *Values
	UnifiedCfg *config.Config `optional:"true"`
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	eng := input.Engine
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := eng.Start(); err != nil {
				logger.Error("存储引擎启动失败", "error", err)
				return err
			}
			if input.UnifiedCfg != nil && input.UnifiedCfg.Storage.ResetOnStart {
				n, err := input.Values.Clear()
				if err != nil {
					logger.Error("清空最新值失败", "error", err)
					return err
				}
				logger.Info("已清空持久化的最新值", "count", n)
			}
			logger.Debug("存储引擎启动成功")
			return nil
		},
		OnStop: func(_ context.Context) error {
			if input.UnifiedCfg == nil || !input.UnifiedCfg.Storage.SyncWrites {
				if err := input.Values.Sync(); err != nil {
					logger.Warn("最新值刷盘失败", "error", err)
				}
			}
			if err := eng.Close(); err != nil {
				logger.Warn("存储引擎关闭失败", "error", err)
				return err
			}
			logger.Debug("存储引擎已关闭")
			return nil
		},
	})
}

// NewEngine 根据配置创建存储引擎
func NewEngine(cfg *engine.Config) (engine.Engine, error) {
	logger.Debug("创建存储引擎", "path", cfg.Path, "inMemory", cfg.InMemory)
	eng, err := badger.New(cfg)
	if err != nil {
		logger.Error("创建存储引擎失败", "error", err)
		return nil, err
	}
	return eng, nil
}

// 模块元信息
const (
	Version     = "1.0.0"
	Name        = "storage"
	Description = "最新值持久化模块，基于 BadgerDB"
)
