package localbus

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/internal/core/storage"
	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params 模块依赖参数
type Params struct {
	fx.In

	Config *config.Config  `optional:"true"`
	Values *storage.Values `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Local *Bus
	Bus   interfaces.Bus
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("localbus",
		fx.Provide(ProvideBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideBus 提供本地总线
//
// 配置开启 Persist 且存储可用时，最新值持久化到存储。
func ProvideBus(p Params) Result {
	var opts []Option
	if p.Config != nil {
		opts = append(opts, WithConfig(p.Config.Bus))
		if p.Config.Bus.Persist {
			if p.Values != nil {
				opts = append(opts, WithValues(p.Values))
			} else {
				logger.Warn("未提供存储，最新值持久化已禁用")
			}
		}
	}

	b := New(opts...)
	return Result{Local: b, Bus: b}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC  fx.Lifecycle
	Bus *Bus
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Bus.Close()
		},
	})
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "localbus"
	// Description 模块描述
	Description = "进程内路径数据总线，保存最新值并广播更新"
)
