package rtd

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
)

// Params 模块依赖参数
type Params struct {
	fx.In

	Bus     interfaces.Bus
	Factory *dispatch.Factory
	Options []Option `optional:"true"`
}

// Result 模块输出结果
type Result struct {
	fx.Out

	Server *Server
}

// ProvideServer 提供 RTD 主题服务器
func ProvideServer(p Params) Result {
	return Result{Server: NewServer(p.Bus, FromDispatchFactory(p.Factory), p.Options...)}
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("rtd",
		fx.Provide(ProvideServer),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期注册参数
type lifecycleInput struct {
	fx.In
	LC     fx.Lifecycle
	Server *Server
}

// registerLifecycle 注册生命周期钩子
//
// 宿主通常会先调用 ServerTerminate，这里保证应用停止时也会释放订阅。
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Server.ServerTerminate()
		},
	})
}

// 模块元信息
const (
	Version     = "1.0.0"
	Name        = "rtd"
	Description = "RTD 主题服务器，把总线路径更新转换为宿主刷新通知"
)
