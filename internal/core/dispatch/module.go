package dispatch

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-rtdbridge/config"
)

// ============================================================================
//                              Factory - 派发器工厂
// ============================================================================

// Factory 按配置创建派发器，并在应用停止时统一关闭
//
// 事件接收者由宿主在运行期提供，因此模块注入的是工厂而不是派发器本身。
type Factory struct {
	ap   Apartment
	opts []Option

	mu     sync.Mutex
	active []*Dispatcher
}

// NewFactory 创建派发器工厂
func NewFactory(ap Apartment, opts ...Option) *Factory {
	if ap == nil {
		ap = NewInProcApartment()
	}
	return &Factory{ap: ap, opts: opts}
}

// New 为 sink 创建派发器
func (f *Factory) New(sink any, opts ...Option) (*Dispatcher, error) {
	all := append(append([]Option(nil), f.opts...), opts...)
	d, err := New(f.ap, sink, all...)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.active = append(f.active, d)
	f.mu.Unlock()
	return d, nil
}

// FactoryStats 工厂创建的派发器的汇总统计
type FactoryStats struct {
	// Active 工作线程仍在运行的派发器数量
	Active int
	Stats
}

// Stats 汇总所有尚未被工厂关闭的派发器
func (f *Factory) Stats() FactoryStats {
	f.mu.Lock()
	active := append([]*Dispatcher(nil), f.active...)
	f.mu.Unlock()

	var out FactoryStats
	for _, d := range active {
		select {
		case <-d.Done():
		default:
			out.Active++
		}
		st := d.Stats()
		out.Notifies += st.Notifies
		out.Invocations += st.Invocations
		out.Failures += st.Failures
	}
	return out
}

// Close 关闭所有创建过的派发器并等待工作线程退出
func (f *Factory) Close(ctx context.Context) error {
	f.mu.Lock()
	active := f.active
	f.active = nil
	f.mu.Unlock()

	var errs error
	for _, d := range active {
		errs = multierr.Append(errs, d.Close())
		select {
		case <-d.Done():
		case <-ctx.Done():
			return multierr.Append(errs, ctx.Err())
		}
	}
	return errs
}

// ============================================================================
//                              Fx 模块
// ============================================================================

// Params 工厂依赖参数
type Params struct {
	fx.In

	Config    *config.Config `optional:"true"`
	Apartment Apartment      `optional:"true"`
}

// Result 工厂输出结果
type Result struct {
	fx.Out

	Factory *Factory
}

// ProvideFactory 从配置创建派发器工厂
func ProvideFactory(p Params) Result {
	var opts []Option
	if p.Config != nil {
		opts = append(opts, WithConfig(p.Config.Dispatcher))
	}
	return Result{Factory: NewFactory(p.Apartment, opts...)}
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("dispatch",
		fx.Provide(ProvideFactory),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期注册参数
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Factory *Factory
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return input.Factory.Close(ctx)
		},
	})
}

// 模块元信息
const (
	Version     = "1.0.0"
	Name        = "dispatch"
	Description = "宿主通知派发模块，在专用线程上合并并投递更新通知"
)
