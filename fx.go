package rtdbridge

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/internal/core/localbus"
	"github.com/dep2p/go-rtdbridge/internal/core/metrics"
	"github.com/dep2p/go-rtdbridge/internal/core/rtd"
	"github.com/dep2p/go-rtdbridge/internal/core/storage"
	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置注入
//  2. 数据层: Storage（开启持久化时） → LocalBus（或外部总线）
//  3. 通知层: Dispatch → RTD
//  4. 指标（配置开启时）
func buildFxApp(o *options, cfg *config.Config, b *Bridge) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置注入
	// ════════════════════════════════════════════════════════════════════════
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Supply(storage.BaseDir(o.configDir)),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 数据层
	// ════════════════════════════════════════════════════════════════════════
	if o.bus != nil {
		bus := o.bus
		modules = append(modules, fx.Provide(func() interfaces.Bus { return bus }))
	} else {
		if cfg.Bus.Persist {
			modules = append(modules, storage.Module())
		}
		modules = append(modules, localbus.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 通知层
	// ════════════════════════════════════════════════════════════════════════
	if o.apartment != nil {
		ap := o.apartment
		modules = append(modules, fx.Provide(func() dispatch.Apartment { return ap }))
	}
	modules = append(modules,
		fx.Supply([]rtd.Option{
			rtd.WithAllocator(o.alloc),
			rtd.WithLocation(o.location),
		}),
		dispatch.Module(),
		rtd.Module(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. 指标
	// ════════════════════════════════════════════════════════════════════════
	if cfg.Metrics.Enabled {
		modules = append(modules,
			fx.Provide(func() metrics.SetterStats { return b.setterStats }),
			metrics.Module(),
			fx.Populate(&b.gatherer, &b.setRate),
		)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. 用户扩展与注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, o.fxOptions...)
	modules = append(modules,
		fx.Populate(&b.bus, &b.server),
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return app, nil
}
