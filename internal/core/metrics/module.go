package metrics

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"

	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/internal/core/localbus"
	"github.com/dep2p/go-rtdbridge/internal/core/rtd"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config    `optional:"true"`
	Local      *localbus.Bus     `optional:"true"`
	Server     *rtd.Server       `optional:"true"`
	Factory    *dispatch.Factory `optional:"true"`
	Setter     SetterStats       `optional:"true"`
	Clock      clock.Clock       `optional:"true"`
}

// Result Metrics 输出结果
type Result struct {
	fx.Out

	Registry  *prometheus.Registry
	Gatherer  prometheus.Gatherer
	Collector *Collector
	SetRate   *RateMeter
}

// Module 返回 metrics 的 Fx 模块
//
// 提供会话私有的注册表；注入了哪些组件就导出哪些指标。
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideMetrics),
	)
}

// ProvideMetrics 创建注册表并注册收集器
func ProvideMetrics(p Params) (Result, error) {
	cfg := config.DefaultMetricsConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Metrics
	}

	rate := NewRateMeter(p.Clock)
	c := NewCollector(cfg.Namespace, Sources{
		Local:   p.Local,
		Server:  p.Server,
		Factory: p.Factory,
		Setter:  p.Setter,
		SetRate: rate,
	})

	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return Result{}, fmt.Errorf("register collector: %w", err)
	}
	if cfg.Runtime {
		if err := reg.Register(collectors.NewGoCollector()); err != nil {
			return Result{}, fmt.Errorf("register go collector: %w", err)
		}
		if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return Result{}, fmt.Errorf("register process collector: %w", err)
		}
	}

	logger.Debug("指标注册表已创建", "namespace", cfg.Namespace, "runtime", cfg.Runtime)
	return Result{
		Registry:  reg,
		Gatherer:  reg,
		Collector: c,
		SetRate:   rate,
	}, nil
}

// 模块元信息
const (
	Version     = "1.0.0"
	Name        = "metrics"
	Description = "会话指标模块，把组件统计导出为 Prometheus 指标"
)
