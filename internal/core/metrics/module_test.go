package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/internal/core/localbus"
	"github.com/dep2p/go-rtdbridge/internal/core/rtd"
	"github.com/dep2p/go-rtdbridge/pkg/types"
	"github.com/dep2p/go-rtdbridge/tests/testutil"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_Load 测试模块与其他组件一起加载
func TestModule_Load(t *testing.T) {
	var (
		gatherer prometheus.Gatherer
		local    *localbus.Bus
		rate     *RateMeter
	)

	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		localbus.Module(),
		dispatch.Module(),
		rtd.Module(),
		Module(),
		fx.Populate(&gatherer, &local, &rate),
		fx.NopLogger,
	)
	app.RequireStart()
	defer app.RequireStop()

	local.Publish("/m", types.I64(1))
	rate.Mark(1)

	got := testutil.Gathered(t, gatherer)
	assert.Equal(t, 1.0, got["rtdbridge_bus_paths"])
	assert.Equal(t, 1.0, got["rtdbridge_bus_writes_total"])
	assert.Equal(t, 0.0, got["rtdbridge_rtd_topics"])
	assert.Equal(t, 0.0, got["rtdbridge_dispatch_active"])
	assert.Equal(t, 1.0, got["rtdbridge_setter_set_calls_total"])

	t.Log("✅ metrics 模块加载测试通过")
}

// TestModule_Runtime 开启运行时指标
func TestModule_Runtime(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Runtime = true
	cfg.Metrics.Namespace = "custom"

	res, err := ProvideMetrics(Params{UnifiedCfg: cfg})
	require.NoError(t, err)

	got := testutil.Gathered(t, res.Gatherer)
	_, ok := got["go_goroutines"]
	assert.True(t, ok)
	assert.Equal(t, 0.0, got["custom_setter_set_calls_total"])
}

// TestModule_WithoutConfig 没有配置时使用默认前缀
func TestModule_WithoutConfig(t *testing.T) {
	res, err := ProvideMetrics(Params{})
	require.NoError(t, err)
	require.NotNil(t, res.Registry)

	got := testutil.Gathered(t, res.Registry)
	_, ok := got["rtdbridge_setter_set_rate"]
	assert.True(t, ok)
}
