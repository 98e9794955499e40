package metrics

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/internal/core/localbus"
	"github.com/dep2p/go-rtdbridge/internal/core/multiplex"
	"github.com/dep2p/go-rtdbridge/internal/core/rtd"
	"github.com/dep2p/go-rtdbridge/pkg/types"
	"github.com/dep2p/go-rtdbridge/tests/mocks"
	"github.com/dep2p/go-rtdbridge/tests/testutil"
)

// TestCollector_NoSources 没有来源时不输出指标
func TestCollector_NoSources(t *testing.T) {
	c := NewCollector("rtdbridge", Sources{})
	assert.Equal(t, 0, promtest.CollectAndCount(c))
}

// TestCollector_Bus 导出进程内总线统计
func TestCollector_Bus(t *testing.T) {
	bus := localbus.New()
	defer bus.Close()

	sub, err := bus.Subscribe("/a")
	require.NoError(t, err)
	defer sub.Close()
	bus.Publish("/a", types.F64(1))
	bus.Publish("/b", types.F64(2))

	c := NewCollector("rtdbridge", Sources{Local: bus})
	assert.Equal(t, 4, promtest.CollectAndCount(c))

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))
	got := testutil.Gathered(t, reg)
	assert.Equal(t, 2.0, got["rtdbridge_bus_paths"])
	assert.Equal(t, 1.0, got["rtdbridge_bus_subscriptions"])
	assert.Equal(t, 2.0, got["rtdbridge_bus_writes_total"])
	assert.Equal(t, 0.0, got["rtdbridge_bus_dropped_total"])
}

// TestCollector_RTDAndDispatch 导出主题与派发统计
func TestCollector_RTDAndDispatch(t *testing.T) {
	bus := localbus.New()
	defer bus.Close()
	factory := dispatch.NewFactory(nil)
	server := rtd.NewServer(bus, rtd.FromDispatchFactory(factory), rtd.WithLocation(time.UTC))

	sink := mocks.NewMockSink()
	_, err := server.ServerStart(sink)
	require.NoError(t, err)
	_, err = server.ConnectData(1, []string{"/px"})
	require.NoError(t, err)
	_, err = server.ConnectData(2, []string{"/px"})
	require.NoError(t, err)

	bus.Publish("/px", types.F64(3))
	testutil.Eventually(t, time.Second, func() bool {
		return sink.Invocations() >= 1
	}, "应该通知事件接收者")

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector("rtdbridge", Sources{Server: server, Factory: factory}))
	got := testutil.Gathered(t, reg)
	assert.Equal(t, 2.0, got["rtdbridge_rtd_topics"])
	assert.Equal(t, 1.0, got["rtdbridge_rtd_feeds"])
	assert.Equal(t, 1.0, got["rtdbridge_dispatch_active"])
	assert.GreaterOrEqual(t, got["rtdbridge_dispatch_invocations_total"], 1.0)
	assert.Equal(t, 0.0, got["rtdbridge_dispatch_failures_total"])

	require.NoError(t, server.ServerTerminate())
	got = testutil.Gathered(t, reg)
	assert.Equal(t, 0.0, got["rtdbridge_rtd_topics"])
}

// TestCollector_Setter 写入器创建前不输出写入器计数
func TestCollector_Setter(t *testing.T) {
	var created bool
	stats := func() (multiplex.Stats, bool) {
		return multiplex.Stats{Writes: 3, Subscribes: 2, Failures: 1}, created
	}
	rate := NewRateMeter(clock.NewMock())
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector("x", Sources{Setter: stats, SetRate: rate}))

	got := testutil.Gathered(t, reg)
	_, ok := got["x_setter_writes_total"]
	assert.False(t, ok)
	assert.Equal(t, 0.0, got["x_setter_set_calls_total"])

	created = true
	rate.Mark(6)
	got = testutil.Gathered(t, reg)
	assert.Equal(t, 3.0, got["x_setter_writes_total"])
	assert.Equal(t, 2.0, got["x_setter_subscribes_total"])
	assert.Equal(t, 1.0, got["x_setter_failures_total"])
	assert.Equal(t, 6.0, got["x_setter_set_calls_total"])
	assert.InDelta(t, 0.1, got["x_setter_set_rate"], 1e-9)
}
