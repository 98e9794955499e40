package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/tests/mocks"
	"github.com/dep2p/go-rtdbridge/tests/testutil"
)

// TestModule_Load 测试 Fx 模块加载
func TestModule_Load(t *testing.T) {
	var factory *Factory

	app := fx.New(
		fx.Supply(config.NewConfig()),
		Module(),
		fx.Invoke(func(f *Factory) {
			factory = f
		}),
		fx.NopLogger,
	)

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	require.NotNil(t, factory)

	sink := mocks.NewMockSink()
	d, err := factory.New(sink)
	require.NoError(t, err)

	d.Notify()
	testutil.Eventually(t, time.Second, func() bool {
		return sink.Invocations() == 1
	}, "应该通知接收者")

	// 停止应用会关闭工厂创建的派发器
	require.NoError(t, app.Stop(ctx))
	testutil.WaitClosed(t, d.Done(), time.Second)
}

// TestModule_ProvidesWithoutConfig 没有配置时使用默认设置
func TestModule_ProvidesWithoutConfig(t *testing.T) {
	result := ProvideFactory(Params{})
	require.NotNil(t, result.Factory)
	assert.IsType(t, &InProcApartment{}, result.Factory.ap)
}

// TestFactory_CloseWithoutDispatchers 空工厂关闭无错误
func TestFactory_CloseWithoutDispatchers(t *testing.T) {
	f := NewFactory(nil)
	assert.NoError(t, f.Close(context.Background()))
}

// TestFactory_Stats 汇总派发器统计
func TestFactory_Stats(t *testing.T) {
	f := NewFactory(nil)
	sink := mocks.NewMockSink()
	d, err := f.New(sink)
	require.NoError(t, err)

	d.Notify()
	testutil.Eventually(t, time.Second, func() bool {
		return sink.Invocations() == 1
	}, "应该通知接收者")

	st := f.Stats()
	assert.Equal(t, 1, st.Active)
	assert.Equal(t, uint64(1), st.Notifies)
	assert.Equal(t, uint64(1), st.Invocations)
	assert.Zero(t, st.Failures)

	require.NoError(t, f.Close(context.Background()))
	assert.Equal(t, FactoryStats{}, f.Stats())
}
