package rtd

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/internal/core/localbus"
	"github.com/dep2p/go-rtdbridge/pkg/lib/xloper"
	"github.com/dep2p/go-rtdbridge/pkg/types"
	"github.com/dep2p/go-rtdbridge/tests/mocks"
	"github.com/dep2p/go-rtdbridge/tests/testutil"
)

// countingNotifier 记录 Notify 次数
type countingNotifier struct {
	notifies atomic.Int64
	closed   atomic.Bool
}

func (n *countingNotifier) Notify()      { n.notifies.Add(1) }
func (n *countingNotifier) Close() error { n.closed.Store(true); return nil }

func newTestServer(t *testing.T) (*Server, *localbus.Bus, *countingNotifier) {
	t.Helper()
	bus := localbus.New()
	n := &countingNotifier{}
	s := NewServer(bus, func(any) (Notifier, error) { return n, nil }, WithLocation(time.UTC))
	_, err := s.ServerStart(struct{}{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.ServerTerminate()
		_ = bus.Close()
	})
	return s, bus, n
}

// refresh 读取 RefreshData 结果为 主题号 -> 显示文本
func refresh(t *testing.T, s *Server) map[int32]string {
	t.Helper()
	out, n := s.RefreshData()
	defer out.Destroy(xloper.DefaultAllocator)

	rows, cols := out.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, n, cols)

	got := make(map[int32]string, n)
	for c := 0; c < cols; c++ {
		id, err := xloper.ToI64(out.Cell(0, c))
		require.NoError(t, err)
		got[int32(id)] = out.Cell(1, c).String()
	}
	return got
}

// ============================================================================
//                              连接与刷新
// ============================================================================

func TestServer_ConnectGettingData(t *testing.T) {
	s, _, _ := newTestServer(t)

	v, err := s.ConnectData(1, []string{"/x"})
	require.NoError(t, err)
	assert.True(t, v.IsErr(xloper.ErrGettingData))
	assert.Equal(t, 1, s.Topics())
	assert.Equal(t, 1, s.Feeds())
}

func TestServer_ConnectReturnsLastValue(t *testing.T) {
	s, bus, _ := newTestServer(t)
	bus.Publish("/x", types.F64(3.14))

	v, err := s.ConnectData(1, []string{" /x "})
	require.NoError(t, err)
	f, err := xloper.ToF64(&v)
	require.NoError(t, err)
	assert.Equal(t, 3.14, f)
}

func TestServer_UpdateNotifiesAndRefreshes(t *testing.T) {
	s, bus, n := newTestServer(t)

	_, err := s.ConnectData(7, []string{"/x"})
	require.NoError(t, err)
	_, err = s.ConnectData(8, []string{"/y"})
	require.NoError(t, err)

	bus.Publish("/x", types.String("hello"))

	testutil.Eventually(t, time.Second, func() bool { return n.notifies.Load() >= 1 }, "应该通知宿主")
	assert.Equal(t, map[int32]string{7: "hello"}, refresh(t, s))

	// 已刷新的主题不再出现
	assert.Empty(t, refresh(t, s))
}

func TestServer_SharedFeed(t *testing.T) {
	s, bus, n := newTestServer(t)

	_, err := s.ConnectData(1, []string{"/x"})
	require.NoError(t, err)
	_, err = s.ConnectData(2, []string{"/x"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Feeds())

	bus.Publish("/x", types.I64(5))
	testutil.Eventually(t, time.Second, func() bool { return n.notifies.Load() >= 1 }, "应该通知宿主")
	assert.Equal(t, map[int32]string{1: "5", 2: "5"}, refresh(t, s))

	s.DisconnectData(1)
	assert.Equal(t, 1, s.Feeds())
	s.DisconnectData(2)
	assert.Equal(t, 0, s.Feeds())
	assert.Equal(t, 0, bus.Stats().Subscriptions)

	// 未知主题忽略
	s.DisconnectData(99)
}

func TestServer_ConnectErrors(t *testing.T) {
	s, _, _ := newTestServer(t)

	_, err := s.ConnectData(1, nil)
	assert.ErrorIs(t, err, ErrNoPath)
	_, err = s.ConnectData(1, []string{"  "})
	assert.ErrorIs(t, err, ErrNoPath)

	_, err = s.ConnectData(1, []string{"/x"})
	require.NoError(t, err)
	_, err = s.ConnectData(1, []string{"/y"})
	assert.ErrorIs(t, err, ErrDuplicateTopic)

	// 无效路径由总线拒绝
	v, err := s.ConnectData(2, []string{"relative"})
	assert.ErrorIs(t, err, localbus.ErrInvalidPath)
	assert.True(t, v.IsErr(xloper.ErrNA))
}

// ============================================================================
//                              生命周期
// ============================================================================

func TestServer_NotStarted(t *testing.T) {
	s := NewServer(localbus.New(), func(any) (Notifier, error) { return &countingNotifier{}, nil })
	assert.Equal(t, int32(0), s.Heartbeat())

	_, err := s.ConnectData(1, []string{"/x"})
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestServer_StartFailure(t *testing.T) {
	boom := errors.New("marshal failed")
	s := NewServer(localbus.New(), func(any) (Notifier, error) { return nil, boom })

	_, err := s.ServerStart(struct{}{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(0), s.Heartbeat())
}

func TestServer_Terminate(t *testing.T) {
	s, bus, n := newTestServer(t)
	assert.Equal(t, int32(1), s.Heartbeat())

	_, err := s.ServerStart(struct{}{})
	assert.ErrorIs(t, err, ErrAlreadyStarted)

	_, err = s.ConnectData(1, []string{"/x"})
	require.NoError(t, err)

	require.NoError(t, s.ServerTerminate())
	require.NoError(t, s.ServerTerminate())

	assert.True(t, n.closed.Load())
	assert.Equal(t, int32(0), s.Heartbeat())
	assert.Equal(t, 0, s.Topics())
	assert.Equal(t, 0, bus.Stats().Subscriptions)

	_, err = s.ServerStart(struct{}{})
	assert.ErrorIs(t, err, ErrTerminated)
}

// ============================================================================
//                              与派发器集成
// ============================================================================

func TestServer_WithDispatcher(t *testing.T) {
	bus := localbus.New()
	defer bus.Close()

	factory := dispatch.NewFactory(dispatch.NewInProcApartment())
	s := NewServer(bus, FromDispatchFactory(factory))

	sink := mocks.NewMockSink()
	_, err := s.ServerStart(sink)
	require.NoError(t, err)
	defer s.ServerTerminate()

	_, err = s.ConnectData(1, []string{"/live"})
	require.NoError(t, err)

	bus.Publish("/live", types.Bool(true))

	testutil.Eventually(t, time.Second, func() bool { return sink.Invocations() >= 1 }, "宿主应收到 UpdateNotify")
	assert.Equal(t, []string{dispatch.DefaultMethod}, sink.ResolveCalls())
	assert.Equal(t, map[int32]string{1: "true"}, refresh(t, s))
	t.Log("✅ RTD 与派发器集成测试通过")
}
