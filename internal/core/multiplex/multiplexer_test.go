package multiplex

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/types"
	"github.com/dep2p/go-rtdbridge/tests/mocks"
	"github.com/dep2p/go-rtdbridge/tests/testutil"
)

func connectTo(bus interfaces.Bus) Connector {
	return func() (interfaces.Bus, error) { return bus, nil }
}

// ============================================================================
//                              订阅复用测试
// ============================================================================

// TestMultiplexer_SubscribesOncePerPath 同一路径只订阅一次
func TestMultiplexer_SubscribesOncePerPath(t *testing.T) {
	bus := mocks.NewMockBus()
	m, err := New(connectTo(bus))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, m.Set("/a", types.I64(int64(i))))
	}
	require.NoError(t, m.Close())

	assert.Equal(t, 1, bus.SubscribeCount("/a"))
	assert.Len(t, bus.Writes(), 10)

	stats := m.Stats()
	assert.Equal(t, uint64(10), stats.Writes)
	assert.Equal(t, uint64(1), stats.Subscribes)
}

// TestMultiplexer_FIFOAcrossPaths 写入顺序与 Set 顺序一致
func TestMultiplexer_FIFOAcrossPaths(t *testing.T) {
	bus := mocks.NewMockBus()
	m, err := New(connectTo(bus))
	require.NoError(t, err)

	require.NoError(t, m.Set("/a", types.I64(1)))
	require.NoError(t, m.Set("/b", types.I64(2)))
	require.NoError(t, m.Set("/a", types.I64(3)))
	require.NoError(t, m.Close())

	want := []mocks.BusWrite{
		{Path: "/a", Value: types.I64(1)},
		{Path: "/b", Value: types.I64(2)},
		{Path: "/a", Value: types.I64(3)},
	}
	assert.Equal(t, want, bus.Writes())
	assert.Equal(t, []string{"/a", "/b"}, bus.SubscribeCalls)

	t.Log("✅ FIFO 顺序测试通过")
}

// TestMultiplexer_ConcurrentProducers 并发写入互不丢失，单个生产者内部保持顺序
func TestMultiplexer_ConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 200

	bus := mocks.NewMockBus()
	m, err := New(connectTo(bus))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			path := fmt.Sprintf("/p%d", p)
			for i := 0; i < perProducer; i++ {
				assert.NoError(t, m.Set(path, types.I64(int64(i))))
			}
		}(p)
	}
	wg.Wait()
	require.NoError(t, m.Close())

	writes := bus.Writes()
	require.Len(t, writes, producers*perProducer)

	next := make(map[string]int64)
	for _, w := range writes {
		v, ok := w.Value.AsI64()
		require.True(t, ok)
		assert.Equal(t, next[w.Path], v, "路径 %s 的写入乱序", w.Path)
		next[w.Path] = v + 1
	}
	for p := 0; p < producers; p++ {
		assert.Equal(t, 1, bus.SubscribeCount(fmt.Sprintf("/p%d", p)))
	}
}

// ============================================================================
//                              错误处理测试
// ============================================================================

// TestMultiplexer_ConnectFailure 连接失败返回 TransportError
func TestMultiplexer_ConnectFailure(t *testing.T) {
	cause := errors.New("no route")
	m, err := New(func() (interfaces.Bus, error) { return nil, cause })
	require.Error(t, err)
	assert.Nil(t, m)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "connect", te.Op)
	assert.ErrorIs(t, err, cause)
}

// TestMultiplexer_SubscribeFailureNotCached 订阅失败时丢弃写入，下次重新订阅
func TestMultiplexer_SubscribeFailureNotCached(t *testing.T) {
	bus := mocks.NewMockBus()
	var mu sync.Mutex
	attempts := 0
	bus.SubscribeFunc = func(path string) (interfaces.BusSubscription, error) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n == 1 {
			return nil, errors.New("resolver unavailable")
		}
		return bus.NewSubscription(path), nil
	}

	m, err := New(connectTo(bus))
	require.NoError(t, err)

	require.NoError(t, m.Set("/x", types.F64(1)))
	require.NoError(t, m.Set("/x", types.F64(2)))
	require.NoError(t, m.Close())

	assert.Equal(t, 2, bus.SubscribeCount("/x"))
	assert.Equal(t, []mocks.BusWrite{{Path: "/x", Value: types.F64(2)}}, bus.Writes())
	assert.Equal(t, uint64(1), m.Stats().Failures)
}

// TestMultiplexer_PanicStopsActor actor 崩溃后 Set 返回 SendError
func TestMultiplexer_PanicStopsActor(t *testing.T) {
	bus := mocks.NewMockBus()
	bus.SubscribeFunc = func(path string) (interfaces.BusSubscription, error) {
		panic("corrupted subscription table")
	}

	m, err := New(connectTo(bus))
	require.NoError(t, err)

	require.NoError(t, m.Set("/boom", types.Bool(true)))
	testutil.WaitClosed(t, m.Done(), time.Second)

	err = m.Set("/after", types.String("late"))
	var se *SendError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "/after", se.Path)
	assert.Equal(t, types.String("late"), se.Value)
	assert.ErrorIs(t, err, ErrStopped)

	assert.NoError(t, m.Close())
}

// TestMultiplexer_SetAfterClose 关闭后 Set 返回 SendError，重复关闭无副作用
func TestMultiplexer_SetAfterClose(t *testing.T) {
	bus := mocks.NewMockBus()
	m, err := New(connectTo(bus))
	require.NoError(t, err)

	require.NoError(t, m.Set("/a", types.Null()))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	var se *SendError
	assert.ErrorAs(t, m.Set("/a", types.Null()), &se)
	assert.Len(t, bus.Writes(), 1)
}

// TestMultiplexer_ConcurrentCloseSharesResult 并发关闭等待首次关闭完成并得到相同结果
func TestMultiplexer_ConcurrentCloseSharesResult(t *testing.T) {
	errTeardown := errors.New("teardown failed")
	bus := &slowCloseBus{
		MockBus: mocks.NewMockBus(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
		err:     errTeardown,
	}
	m, err := New(connectTo(bus))
	require.NoError(t, err)
	require.NoError(t, m.Set("/a", types.Null()))

	first := make(chan error, 1)
	go func() { first <- m.Close() }()
	testutil.WaitClosed[struct{}](t, bus.entered, time.Second)

	second := make(chan error, 1)
	go func() { second <- m.Close() }()
	testutil.Never(t, 50*time.Millisecond, func() bool { return len(second) > 0 },
		"首次关闭完成前第二次 Close 不应返回")

	close(bus.release)
	assert.ErrorIs(t, testutil.Receive[error](t, first, time.Second), errTeardown)
	assert.ErrorIs(t, testutil.Receive[error](t, second, time.Second), errTeardown)
}

// TestMultiplexer_SubscriptionOpts 创建订阅时传入选项
func TestMultiplexer_SubscriptionOpts(t *testing.T) {
	var got interfaces.SubscriptionSettings
	bus := &optsBus{MockBus: mocks.NewMockBus(), got: &got}

	m, err := New(connectTo(bus), WithSubscriptionOpts(interfaces.BufSize(7)))
	require.NoError(t, err)
	require.NoError(t, m.Set("/a", types.Null()))
	require.NoError(t, m.Close())

	assert.Equal(t, 7, got.Buffer)
}

type optsBus struct {
	*mocks.MockBus
	got *interfaces.SubscriptionSettings
}

func (b *optsBus) Subscribe(path string, opts ...interfaces.SubscriptionOpt) (interfaces.BusSubscription, error) {
	for _, opt := range opts {
		opt(b.got)
	}
	return b.MockBus.Subscribe(path, opts...)
}

// slowCloseBus 关闭时阻塞到 release 被关闭，并返回 err
type slowCloseBus struct {
	*mocks.MockBus
	entered chan struct{}
	release chan struct{}
	err     error
}

func (b *slowCloseBus) Close() error {
	close(b.entered)
	<-b.release
	_ = b.MockBus.Close()
	return b.err
}
