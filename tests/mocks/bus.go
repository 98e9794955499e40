package mocks

import (
	"errors"
	"sync"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/types"
)

// ErrBusClosed 总线已关闭
var ErrBusClosed = errors.New("mock bus closed")

// BusWrite 记录一次写入
type BusWrite struct {
	Path  string
	Value types.Value
}

// MockBus 模拟 interfaces.Bus
//
// 所有订阅的写入按全局顺序记录在同一个日志中，便于验证 FIFO。
type MockBus struct {
	mu sync.Mutex

	// 可覆盖的方法
	SubscribeFunc func(path string) (interfaces.BusSubscription, error)

	// 调用记录（用于验证）
	SubscribeCalls []string

	writes []BusWrite
	subs   []*MockBusSubscription
	closed bool
}

// MockBusSubscription 模拟 interfaces.BusSubscription
type MockBusSubscription struct {
	bus  *MockBus
	path string

	mu      sync.Mutex
	last    types.Value
	updates chan types.Value
	closed  bool
}

var (
	_ interfaces.Bus             = (*MockBus)(nil)
	_ interfaces.BusSubscription = (*MockBusSubscription)(nil)
)

// NewMockBus 创建默认行为的 MockBus
func NewMockBus() *MockBus {
	return &MockBus{}
}

// Subscribe 实现 interfaces.Bus
func (m *MockBus) Subscribe(path string, _ ...interfaces.SubscriptionOpt) (interfaces.BusSubscription, error) {
	m.mu.Lock()
	m.SubscribeCalls = append(m.SubscribeCalls, path)
	f := m.SubscribeFunc
	closed := m.closed
	m.mu.Unlock()

	if closed {
		return nil, ErrBusClosed
	}
	if f != nil {
		return f(path)
	}
	return m.NewSubscription(path), nil
}

// NewSubscription 创建挂在本总线上的订阅（供 SubscribeFunc 复用）
func (m *MockBus) NewSubscription(path string) *MockBusSubscription {
	sub := &MockBusSubscription{
		bus:     m,
		path:    path,
		updates: make(chan types.Value, 16),
	}
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
	return sub
}

// Close 实现 interfaces.Bus
func (m *MockBus) Close() error {
	m.mu.Lock()
	m.closed = true
	subs := append([]*MockBusSubscription(nil), m.subs...)
	m.mu.Unlock()

	for _, s := range subs {
		_ = s.Close()
	}
	return nil
}

// Writes 返回按顺序记录的写入
func (m *MockBus) Writes() []BusWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BusWrite(nil), m.writes...)
}

// SubscribeCount 返回对指定路径的订阅次数
func (m *MockBus) SubscribeCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.SubscribeCalls {
		if p == path {
			n++
		}
	}
	return n
}

// Publish 模拟总线另一端发布新值，推送给该路径上的所有订阅
func (m *MockBus) Publish(path string, v types.Value) {
	m.mu.Lock()
	subs := append([]*MockBusSubscription(nil), m.subs...)
	m.mu.Unlock()

	for _, s := range subs {
		if s.path == path {
			s.deliver(v)
		}
	}
}

func (m *MockBus) record(w BusWrite) {
	m.mu.Lock()
	m.writes = append(m.writes, w)
	m.mu.Unlock()
}

// Path 实现 interfaces.BusSubscription
func (s *MockBusSubscription) Path() string { return s.path }

// Write 实现 interfaces.BusSubscription
func (s *MockBusSubscription) Write(v types.Value) {
	s.bus.record(BusWrite{Path: s.path, Value: v})
	s.deliver(v)
}

func (s *MockBusSubscription) deliver(v types.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.last = v
	select {
	case s.updates <- v:
	default:
	}
}

// Last 实现 interfaces.BusSubscription
func (s *MockBusSubscription) Last() types.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Updates 实现 interfaces.BusSubscription
func (s *MockBusSubscription) Updates() <-chan types.Value { return s.updates }

// Close 实现 interfaces.BusSubscription
func (s *MockBusSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.updates)
	}
	return nil
}
