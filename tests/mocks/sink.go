package mocks

import (
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
)

// MockSink 模拟宿主的事件接收者 interfaces.EventSink
//
// 函数字段须在交给派发器之前设置。
type MockSink struct {
	// 可覆盖的方法
	ResolveFunc func(name string) (interfaces.MethodID, error)
	InvokeFunc  func(id interfaces.MethodID) error

	mu           sync.Mutex
	resolveCalls []string

	invocations atomic.Int64
	failures    atomic.Int64
}

var _ interfaces.EventSink = (*MockSink)(nil)

// NewMockSink 创建默认行为的 MockSink
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Resolve 实现 interfaces.EventSink，默认返回标识 1
func (m *MockSink) Resolve(name string) (interfaces.MethodID, error) {
	m.mu.Lock()
	m.resolveCalls = append(m.resolveCalls, name)
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(name)
	}
	return 1, nil
}

// Invoke 实现 interfaces.EventSink
func (m *MockSink) Invoke(id interfaces.MethodID) error {
	m.invocations.Add(1)
	if m.InvokeFunc != nil {
		if err := m.InvokeFunc(id); err != nil {
			m.failures.Add(1)
			return err
		}
	}
	return nil
}

// Invocations 返回 Invoke 的累计调用次数（含失败）
func (m *MockSink) Invocations() int {
	return int(m.invocations.Load())
}

// Failures 返回失败的 Invoke 次数
func (m *MockSink) Failures() int {
	return int(m.failures.Load())
}

// ResolveCalls 返回 Resolve 的调用记录
func (m *MockSink) ResolveCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.resolveCalls...)
}
