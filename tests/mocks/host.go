package mocks

import (
	"sync"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/lib/xloper"
)

// MockHost 模拟 interfaces.Host
//
// CallFunc 为 nil 时所有调用返回 HostSuccess 且不修改 result。
type MockHost struct {
	mu sync.Mutex

	// 可覆盖的方法
	CallFunc func(fn interfaces.HostFunction, result *xloper.Value, args ...*xloper.Value) int
	FreeFunc func(v *xloper.Value)

	// 调用记录（用于验证）
	Calls []HostCall
	Frees int
}

// HostCall 记录一次宿主回调
type HostCall struct {
	Fn interfaces.HostFunction
	// Args 参数的显示文本
	Args []string
	// Kinds 参数类型
	Kinds []xloper.Kind
}

var _ interfaces.Host = (*MockHost)(nil)

// NewMockHost 创建默认行为的 MockHost
func NewMockHost() *MockHost {
	return &MockHost{}
}

// Call 实现 interfaces.Host
func (m *MockHost) Call(fn interfaces.HostFunction, result *xloper.Value, args ...*xloper.Value) int {
	call := HostCall{Fn: fn}
	for _, a := range args {
		call.Args = append(call.Args, a.String())
		call.Kinds = append(call.Kinds, a.Kind())
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	f := m.CallFunc
	m.mu.Unlock()

	if f != nil {
		return f(fn, result, args...)
	}
	return interfaces.HostSuccess
}

// Free 实现 interfaces.Host
func (m *MockHost) Free(v *xloper.Value) {
	m.mu.Lock()
	m.Frees++
	f := m.FreeFunc
	m.mu.Unlock()

	if f != nil {
		f(v)
	}
}

// CallsTo 返回对指定函数的调用记录
func (m *MockHost) CallsTo(fn interfaces.HostFunction) []HostCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []HostCall
	for _, c := range m.Calls {
		if c.Fn == fn {
			out = append(out, c)
		}
	}
	return out
}
