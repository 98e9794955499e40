// Package mocks 提供统一的测试 Mock 实现
//
// # 核心 Mock
//
//   - MockHost: 模拟 interfaces.Host，记录每次宿主回调
//   - MockSink: 模拟 interfaces.EventSink，统计 Invoke 次数，可注入失败
//   - MockBus: 模拟 interfaces.Bus，按全局顺序记录写入，可模拟远端发布
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 关键 Mock 记录调用历史，便于验证测试行为
// 3. 简化实现: Mock 只实现测试所需的核心语义
//
// # 使用示例
//
//	func TestNotify(t *testing.T) {
//	    sink := mocks.NewMockSink()
//	    sink.InvokeFunc = func(interfaces.MethodID) error {
//	        return errors.New("host busy")
//	    }
//	    d, err := dispatch.New(dispatch.NewInProcApartment(), sink)
//	    ...
//	}
package mocks
