// Package interfaces 定义 rtdbridge 的公共接口
//
// 本包只包含跨越进程边界的最小契约，实现位于 internal/ 或由宿主提供：
//
//   - bus.go   - Bus/BusSubscription 数据总线契约（internal/core/localbus 实现）
//   - host.go  - Host 电子表格宿主回调契约
//   - sink.go  - EventSink 宿主的线程绑定事件接收者
//
// 测试替身位于 tests/mocks。
package interfaces
