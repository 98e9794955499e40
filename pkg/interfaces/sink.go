// Package interfaces 定义 rtdbridge 的公共接口
//
// 本文件定义 EventSink 接口，即宿主提供的线程绑定事件接收者。
package interfaces

// MethodID 事件接收者方法的调用标识
type MethodID int32

// EventSink 宿主的事件接收者
//
// 接收者绑定在创建它的线程（单线程套间）上，只能在解组它的线程上调用。
// 宿主收到 Invoke 后会回调 RefreshData 拉取新数据。
type EventSink interface {
	// Resolve 将方法名（如 "UpdateNotify"）解析为调用标识
	Resolve(name string) (MethodID, error)

	// Invoke 调用无参方法
	Invoke(id MethodID) error
}
