// Package dispatch 实现宿主事件通知的跨线程派发
//
// 宿主的事件接收者绑定在创建它的线程上，而新数据到达于任意 goroutine。
// Dispatcher 在构造线程上把接收者编组为一次性令牌（Token），交给一个
// 锁定在独立操作系统线程上的工作 goroutine；工作 goroutine 解组令牌后成为
// 唯一能调用接收者的执行体。
//
// # 通知语义
//
//   - Notify 可并发调用，从不阻塞、从不失败，关闭后静默丢弃
//   - 信号通道容量为 1：工作 goroutine 繁忙期间的任意多次 Notify 合并为一次
//   - 每一批非空的 Notify 至少产生一次调用，且最后一次调用发生在最后一次 Notify 之后
//   - 调用失败时记录日志（限频），间隔 RetryBackoff（默认 250ms）后重试同一次调用
//
// # 套间
//
// Apartment 抽象线程初始化与编组：
//
//   - InProcApartment: 可移植实现，把接收者绑定到工作线程的 OS 线程号，
//     从其他线程调用会返回 ErrWrongThread
//   - internal/platform/ole.Apartment: Windows COM 实现
//
// # 快速开始
//
//	d, err := dispatch.New(dispatch.NewInProcApartment(), sink)
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	d.Notify() // 任意 goroutine
package dispatch
