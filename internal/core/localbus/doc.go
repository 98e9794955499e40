// Package localbus 实现进程内的路径数据总线
//
// localbus 是 interfaces.Bus 的本地实现，用于回环仿真、测试以及没有外部总线时
// 的独立运行。每个路径对应一个节点，节点保存最新值并向所有订阅者广播更新。
//
// # 语义
//
//   - 订阅时若路径已有值，最新值会立即投递到更新通道
//   - 更新通道满时丢弃最旧的更新，消费者总能通过 Last 读到最新值
//   - 每丢弃 DropWarnEvery 次输出一次慢消费者警告
//   - 开启持久化时，写入同步保存到 storage.Values，节点首次创建时从中恢复
//
// # 使用示例
//
//	bus := localbus.New()
//	sub, _ := bus.Subscribe("/market/eur")
//	defer sub.Close()
//
//	bus.Publish("/market/eur", types.F64(1.08))
//	v := <-sub.Updates()
package localbus
