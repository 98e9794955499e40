// Package badger 实现基于 BadgerDB 的存储引擎
//
// 支持落盘与内存两种模式。落盘模式下 Start 启动周期性的值日志 GC。
// BadgerDB 自身的日志转发到 storage/badger 子系统。
//
// # 使用示例
//
//	eng, err := badger.New(engine.DefaultConfig("/data/rtdbridge.db"))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	err = eng.Put([]byte("v//market/eur"), encoded)
package badger
