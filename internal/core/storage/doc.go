// Package storage 提供总线最新值的持久化
//
// 基于 BadgerDB，为本地总线保存每个路径的最新值，重启后订阅可以立即读到
// 上次的值。
//
// # 架构
//
//	┌──────────────────────────────┐
//	│  localbus（Persist 开启时）   │
//	└──────────────────────────────┘
//	               │
//	               ▼
//	┌──────────────────────────────┐
//	│  Values: 路径 → valuecodec    │
//	│          LRU 读缓存（可选）   │
//	│  kv.Store: 前缀 "v/"          │
//	│  engine/badger: BadgerDB      │
//	└──────────────────────────────┘
//
// # 使用示例
//
//	app := fx.New(
//	    fx.Supply(cfg, storage.BaseDir(dir)),
//	    storage.Module(),
//	)
//
// 手动创建：
//
//	eng, err := storage.NewEngine(engine.InMemoryConfig())
//	values := storage.NewValues(eng, storage.WithCache(1024))
//	err = values.Save("/market/eur", types.F64(1.08))
//
// # 线程安全
//
// 所有公开的类型和方法都是线程安全的。
package storage
