// Package kv 提供带前缀隔离的 KV 存储抽象层
//
// Store 在底层存储引擎之上提供命名空间隔离，每个组件使用不同的前缀。
//
// # 键空间
//
//   - v/ - 路径最新值（storage.Values）
//
// # 使用示例
//
//	values := kv.New(eng, []byte("v/"))
//	values.Put([]byte("/market/eur"), encoded) // 实际键: v//market/eur
package kv
