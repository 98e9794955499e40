// Package engine 定义存储引擎接口
//
// # 接口
//
//   - Engine: 键值存储引擎
//   - Batch: 批量写入
//   - Iterator: 前缀迭代器
//
// # 实现
//
//   - badger: BadgerDB 实现（落盘或内存）
package engine
