// Package engine 定义存储引擎的内部接口
//
// # 线程安全
//
// 所有接口实现必须保证线程安全。批量写入在提交前是独立的，
// 不影响其他并发操作。
package engine

// Engine 键值存储引擎
type Engine interface {
	// Get 获取指定键的值，键不存在返回 ErrNotFound
	Get(key []byte) ([]byte, error)

	// Put 设置键值对
	Put(key, value []byte) error

	// Delete 删除指定键，键不存在不报错
	Delete(key []byte) error

	// Has 检查键是否存在
	Has(key []byte) (bool, error)

	// NewBatch 创建新的批量写入对象
	//
	// 批量写入将多个操作合并为一次磁盘写入。
	NewBatch() Batch

	// NewPrefixIterator 创建仅遍历指定前缀的迭代器
	//
	// 调用者负责在使用后调用 Close()。
	NewPrefixIterator(prefix []byte) Iterator

	// Start 启动后台任务（值日志 GC）
	Start() error

	// Sync 同步数据到磁盘
	Sync() error

	// Stats 获取引擎统计信息
	Stats() Stats

	// Close 关闭引擎
	Close() error
}

// Batch 批量写入接口
//
// Batch 不是线程安全的，不应在多个 goroutine 中并发使用。
type Batch interface {
	// Put 添加一个写入操作
	Put(key, value []byte)

	// Delete 添加一个删除操作
	Delete(key []byte)

	// Write 原子地执行所有操作，之后批量对象被重置
	Write() error

	// Reset 丢弃所有待写入的操作
	Reset()

	// Size 返回待写入的操作数量
	Size() int
}

// Iterator 迭代器接口
//
// 迭代器保持创建时的快照视图，不受后续写入影响。
//
// 使用模式:
//
//	iter := eng.NewPrefixIterator([]byte("v/"))
//	defer iter.Close()
//
//	for iter.First(); iter.Valid(); iter.Next() {
//	    key, value := iter.Key(), iter.Value()
//	}
//
//	if err := iter.Error(); err != nil {
//	    return err
//	}
type Iterator interface {
	// First 移动到第一个键值对
	First() bool

	// Next 移动到下一个键值对
	Next() bool

	// Valid 当前位置是否有效
	Valid() bool

	// Key 返回当前键的副本
	Key() []byte

	// Value 返回当前值的副本
	Value() []byte

	// Close 释放迭代器
	Close()

	// Error 返回迭代过程中的错误
	Error() error
}

// Stats 引擎统计信息
type Stats struct {
	LSMSize    int64 `json:"lsm_size"`
	VlogSize   int64 `json:"vlog_size"`
	NumReads   int64 `json:"num_reads"`
	NumWrites  int64 `json:"num_writes"`
	NumDeletes int64 `json:"num_deletes"`
	NumMisses  int64 `json:"num_misses"`
	NumGCRuns  int64 `json:"num_gc_runs"`
}
