package badger

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-rtdbridge/internal/core/storage/engine"
)

// WriteBatch BadgerDB 批量写入
//
// 单个 goroutine 使用；Set/Delete 的错误在 Write 时统一返回。
type WriteBatch struct {
	db    *Engine
	batch *badger.WriteBatch
	count int
	err   error
}

var _ engine.Batch = (*WriteBatch)(nil)

// Put 添加一个写入操作
func (b *WriteBatch) Put(key, value []byte) {
	if len(key) == 0 || b.err != nil {
		return
	}
	if err := b.batch.Set(key, value); err != nil {
		b.err = err
		return
	}
	b.count++
}

// Delete 添加一个删除操作
func (b *WriteBatch) Delete(key []byte) {
	if len(key) == 0 || b.err != nil {
		return
	}
	if err := b.batch.Delete(key); err != nil {
		b.err = err
		return
	}
	b.count++
}

// Write 提交批量写入并重置
func (b *WriteBatch) Write() error {
	if b.db.closed.Load() {
		return engine.ErrClosed
	}
	if b.err != nil {
		err := b.err
		b.Reset()
		return convertError(err)
	}

	if err := b.batch.Flush(); err != nil {
		return convertError(err)
	}
	b.db.stats.numWrites.Add(int64(b.count))

	b.count = 0
	b.batch = b.db.db.NewWriteBatch()
	return nil
}

// Reset 丢弃待写入的操作
func (b *WriteBatch) Reset() {
	b.batch.Cancel()
	b.batch = b.db.db.NewWriteBatch()
	b.count = 0
	b.err = nil
}

// Size 返回待写入的操作数量
func (b *WriteBatch) Size() int {
	return b.count
}
