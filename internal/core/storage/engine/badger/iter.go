package badger

import (
	"bytes"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-rtdbridge/internal/core/storage/engine"
)

// Iterator BadgerDB 前缀迭代器
type Iterator struct {
	txn     *badger.Txn
	iter    *badger.Iterator
	prefix  []byte
	started bool
	closed  bool
	err     error
}

var _ engine.Iterator = (*Iterator)(nil)

// First 移动到第一个键值对
func (it *Iterator) First() bool {
	if it.closed {
		return false
	}
	it.started = true
	if len(it.prefix) > 0 {
		it.iter.Seek(it.prefix)
	} else {
		it.iter.Rewind()
	}
	return it.Valid()
}

// Next 移动到下一个键值对
func (it *Iterator) Next() bool {
	if it.closed {
		return false
	}
	if !it.started {
		return it.First()
	}
	it.iter.Next()
	return it.Valid()
}

// Valid 当前位置是否有效
func (it *Iterator) Valid() bool {
	if it.closed || !it.iter.Valid() {
		return false
	}
	return len(it.prefix) == 0 || bytes.HasPrefix(it.iter.Item().Key(), it.prefix)
}

// Key 返回当前键的副本
func (it *Iterator) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return it.iter.Item().KeyCopy(nil)
}

// Value 返回当前值的副本
func (it *Iterator) Value() []byte {
	if !it.Valid() {
		return nil
	}
	value, err := it.iter.Item().ValueCopy(nil)
	if err != nil {
		it.err = err
		return nil
	}
	return value
}

// Close 释放迭代器与只读事务
func (it *Iterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.iter.Close()
	it.txn.Discard()
}

// Error 返回迭代过程中的错误
func (it *Iterator) Error() error {
	return it.err
}
