package kv

import (
	"bytes"

	"github.com/dep2p/go-rtdbridge/internal/core/storage/engine"
)

// Store 引擎上的一个键空间
//
// 调用者看到的键不含前缀；实际写入引擎的键为 prefix + key。
type Store struct {
	eng    engine.Engine
	prefix []byte
}

// New 在 eng 上创建以 prefix 隔离的键空间
func New(eng engine.Engine, prefix []byte) *Store {
	return &Store{
		eng:    eng,
		prefix: bytes.Clone(prefix),
	}
}

// Get 读取 key，不存在时返回 engine.ErrNotFound
func (s *Store) Get(key []byte) ([]byte, error) {
	return s.eng.Get(s.full(key))
}

// Put 写入 key
func (s *Store) Put(key, value []byte) error {
	return s.eng.Put(s.full(key), value)
}

// Delete 删除 key，不存在不报错
func (s *Store) Delete(key []byte) error {
	return s.eng.Delete(s.full(key))
}

// Sync 将底层引擎的数据刷到磁盘
func (s *Store) Sync() error {
	return s.eng.Sync()
}

// Scan 按键序遍历键空间，fn 返回 false 时停止
//
// 传给 fn 的键已去掉前缀，键和值都是副本。
func (s *Store) Scan(fn func(key, value []byte) bool) error {
	iter := s.eng.NewPrefixIterator(s.prefix)
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if !fn(bytes.TrimPrefix(iter.Key(), s.prefix), iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// Count 返回键空间内的记录数
func (s *Store) Count() (int64, error) {
	var n int64
	err := s.Scan(func(_, _ []byte) bool {
		n++
		return true
	})
	return n, err
}

// Clear 在一个批次中删除键空间内的所有记录
func (s *Store) Clear() (int, error) {
	var keys [][]byte
	if err := s.Scan(func(key, _ []byte) bool {
		keys = append(keys, key)
		return true
	}); err != nil {
		return 0, err
	}

	b := s.eng.NewBatch()
	for _, k := range keys {
		b.Delete(s.full(k))
	}
	if err := b.Write(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *Store) full(key []byte) []byte {
	out := make([]byte, 0, len(s.prefix)+len(key))
	return append(append(out, s.prefix...), key...)
}
