package storage

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-rtdbridge/internal/core/storage/engine"
	"github.com/dep2p/go-rtdbridge/internal/core/storage/kv"
	"github.com/dep2p/go-rtdbridge/pkg/lib/valuecodec"
	"github.com/dep2p/go-rtdbridge/pkg/types"
)

// ValuesPrefix 最新值记录的键前缀
var ValuesPrefix = []byte("v/")

// Values 按路径保存总线最新值
//
// 值以 valuecodec 编码，键为 "v/" + 路径。启用缓存时，Load 的结果
// （包括不存在）按 LRU 保留在内存中，Save 与 Delete 同步更新缓存。
type Values struct {
	store *kv.Store
	cache *lru.Cache[string, cachedValue]
}

// cachedValue 缓存条目，ok 为 false 表示路径没有记录
type cachedValue struct {
	val types.Value
	ok  bool
}

// ValuesOption 最新值存储选项
type ValuesOption func(*Values)

// WithCache 启用容量为 size 的读缓存，size <= 0 时不启用
func WithCache(size int) ValuesOption {
	return func(v *Values) {
		if size <= 0 {
			return
		}
		c, err := lru.New[string, cachedValue](size)
		if err != nil {
			logger.Warn("创建最新值缓存失败", "size", size, "error", err)
			return
		}
		v.cache = c
	}
}

// NewValues 在引擎上创建最新值存储
func NewValues(eng engine.Engine, opts ...ValuesOption) *Values {
	v := &Values{store: kv.New(eng, ValuesPrefix)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load 读取路径的最新值，不存在时 ok 为 false
func (v *Values) Load(path string) (types.Value, bool, error) {
	if v.cache != nil {
		if c, hit := v.cache.Get(path); hit {
			return c.val, c.ok, nil
		}
	}

	data, err := v.store.Get([]byte(path))
	if engine.IsNotFound(err) {
		v.remember(path, types.Null(), false)
		return types.Null(), false, nil
	}
	if err != nil {
		return types.Null(), false, err
	}
	val, err := valuecodec.Unmarshal(data)
	if err != nil {
		return types.Null(), false, fmt.Errorf("decode %s: %w: %w", path, engine.ErrCorrupted, err)
	}
	v.remember(path, val, true)
	return val, true, nil
}

// Save 保存路径的最新值
func (v *Values) Save(path string, val types.Value) error {
	data, err := valuecodec.Marshal(val)
	if err != nil {
		return err
	}
	if err := v.store.Put([]byte(path), data); err != nil {
		v.forget(path)
		return err
	}
	v.remember(path, val, true)
	return nil
}

// Delete 删除路径的记录
func (v *Values) Delete(path string) error {
	if err := v.store.Delete([]byte(path)); err != nil {
		v.forget(path)
		return err
	}
	v.remember(path, types.Null(), false)
	return nil
}

// Clear 删除所有记录并清空缓存，返回删除的数量
func (v *Values) Clear() (int, error) {
	n, err := v.store.Clear()
	if v.cache != nil {
		v.cache.Purge()
	}
	return n, err
}

// Sync 将已保存的最新值刷到磁盘
//
// 未开启 SyncWrites 时，写入可能停留在引擎缓冲中，关闭前调用以避免丢失。
func (v *Values) Sync() error {
	return v.store.Sync()
}

// Cached 返回当前缓存的条目数，未启用缓存时为 0
func (v *Values) Cached() int {
	if v.cache == nil {
		return 0
	}
	return v.cache.Len()
}

func (v *Values) remember(path string, val types.Value, ok bool) {
	if v.cache != nil {
		v.cache.Add(path, cachedValue{val: val, ok: ok})
	}
}

func (v *Values) forget(path string) {
	if v.cache != nil {
		v.cache.Remove(path)
	}
}

// Range 遍历所有记录，fn 返回 false 时停止
//
// 无法解码的记录被跳过并计入返回的 skipped。
func (v *Values) Range(fn func(path string, val types.Value) bool) (skipped int, err error) {
	err = v.store.Scan(func(key, data []byte) bool {
		val, derr := valuecodec.Unmarshal(data)
		if derr != nil {
			skipped++
			logger.Warn("跳过损坏的最新值记录", "path", string(key), "error", derr)
			return true
		}
		return fn(string(key), val)
	})
	return skipped, err
}

// Count 返回记录数量
func (v *Values) Count() (int64, error) {
	return v.store.Count()
}
