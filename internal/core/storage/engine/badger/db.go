package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-rtdbridge/internal/core/storage/engine"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
)

var logger = log.Logger("storage/badger")

// Engine BadgerDB 存储引擎
type Engine struct {
	db     *badger.DB
	config *engine.Config
	closed atomic.Bool

	stats struct {
		numReads   atomic.Int64
		numWrites  atomic.Int64
		numDeletes atomic.Int64
		numMisses  atomic.Int64
		numGCRuns  atomic.Int64
	}

	gcCtx    context.Context
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	gcOnce   sync.Once
}

var _ engine.Engine = (*Engine)(nil)

// New 打开 BadgerDB 存储引擎
func New(cfg *engine.Config) (*Engine, error) {
	if cfg == nil {
		return nil, engine.ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, err
	}

	db, err := badger.Open(buildOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger.Debug("BadgerDB 已打开", "path", cfg.Path, "inMemory", cfg.InMemory)
	return &Engine{
		db:       db,
		config:   cfg,
		gcCtx:    ctx,
		gcCancel: cancel,
	}, nil
}

func buildOptions(cfg *engine.Config) badger.Options {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}

	return opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithBlockCacheSize(cfg.BlockCacheSize).
		WithZSTDCompressionLevel(cfg.ZSTDCompressionLevel).
		WithLogger(badgerLogger{})
}

// badgerLogger 把 BadgerDB 的日志转发到 storage/badger 子系统
//
// BadgerDB 的 Info 日志很多，降为 Debug。
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Trace(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 启动值日志 GC，内存模式或 GCInterval 为 0 时不启动
func (e *Engine) Start() error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if e.config.InMemory || e.config.GCInterval <= 0 {
		return nil
	}
	e.gcOnce.Do(e.startGC)
	return nil
}

func (e *Engine) startGC() {
	e.gcWg.Add(1)
	go func() {
		defer e.gcWg.Done()

		ticker := time.NewTicker(e.config.GCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-e.gcCtx.Done():
				return
			case <-ticker.C:
				e.runGC()
			}
		}
	}()
}

// runGC 反复回收直到没有可回收的值日志
func (e *Engine) runGC() {
	for !e.closed.Load() {
		if err := e.db.RunValueLogGC(e.config.GCDiscardRatio); err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				logger.Debug("值日志 GC 结束", "error", err)
			}
			return
		}
		e.stats.numGCRuns.Add(1)
	}
}

// Close 停止 GC 并关闭数据库，可重复调用
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.gcCancel()
	e.gcWg.Wait()
	return e.db.Close()
}

// ============================================================================
//                              读写
// ============================================================================

// Get 获取指定键的值
func (e *Engine) Get(key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, engine.ErrClosed
	}
	if len(key) == 0 {
		return nil, engine.ErrEmptyKey
	}

	e.stats.numReads.Add(1)
	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		e.stats.numMisses.Add(1)
	}
	if err != nil {
		return nil, convertError(err)
	}
	return value, nil
}

// Put 设置键值对
func (e *Engine) Put(key, value []byte) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}

	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err == nil {
		e.stats.numWrites.Add(1)
	}
	return convertError(err)
}

// Delete 删除指定键
func (e *Engine) Delete(key []byte) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}

	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err == nil {
		e.stats.numDeletes.Add(1)
	}
	return convertError(err)
}

// Has 检查键是否存在
func (e *Engine) Has(key []byte) (bool, error) {
	if e.closed.Load() {
		return false, engine.ErrClosed
	}
	if len(key) == 0 {
		return false, engine.ErrEmptyKey
	}

	var exists bool
	err := e.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			exists = true
			return nil
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil
		default:
			return err
		}
	})
	return exists, convertError(err)
}

// NewBatch 创建批量写入对象
func (e *Engine) NewBatch() engine.Batch {
	return &WriteBatch{
		db:    e,
		batch: e.db.NewWriteBatch(),
	}
}

// NewPrefixIterator 创建前缀迭代器
func (e *Engine) NewPrefixIterator(prefix []byte) engine.Iterator {
	txn := e.db.NewTransaction(false)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchSize = 100
	opts.Prefix = prefix

	return &Iterator{
		txn:    txn,
		iter:   txn.NewIterator(opts),
		prefix: prefix,
	}
}

// Sync 同步数据到磁盘，内存模式下为空操作
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if e.config.InMemory {
		return nil
	}
	return e.db.Sync()
}

// Stats 获取引擎统计信息
func (e *Engine) Stats() engine.Stats {
	lsm, vlog := e.db.Size()
	return engine.Stats{
		LSMSize:    lsm,
		VlogSize:   vlog,
		NumReads:   e.stats.numReads.Load(),
		NumWrites:  e.stats.numWrites.Load(),
		NumDeletes: e.stats.numDeletes.Load(),
		NumMisses:  e.stats.numMisses.Load(),
		NumGCRuns:  e.stats.numGCRuns.Load(),
	}
}

// convertError 转换 BadgerDB 错误到引擎错误
func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return engine.ErrNotFound
	case errors.Is(err, badger.ErrEmptyKey):
		return engine.ErrEmptyKey
	case errors.Is(err, badger.ErrDBClosed):
		return engine.ErrClosed
	default:
		return err
	}
}
