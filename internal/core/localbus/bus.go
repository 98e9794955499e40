package localbus

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
	"github.com/dep2p/go-rtdbridge/pkg/types"
)

var logger = log.Logger("core/localbus")

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 进程内数据总线
type Bus struct {
	mu     sync.RWMutex
	nodes  map[string]*node
	closed bool

	settings settings

	writes  atomic.Int64
	dropped atomic.Int64
}

var _ interfaces.Bus = (*Bus)(nil)

// node 路径节点
type node struct {
	lk    sync.Mutex
	path  string
	sinks []*Subscription
	last  types.Value
}

// Stats 总线统计
type Stats struct {
	Paths         int
	Subscriptions int
	Writes        int64
	Dropped       int64
}

// New 创建新的本地总线
func New(opts ...Option) *Bus {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &Bus{
		nodes:    make(map[string]*node),
		settings: s,
	}
}

// ============================================================================
// interfaces.Bus 接口实现
// ============================================================================

// Subscribe 订阅路径
//
// 路径已有值时，最新值立即投递到更新通道。
func (b *Bus) Subscribe(path string, opts ...interfaces.SubscriptionOpt) (interfaces.BusSubscription, error) {
	if !validPath(path) {
		return nil, ErrInvalidPath
	}

	ss := interfaces.SubscriptionSettings{Buffer: b.settings.buffer}
	for _, opt := range opts {
		opt(&ss)
	}
	if ss.Buffer < 1 {
		ss.Buffer = 1
	}

	sub := newSubscription(b, path, ss.Buffer)

	err := b.withNode(path, func(n *node) {
		if ss.WriteOnly {
			return
		}
		n.sinks = append(n.sinks, sub)
		if n.last.Kind() != types.KindNull {
			sub.out <- n.last
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("新订阅", "path", path, "id", sub.id, "writeOnly", ss.WriteOnly)
	return sub, nil
}

// Publish 向路径发布新值
//
// 总线关闭后的发布被忽略。
func (b *Bus) Publish(path string, v types.Value) {
	if !validPath(path) {
		logger.Debug("忽略无效路径的发布", "path", path)
		return
	}
	err := b.withNode(path, func(n *node) {
		b.emit(n, v)
	})
	if err != nil {
		logger.Debug("总线已关闭，忽略发布", "path", path)
	}
}

// Last 返回路径的最新值，路径未知时为 Null
func (b *Bus) Last(path string) types.Value {
	b.mu.RLock()
	n, ok := b.nodes[path]
	b.mu.RUnlock()
	if !ok {
		return types.Null()
	}
	n.lk.Lock()
	defer n.lk.Unlock()
	return n.last
}

// Paths 返回已知路径
func (b *Bus) Paths() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	paths := make([]string, 0, len(b.nodes))
	for p := range b.nodes {
		paths = append(paths, p)
	}
	return paths
}

// Stats 返回统计信息
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := Stats{
		Paths:   len(b.nodes),
		Writes:  b.writes.Load(),
		Dropped: b.dropped.Load(),
	}
	for _, n := range b.nodes {
		n.lk.Lock()
		st.Subscriptions += len(n.sinks)
		n.lk.Unlock()
	}
	return st
}

// Close 关闭总线，所有订阅随之关闭
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	nodes := b.nodes
	b.nodes = make(map[string]*node)
	b.mu.Unlock()

	for _, n := range nodes {
		n.lk.Lock()
		sinks := n.sinks
		n.sinks = nil
		n.lk.Unlock()

		for _, sub := range sinks {
			sub.shutdown()
		}
	}

	logger.Debug("本地总线已关闭", "paths", len(nodes))
	return nil
}

// ============================================================================
// 内部方法
// ============================================================================

// withNode 在路径节点上执行操作，节点不存在时创建
func (b *Bus) withNode(path string, cb func(*node)) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}

	n, ok := b.nodes[path]
	if !ok {
		n = &node{path: path, last: b.restore(path)}
		b.nodes[path] = n
	}

	n.lk.Lock()
	b.mu.Unlock()

	cb(n)
	n.lk.Unlock()
	return nil
}

// restore 从持久化存储恢复路径的最新值
func (b *Bus) restore(path string) types.Value {
	if b.settings.values == nil {
		return types.Null()
	}
	v, ok, err := b.settings.values.Load(path)
	if err != nil {
		logger.Warn("恢复最新值失败", "path", path, "error", err)
		return types.Null()
	}
	if !ok {
		return types.Null()
	}
	return v
}

// removeSub 移除订阅
func (b *Bus) removeSub(sub *Subscription) {
	b.mu.RLock()
	n, ok := b.nodes[sub.path]
	b.mu.RUnlock()
	if !ok {
		return
	}

	n.lk.Lock()
	defer n.lk.Unlock()
	for i, s := range n.sinks {
		if s == sub {
			n.sinks = append(n.sinks[:i], n.sinks[i+1:]...)
			break
		}
	}
}

// emit 保存最新值并广播到所有订阅者，调用方持有 n.lk
func (b *Bus) emit(n *node, v types.Value) {
	n.last = v
	b.writes.Add(1)

	if b.settings.values != nil {
		if err := b.settings.values.Save(n.path, v); err != nil {
			logger.Warn("保存最新值失败", "path", n.path, "error", err)
		}
	}

	for _, sub := range n.sinks {
		if sub.offer(v) {
			continue
		}
		dropped := b.dropped.Add(1)
		// 每丢弃 warnEvery 个更新警告一次，避免日志泛滥
		if dropped%b.settings.warnEvery == 1 || b.settings.warnEvery == 1 {
			logger.Warn("慢消费者检测",
				"dropped", dropped,
				"path", n.path,
				"subscription", sub.id,
				"reason", "subscriber buffer full")
		}
	}
}

// validPath 路径必须以 "/" 开头且不含空段以外的空白
func validPath(path string) bool {
	return strings.HasPrefix(path, "/") && strings.TrimSpace(path) == path
}
