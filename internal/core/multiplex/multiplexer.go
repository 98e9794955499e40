// Package multiplex 实现路径写入复用器
//
// Multiplexer 把任意 goroutine 上的 Set 调用排入一个无界 FIFO 邮箱，由唯一的
// actor goroutine 依次处理。actor 独占路径到订阅句柄的映射：已知路径直接写入，
// 未知路径先订阅一次再写入。订阅失败不缓存，下一次写入同一路径会重新订阅。
// 映射从不淘汰。
package multiplex

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
	"github.com/dep2p/go-rtdbridge/pkg/types"
)

var logger = log.Logger("core/multiplex")

// Connector 建立总线连接，由 New 恰好调用一次
type Connector func() (interfaces.Bus, error)

// request 一次待写入
type request struct {
	path  string
	value types.Value
}

// Multiplexer 路径写入复用器
type Multiplexer struct {
	bus     interfaces.Bus
	subOpts []interfaces.SubscriptionOpt

	mu       sync.Mutex
	queue    []request
	closing  bool
	exited   bool
	closeErr error

	// wake 容量为 1，通知 actor 邮箱非空或正在关闭
	wake chan struct{}
	done chan struct{}
	// closed 在首次 Close 完成全部清理、写入 closeErr 后关闭
	closed chan struct{}

	// subs 仅由 actor 访问
	subs map[string]interfaces.BusSubscription

	writes     atomic.Uint64
	subscribes atomic.Uint64
	failures   atomic.Uint64
}

// Stats 复用器统计
type Stats struct {
	// Writes 成功写入总线的次数
	Writes uint64
	// Subscribes 成功创建的订阅数
	Subscribes uint64
	// Failures 订阅失败次数
	Failures uint64
}

// New 连接总线并启动 actor
//
// 连接失败返回 *TransportError。
func New(connect Connector, opts ...Option) (*Multiplexer, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	bus, err := connect()
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}
	if bus == nil {
		return nil, &TransportError{Op: "connect", Err: fmt.Errorf("connector returned nil bus")}
	}

	m := &Multiplexer{
		bus:     bus,
		subOpts: s.subOpts,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		closed:  make(chan struct{}),
		subs:    make(map[string]interfaces.BusSubscription),
	}
	go m.run()

	logger.Debug("复用器已启动")
	return m, nil
}

// Set 把写请求排入邮箱，不等待写入完成
//
// 仅在 actor 已退出（关闭或崩溃）后返回 *SendError。
func (m *Multiplexer) Set(path string, v types.Value) error {
	m.mu.Lock()
	if m.exited || m.closing {
		m.mu.Unlock()
		return &SendError{Path: path, Value: v}
	}
	m.queue = append(m.queue, request{path: path, value: v})
	m.mu.Unlock()

	m.signal()
	return nil
}

func (m *Multiplexer) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Close 处理完已入队的写请求后停止 actor，并关闭所有订阅与总线连接
//
// 可重复调用，后续调用等待首次关闭完成并返回它的结果。
func (m *Multiplexer) Close() error {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		<-m.closed
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.closeErr
	}
	m.closing = true
	m.mu.Unlock()

	m.signal()
	<-m.done

	var errs error
	for path, sub := range m.subs {
		if err := sub.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close subscription %s: %w", path, err))
		}
	}
	errs = multierr.Append(errs, m.bus.Close())

	m.mu.Lock()
	m.closeErr = errs
	m.mu.Unlock()
	close(m.closed)

	logger.Debug("复用器已关闭", "paths", len(m.subs))
	return errs
}

// Done 返回 actor 退出时关闭的通道
func (m *Multiplexer) Done() <-chan struct{} {
	return m.done
}

// Stats 返回统计快照
func (m *Multiplexer) Stats() Stats {
	return Stats{
		Writes:     m.writes.Load(),
		Subscribes: m.subscribes.Load(),
		Failures:   m.failures.Load(),
	}
}

// ============================================================================
//                              actor
// ============================================================================

func (m *Multiplexer) run() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("复用器崩溃，本会话不再接受写入", "panic", r)
		}
		m.mu.Lock()
		m.exited = true
		dropped := len(m.queue)
		m.queue = nil
		m.mu.Unlock()
		if dropped > 0 {
			logger.Warn("丢弃未处理的写请求", "count", dropped)
		}
		close(m.done)
	}()

	for range m.wake {
		for {
			m.mu.Lock()
			batch := m.queue
			m.queue = nil
			closing := m.closing
			m.mu.Unlock()

			if len(batch) == 0 {
				if closing {
					return
				}
				break
			}
			for _, req := range batch {
				m.apply(req)
			}
		}
	}
}

func (m *Multiplexer) apply(req request) {
	sub, ok := m.subs[req.path]
	if !ok {
		var err error
		sub, err = m.bus.Subscribe(req.path, m.subOpts...)
		if err != nil {
			m.failures.Add(1)
			terr := &TransportError{Op: "subscribe", Path: req.path, Err: err}
			logger.Warn("订阅失败，丢弃本次写入", "path", req.path, "error", terr)
			return
		}
		m.subs[req.path] = sub
		m.subscribes.Add(1)
		logger.Debug("新建订阅", "path", req.path)
	}
	sub.Write(req.value)
	m.writes.Add(1)
}
