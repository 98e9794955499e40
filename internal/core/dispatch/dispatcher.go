package dispatch

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
)

var logger = log.Logger("core/dispatch")

// ============================================================================
//                              Dispatcher
// ============================================================================

// Dispatcher 宿主通知派发器
//
// 每个 Dispatcher 恰好拥有一个工作 goroutine，该 goroutine 锁定在自己的
// OS 线程上，是解组后接收者的唯一调用者。
type Dispatcher struct {
	ap Apartment
	s  settings

	// signal 容量为 1，满时 Notify 直接丢弃（合并）
	signal chan struct{}

	mu     sync.RWMutex
	closed bool

	// stop 关闭后工作线程放弃正在进行的重试
	stop chan struct{}
	done chan struct{}

	errLog *rate.Sometimes

	// 工作线程启动失败的原因，done 关闭后可读
	startErr error

	notifies    atomic.Uint64
	invocations atomic.Uint64
	failures    atomic.Uint64
}

// Stats 派发统计
type Stats struct {
	// Notifies 被接受的 Notify 次数（关闭后丢弃的不计）
	Notifies uint64
	// Invocations 对接收者的调用次数（含失败）
	Invocations uint64
	// Failures 失败的调用次数
	Failures uint64
}

// New 在调用线程上编组 sink 并启动工作线程
//
// 编组失败返回 *MarshalError，此时不会启动工作线程。
func New(ap Apartment, sink any, opts ...Option) (*Dispatcher, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	tok, err := ap.Marshal(sink)
	if err != nil {
		return nil, &MarshalError{Op: "marshal", Err: err}
	}

	d := &Dispatcher{
		ap:     ap,
		s:      s,
		signal: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		errLog: newSometimes(s),
	}

	go d.run(tok)

	logger.Debug("派发器已启动", "method", s.method, "retryBackoff", s.retryBackoff)
	return d, nil
}

func newSometimes(s settings) *rate.Sometimes {
	if s.errorLogInterval <= 0 {
		return &rate.Sometimes{Every: 1}
	}
	return &rate.Sometimes{First: 1, Interval: s.errorLogInterval}
}

// Notify 请求一次宿主通知
//
// 可在任意 goroutine 并发调用，从不阻塞。工作线程空闲前的多次调用合并为一次。
// 关闭后调用被静默丢弃。
func (d *Dispatcher) Notify() {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	d.notifies.Add(1)
	select {
	case d.signal <- struct{}{}:
	default:
	}
}

// Close 关闭信号通道，工作线程处理完已排队的信号后退出
//
// 失败的通知平时按固定间隔无限重试，这是唯一的例外：关闭时正在退避等待的
// 那次通知被放弃，不再送达。会话关闭后宿主不再轮询，送达也没有意义。
//
// 不等待工作线程退出，使用 Done 等待。可重复调用。
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	close(d.signal)
	close(d.stop)
	return nil
}

// Done 返回工作线程退出时关闭的通道
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Err 返回工作线程启动阶段的错误
//
// 仅在 Done 关闭后有意义；正常退出返回 nil。
func (d *Dispatcher) Err() error {
	select {
	case <-d.done:
		return d.startErr
	default:
		return nil
	}
}

// Stats 返回派发统计快照
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Notifies:    d.notifies.Load(),
		Invocations: d.invocations.Load(),
		Failures:    d.failures.Load(),
	}
}

// ============================================================================
//                              工作线程
// ============================================================================

func (d *Dispatcher) run(tok *Token) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(d.done)

	th, err := d.ap.Enter()
	if err != nil {
		d.startErr = &MarshalError{Op: "enter", Err: err}
		logger.Error("初始化工作线程失败", "error", err)
		return
	}
	defer th.Leave()

	sink, err := th.Unmarshal(tok)
	if err != nil {
		d.startErr = &MarshalError{Op: "unmarshal", Err: err}
		logger.Error("解组事件接收者失败", "error", err)
		return
	}

	id, err := sink.Resolve(d.s.method)
	if err != nil {
		d.startErr = &MarshalError{Op: "resolve", Err: err}
		logger.Error("解析通知方法失败", "method", d.s.method, "error", err)
		return
	}

	for range d.signal {
		// 合并等待期间到达的信号
		select {
		case _, ok := <-d.signal:
			if !ok {
				// 通道已关闭，仍完成本批通知
				d.deliver(sink, id)
				return
			}
		default:
		}

		if !d.deliver(sink, id) {
			return
		}
	}
	logger.Debug("派发器工作线程退出")
}

// deliver 调用接收者直到成功；关闭期间放弃重试时返回 false
func (d *Dispatcher) deliver(sink interfaces.EventSink, id interfaces.MethodID) bool {
	for {
		d.invocations.Add(1)
		err := sink.Invoke(id)
		if err == nil {
			return true
		}
		d.failures.Add(1)

		d.errLog.Do(func() {
			logger.Warn("通知宿主失败，稍后重试",
				"method", d.s.method,
				"failures", d.failures.Load(),
				"error", err)
		})

		select {
		case <-d.s.clock.After(d.s.retryBackoff):
		case <-d.stop:
			logger.Debug("派发器关闭，放弃重试")
			return false
		}
	}
}
