package localbus

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/types"
)

// ============================================================================
// Subscription 实现
// ============================================================================

// Subscription 路径订阅
type Subscription struct {
	bus  *Bus
	id   string
	path string
	out  chan types.Value

	closeOnce sync.Once
}

var _ interfaces.BusSubscription = (*Subscription)(nil)

func newSubscription(b *Bus, path string, buffer int) *Subscription {
	return &Subscription{
		bus:  b,
		id:   uuid.NewString(),
		path: path,
		out:  make(chan types.Value, buffer),
	}
}

// ID 返回订阅标识
func (s *Subscription) ID() string { return s.id }

// Path 返回订阅路径
func (s *Subscription) Path() string { return s.path }

// Write 向路径写入值，即发即忘
func (s *Subscription) Write(v types.Value) {
	s.bus.Publish(s.path, v)
}

// Last 返回路径的最新值
func (s *Subscription) Last() types.Value {
	return s.bus.Last(s.path)
}

// Updates 返回更新通道
func (s *Subscription) Updates() <-chan types.Value {
	return s.out
}

// Close 取消订阅
//
// Close 是并发安全的，可以多次调用。
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.bus.removeSub(s)
		close(s.out)
	})
	return nil
}

// shutdown 总线关闭时调用，节点已移除订阅
func (s *Subscription) shutdown() {
	s.closeOnce.Do(func() {
		close(s.out)
	})
}

// offer 投递更新，通道满时丢弃最旧的一个，返回 false 表示发生了丢弃
//
// 调用方持有节点锁，发送方唯一。
func (s *Subscription) offer(v types.Value) bool {
	select {
	case s.out <- v:
		return true
	default:
	}

	select {
	case <-s.out:
	default:
	}
	select {
	case s.out <- v:
	default:
	}
	return false
}
