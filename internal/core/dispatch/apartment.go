package dispatch

import (
	"sync"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
)

// ============================================================================
//                              Token - 编组令牌
// ============================================================================

// Token 跨线程传递事件接收者的一次性令牌
//
// 由 Apartment.Marshal 在构造线程上产生，由 Apartment.Unmarshal 在工作线程上
// 恰好消费一次。令牌本身不能调用接收者。
type Token struct {
	mu       sync.Mutex
	owner    Apartment
	payload  any
	consumed bool
}

// NewToken 创建由 owner 编组的令牌
func NewToken(owner Apartment, payload any) *Token {
	return &Token{owner: owner, payload: payload}
}

// Take 取出负载并标记已消费，owner 必须与编组时一致
func (t *Token) Take(owner Apartment) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.owner != owner {
		return nil, ErrForeignToken
	}
	if t.consumed {
		return nil, ErrTokenConsumed
	}
	t.consumed = true
	p := t.payload
	t.payload = nil
	return p, nil
}

// Consumed 令牌是否已被消费
func (t *Token) Consumed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consumed
}

// ============================================================================
//                              Apartment - 线程套间
// ============================================================================

// Apartment 事件接收者所在线程模型的抽象
//
// Marshal 在构造线程上调用；Enter 在锁定的工作线程上调用，返回的 Thread
// 只能在同一线程上使用。
type Apartment interface {
	// Marshal 将接收者编组为令牌
	Marshal(sink any) (*Token, error)

	// Enter 初始化当前线程
	Enter() (Thread, error)
}

// Thread 已进入套间的工作线程
type Thread interface {
	// Unmarshal 在当前线程上消费令牌，得到可调用的接收者
	Unmarshal(tok *Token) (interfaces.EventSink, error)

	// Leave 释放解组得到的接收者并清理当前线程
	Leave()
}

// ============================================================================
//                              InProcApartment
// ============================================================================

// InProcApartment 进程内套间
//
// 解组得到的接收者绑定到工作线程的 OS 线程号，在其他线程上调用返回 ErrWrongThread。
// 平台不提供线程号时不做线程检查。
type InProcApartment struct{}

var _ Apartment = (*InProcApartment)(nil)

// NewInProcApartment 创建进程内套间
func NewInProcApartment() *InProcApartment {
	return &InProcApartment{}
}

// Marshal 实现 Apartment
func (a *InProcApartment) Marshal(sink any) (*Token, error) {
	s, ok := sink.(interfaces.EventSink)
	if !ok || s == nil {
		return nil, ErrNotSink
	}
	return NewToken(a, s), nil
}

// Enter 实现 Apartment，记录当前 OS 线程
func (a *InProcApartment) Enter() (Thread, error) {
	return &inProcThread{ap: a, tid: threadID()}, nil
}

// inProcThread 进程内套间的工作线程
type inProcThread struct {
	ap  *InProcApartment
	tid int

	mu   sync.Mutex
	left bool
}

// Unmarshal 实现 Thread
func (th *inProcThread) Unmarshal(tok *Token) (interfaces.EventSink, error) {
	th.mu.Lock()
	left := th.left
	th.mu.Unlock()
	if left || th.tid != threadID() {
		return nil, ErrNotEntered
	}

	p, err := tok.Take(th.ap)
	if err != nil {
		return nil, err
	}
	return &boundSink{inner: p.(interfaces.EventSink), tid: th.tid}, nil
}

// Leave 实现 Thread
func (th *inProcThread) Leave() {
	th.mu.Lock()
	defer th.mu.Unlock()
	th.left = true
}

// boundSink 绑定到单个 OS 线程的接收者
type boundSink struct {
	inner interfaces.EventSink
	tid   int
}

func (s *boundSink) Resolve(name string) (interfaces.MethodID, error) {
	if threadID() != s.tid {
		return 0, ErrWrongThread
	}
	return s.inner.Resolve(name)
}

func (s *boundSink) Invoke(id interfaces.MethodID) error {
	if threadID() != s.tid {
		return ErrWrongThread
	}
	return s.inner.Invoke(id)
}
