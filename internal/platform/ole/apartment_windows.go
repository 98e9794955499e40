//go:build windows

package ole

import (
	"errors"
	"sync"

	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
)

var logger = log.Logger("platform/ole")

// ErrNilDispatch 传入的 IDispatch 为空
var ErrNilDispatch = errors.New("ole: nil IDispatch")

// Apartment COM 单线程套间
type Apartment struct{}

var _ dispatch.Apartment = (*Apartment)(nil)

// NewApartment 创建 COM 套间
func NewApartment() *Apartment {
	return &Apartment{}
}

// Marshal 实现 dispatch.Apartment，sink 必须是 *IDispatch
//
// 必须在持有该接口的宿主线程上调用。
func (a *Apartment) Marshal(sink any) (*dispatch.Token, error) {
	d, ok := sink.(*IDispatch)
	if !ok {
		return nil, dispatch.ErrNotSink
	}
	if d == nil {
		return nil, ErrNilDispatch
	}
	stream, err := marshalDispatch(d)
	if err != nil {
		return nil, err
	}
	return dispatch.NewToken(a, stream), nil
}

// Enter 实现 dispatch.Apartment，在当前线程上初始化单线程套间
func (a *Apartment) Enter() (dispatch.Thread, error) {
	if err := coInitialize(); err != nil {
		return nil, err
	}
	return &thread{ap: a}, nil
}

// thread 已初始化 COM 的工作线程
type thread struct {
	ap *Apartment

	mu    sync.Mutex
	proxy *IDispatch
}

// Unmarshal 实现 dispatch.Thread
func (th *thread) Unmarshal(tok *dispatch.Token) (interfaces.EventSink, error) {
	p, err := tok.Take(th.ap)
	if err != nil {
		return nil, err
	}
	d, err := unmarshalDispatch(p.(*IUnknown))
	if err != nil {
		return nil, err
	}

	th.mu.Lock()
	th.proxy = d
	th.mu.Unlock()
	return &dispatchSink{d: d}, nil
}

// Leave 实现 dispatch.Thread，释放代理并反初始化 COM
func (th *thread) Leave() {
	th.mu.Lock()
	proxy := th.proxy
	th.proxy = nil
	th.mu.Unlock()

	if proxy != nil {
		proxy.unknown().Release()
	}
	coUninitialize()
	logger.Debug("COM 工作线程已退出")
}

// dispatchSink 通过 IDispatch 代理调用通知方法
type dispatchSink struct {
	d *IDispatch
}

func (s *dispatchSink) Resolve(name string) (interfaces.MethodID, error) {
	id, err := s.d.getIDOfName(name)
	if err != nil {
		return 0, err
	}
	return interfaces.MethodID(id), nil
}

func (s *dispatchSink) Invoke(id interfaces.MethodID) error {
	return s.d.invokeMethod(int32(id))
}
