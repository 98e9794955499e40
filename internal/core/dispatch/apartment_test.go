package dispatch

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/tests/mocks"
)

// TestToken_SingleUse 令牌只能消费一次
func TestToken_SingleUse(t *testing.T) {
	ap := NewInProcApartment()
	tok := NewToken(ap, "payload")

	p, err := tok.Take(ap)
	require.NoError(t, err)
	assert.Equal(t, "payload", p)
	assert.True(t, tok.Consumed())

	_, err = tok.Take(ap)
	assert.ErrorIs(t, err, ErrTokenConsumed)
}

// TestToken_ForeignApartment 其他套间不能消费令牌
func TestToken_ForeignApartment(t *testing.T) {
	tok := NewToken(NewInProcApartment(), "payload")

	_, err := tok.Take(NewInProcApartment())
	assert.ErrorIs(t, err, ErrForeignToken)
	assert.False(t, tok.Consumed())
}

// TestInProcApartment_MarshalRejectsNonSink 非接收者不能编组
func TestInProcApartment_MarshalRejectsNonSink(t *testing.T) {
	ap := NewInProcApartment()

	_, err := ap.Marshal(42)
	assert.ErrorIs(t, err, ErrNotSink)

	var nilSink interfaces.EventSink
	_, err = ap.Marshal(nilSink)
	assert.ErrorIs(t, err, ErrNotSink)
}

// TestInProcApartment_ThreadLifecycle 线程解组与离开
func TestInProcApartment_ThreadLifecycle(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ap := NewInProcApartment()
	tok, err := ap.Marshal(mocks.NewMockSink())
	require.NoError(t, err)

	th, err := ap.Enter()
	require.NoError(t, err)

	sink, err := th.Unmarshal(tok)
	require.NoError(t, err)
	require.NoError(t, sink.Invoke(1))

	_, err = th.Unmarshal(tok)
	assert.ErrorIs(t, err, ErrTokenConsumed)

	// 离开后不能再解组
	th.Leave()
	tok2, err := ap.Marshal(mocks.NewMockSink())
	require.NoError(t, err)
	_, err = th.Unmarshal(tok2)
	assert.ErrorIs(t, err, ErrNotEntered)
	assert.False(t, tok2.Consumed())
}

// TestInProcApartment_RejectsForeignThread 其他线程调用解组后的接收者返回错误
func TestInProcApartment_RejectsForeignThread(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		t.Skip("平台不提供线程号")
	}

	inner := mocks.NewMockSink()
	ap := NewInProcApartment()
	tok, err := ap.Marshal(inner)
	require.NoError(t, err)

	type result struct {
		sink interfaces.EventSink
		err  error
	}
	ready := make(chan result)
	release := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		th, err := ap.Enter()
		if err != nil {
			ready <- result{nil, err}
			return
		}
		defer th.Leave()
		s, err := th.Unmarshal(tok)
		ready <- result{s, err}
		<-release
	}()

	r := <-ready
	defer close(release)
	require.NoError(t, r.err)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	_, err = r.sink.Resolve(DefaultMethod)
	assert.ErrorIs(t, err, ErrWrongThread)
	assert.ErrorIs(t, r.sink.Invoke(1), ErrWrongThread)
	assert.Equal(t, 0, inner.Invocations())
}
