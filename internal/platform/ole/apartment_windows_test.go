//go:build windows

package ole

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/tests/mocks"
)

// TestApartment_MarshalRejectsNonDispatch 只接受 IDispatch
func TestApartment_MarshalRejectsNonDispatch(t *testing.T) {
	ap := NewApartment()

	_, err := ap.Marshal(mocks.NewMockSink())
	assert.ErrorIs(t, err, dispatch.ErrNotSink)

	var nilDispatch *IDispatch
	_, err = ap.Marshal(nilDispatch)
	assert.ErrorIs(t, err, ErrNilDispatch)
}

// TestApartment_EnterLeave 工作线程可以进入并离开套间
func TestApartment_EnterLeave(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	th, err := NewApartment().Enter()
	require.NoError(t, err)
	th.Leave()
}

// TestApartment_ForeignToken 其他套间编组的令牌不能解组
func TestApartment_ForeignToken(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	other := dispatch.NewInProcApartment()
	tok, err := other.Marshal(mocks.NewMockSink())
	require.NoError(t, err)

	th, err := NewApartment().Enter()
	require.NoError(t, err)
	defer th.Leave()

	_, err = th.Unmarshal(tok)
	assert.ErrorIs(t, err, dispatch.ErrForeignToken)
}

// TestHRESULTError 错误文本包含操作与 HRESULT
func TestHRESULTError(t *testing.T) {
	err := hresult("CoInitializeEx", uintptr(0x80004005))
	require.Error(t, err)
	assert.Equal(t, "CoInitializeEx: HRESULT 0x80004005", err.Error())
	assert.NoError(t, hresult("ok", 0))
}
