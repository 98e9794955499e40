package xloper

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-rtdbridge/pkg/types"
)

// ============================================================================
// 构造测试
// ============================================================================

// TestFromF64_Finite 测试有限浮点往返
func TestFromF64_Finite(t *testing.T) {
	for _, f := range []float64{0, -0.5, 1, 3.14159, math.MaxFloat64, math.SmallestNonzeroFloat64, -1e300} {
		v := FromF64(f)
		assert.Equal(t, KindNum, v.Kind())

		got := ToBus(&v)
		back, ok := got.AsF64()
		require.True(t, ok, "f=%v", f)
		assert.Equal(t, math.Float64bits(f), math.Float64bits(back), "f=%v", f)
	}
}

// TestFromF64_NonFinite 测试 NaN/Inf 编码为 #N/A
func TestFromF64_NonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		v := FromF64(f)
		assert.True(t, v.IsErr(ErrNA))
		assert.Equal(t, "#N/A", v.String())
	}
}

// TestFromString_Boundary 测试 32767/32768 码元边界
func TestFromString_Boundary(t *testing.T) {
	alloc := NewTrackingAllocator()

	ok := FromString(alloc, strings.Repeat("a", MaxStringLen))
	require.Equal(t, KindStr, ok.Kind())
	assert.Equal(t, OwnedSelf, ok.Ownership())
	assert.Len(t, ok.Units(), MaxStringLen)
	assert.Equal(t, uint16(MaxStringLen), ok.str[0])

	tooLong := FromString(alloc, strings.Repeat("a", MaxStringLen+1))
	assert.True(t, tooLong.IsErr(ErrValue))

	require.NoError(t, ok.Destroy(alloc))
	assert.Equal(t, 0, alloc.Live())
	assert.Equal(t, 1, alloc.Allocs())
}

// TestFromString_SurrogatePairs 测试补充平面字符按两个码元计数
func TestFromString_SurrogatePairs(t *testing.T) {
	alloc := NewTrackingAllocator()

	// U+1F600 编码为两个码元
	s := strings.Repeat("\U0001F600", MaxStringLen/2)
	v := FromString(alloc, s)
	require.Equal(t, KindStr, v.Kind())
	assert.Len(t, v.Units(), MaxStringLen-1)

	got, err := ToString(&v)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	over := FromString(alloc, s+"\U0001F600")
	assert.True(t, over.IsErr(ErrValue))

	require.NoError(t, v.Destroy(alloc))
	assert.Equal(t, 0, alloc.Live())
}

// TestConstString 测试静态字符串
func TestConstString(t *testing.T) {
	v := ConstString("#SET")
	assert.Equal(t, OwnedNone, v.Ownership())
	assert.Equal(t, "#SET", v.String())
	assert.Equal(t, tagStr, v.Tag())

	assert.Panics(t, func() { ConstString(strings.Repeat("x", MaxStringLen+1)) })
}

// ============================================================================
// 类型标签测试
// ============================================================================

// TestTag_OwnershipBits 测试所有权位编码
func TestTag_OwnershipBits(t *testing.T) {
	alloc := HeapAllocator{}

	self := FromString(alloc, "x")
	assert.Equal(t, tagStr|BitSelfFree, self.Tag())
	assert.Equal(t, KindStr, KindOf(self.Tag()))
	assert.Equal(t, OwnedSelf, OwnershipOf(self.Tag()))

	host := self.IntoExternallyOwned()
	assert.Equal(t, tagStr|BitHostFree, host.Tag())
	assert.Equal(t, OwnedHost, OwnershipOf(host.Tag()))

	assert.Equal(t, KindBigData, KindOf(tagBigData|BitHostFree))
	assert.Equal(t, KindUnknown, KindOf(0x8000))
	assert.Equal(t, OwnedNone, OwnershipOf(tagNum))
}

// TestMulti_Cells 测试 Multi 元素访问
func TestMulti_Cells(t *testing.T) {
	alloc := NewTrackingAllocator()

	m := NewMulti(alloc, 2, 3)
	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Nil(t, m.Cell(2, 0))
	assert.Equal(t, KindNil, m.Cell(1, 2).Kind())

	s := FromString(alloc, "cell")
	require.True(t, m.SetCell(alloc, 1, 2, &s))
	assert.Equal(t, KindNil, s.Kind(), "source must be moved")
	assert.Equal(t, "cell", m.Cell(1, 2).String())

	// 覆盖元素时旧负载被释放
	s2 := FromString(alloc, "other")
	require.True(t, m.SetCell(alloc, 1, 2, &s2))
	assert.Equal(t, 2, alloc.Live())

	require.NoError(t, m.Destroy(alloc))
	assert.Equal(t, 0, alloc.Live())
	assert.Equal(t, 0, alloc.Faults())
}

// ============================================================================
// 格式化测试
// ============================================================================

// TestString_Display 测试显示格式
func TestString_Display(t *testing.T) {
	alloc := HeapAllocator{}
	str := FromString(alloc, "héllo")
	multi := NewMulti(alloc, 1, 1)

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"nil", Nil(), "#NIL"},
		{"missing", Missing(), "#MISSING"},
		{"num", FromF64(2.5), "2.5"},
		{"int", FromInt(-7), "-7"},
		{"bool", FromBool(true), "true"},
		{"str", str, "héllo"},
		{"multi", multi, "#MULTI"},
		{"err", ErrorValue(ErrDiv0), "#DIV/0!"},
		{"unknown err", ErrorValue(99), "#ERR99"},
		{"sref", FromSRef(Range{RowFirst: 1, RowLast: 3, ColFirst: 2, ColLast: 4}), "Sref:(1,2) -> (3,4)"},
		{"ref", FromRefs(Range{}), "#REF"},
		{"flow", FromFlow(1), "#FLOW"},
		{"bigdata", FromBigData([]byte{1}), "#BIG_DATA"},
		{"unknown", FromUnknown(0x9000), "#UNKNOWN36864"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

// TestString_InvalidUTF16 测试非法字符串的显示
func TestString_InvalidUTF16(t *testing.T) {
	v := FromHost([]uint16{1, 0xD800})
	assert.True(t, strings.HasPrefix(v.String(), "#STRING_ERR: "))

	bus := ToBus(&v)
	msg, ok := bus.AsError()
	require.True(t, ok)
	assert.Equal(t, ErrInvalidUTF16.Error(), msg)
	assert.Equal(t, types.KindError, bus.Kind())
}
