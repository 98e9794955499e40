package xloper

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-rtdbridge/pkg/types"
)

// ============================================================================
// ToBus 测试
// ============================================================================

// TestToBus_Table 测试每种宿主类型到总线值的映射
func TestToBus_Table(t *testing.T) {
	alloc := HeapAllocator{}
	str := FromString(alloc, "text")

	tests := []struct {
		name string
		v    Value
		want types.Value
	}{
		{"nil", Nil(), types.Null()},
		{"missing", Missing(), types.Null()},
		{"num", FromF64(1.5), types.F64(1.5)},
		{"int", FromInt(42), types.I64(42)},
		{"str", str, types.String("text")},
		{"bool", FromBool(false), types.Bool(false)},
		{"err na", ErrorValue(ErrNA), types.Error("#N/A")},
		{"err getting data", ErrorValue(ErrGettingData), types.Error("#GETTING_DATA")},
		{"err code", ErrorValue(5), types.Error("#ERR5")},
		{"ref", FromRefs(Range{}), types.Error("#UNSUPPORTED_REF")},
		{"flow", FromFlow(0), types.Error("#UNSUPPORTED_FLOW")},
		{"sref", FromSRef(Range{}), types.Error("#UNSUPPORTED_SREF")},
		{"bigdata", FromBigData(nil), types.Error("#UNSUPPORTED_BIGDATA")},
		{"unknown", FromUnknown(0x2000), types.Error("#UNKNOWN8192")},
		{"empty multi", NewMulti(alloc, 0, 0), types.Error("#EMPTY_MULTI")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToBus(&tt.v)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

// TestToBus_MultiTopLeft 测试 Multi 取左上角元素
func TestToBus_MultiTopLeft(t *testing.T) {
	alloc := NewTrackingAllocator()

	m := NewMulti(alloc, 2, 2)
	first := FromInt(7)
	m.SetCell(alloc, 0, 0, &first)
	other := FromString(alloc, "ignored")
	m.SetCell(alloc, 1, 1, &other)

	got := ToBus(&m)
	assert.True(t, types.I64(7).Equal(got))

	f, err := ToF64(&m)
	require.NoError(t, err)
	assert.Equal(t, 7.0, f)

	require.NoError(t, m.Destroy(alloc))
	assert.Equal(t, 0, alloc.Live())
}

// ============================================================================
// 标量转换测试
// ============================================================================

// TestToF64 测试浮点转换
func TestToF64(t *testing.T) {
	v := FromBool(true)
	f, err := ToF64(&v)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)

	v = FromInt(-3)
	f, err = ToF64(&v)
	require.NoError(t, err)
	assert.Equal(t, -3.0, f)

	v = FromString(HeapAllocator{}, "1.5")
	_, err = ToF64(&v)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, KindStr, convErr.From)
	assert.Equal(t, "f64", convErr.To)

	for _, bad := range []Value{Nil(), Missing(), ErrorValue(ErrNA), FromSRef(Range{}), NewMulti(HeapAllocator{}, 0, 0)} {
		_, err := ToF64(&bad)
		assert.ErrorIs(t, err, ErrTypeMismatch, bad.Kind().String())
	}
}

// TestToI64 测试整数转换与饱和
func TestToI64(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{2.9, 2},
		{-2.9, -2},
		{1e300, math.MaxInt64},
		{-1e300, math.MinInt64},
	}
	for _, tt := range tests {
		v := Value{kind: KindNum, num: tt.in}
		got, err := ToI64(&v)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "in=%v", tt.in)
	}

	nan := Value{kind: KindNum, num: math.NaN()}
	got, err := ToI64(&nan)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	b := FromBool(true)
	got, err = ToI64(&b)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

// TestToBool 测试布尔转换
func TestToBool(t *testing.T) {
	v := FromF64(0.1)
	b, err := ToBool(&v)
	require.NoError(t, err)
	assert.True(t, b)

	v = FromInt(0)
	b, err = ToBool(&v)
	require.NoError(t, err)
	assert.False(t, b)

	v = FromString(HeapAllocator{}, "true")
	_, err = ToBool(&v)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

// TestToString 测试字符串转换
func TestToString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{FromF64(1), "1"},
		{FromF64(0.1), "0.1"},
		{FromF64(1e21), "1000000000000000000000"},
		{FromInt(12), "12"},
		{FromBool(false), "false"},
	}
	for _, tt := range tests {
		got, err := ToString(&tt.v)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	bad := FromHost([]uint16{1, 0xDC00})
	_, err := ToString(&bad)
	assert.ErrorIs(t, err, ErrInvalidUTF16)

	nilv := Nil()
	_, err = ToString(&nilv)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

// ============================================================================
// FromBus 测试
// ============================================================================

// TestFromBus 测试总线值到宿主值
func TestFromBus(t *testing.T) {
	alloc := NewTrackingAllocator()

	v := FromBusIn(alloc, types.I64(5), time.UTC)
	assert.Equal(t, KindInt, v.Kind())

	v = FromBusIn(alloc, types.I64(math.MaxInt64), time.UTC)
	assert.Equal(t, KindNum, v.Kind())

	v = FromBusIn(alloc, types.F64(math.NaN()), time.UTC)
	assert.True(t, v.IsErr(ErrNA))

	v = FromBusIn(alloc, types.Null(), time.UTC)
	assert.Equal(t, KindNil, v.Kind())

	v = FromBusIn(alloc, types.Error("#REF!"), time.UTC)
	assert.True(t, v.IsErr(ErrRef))

	s := FromBusIn(alloc, types.Error("connection lost"), time.UTC)
	assert.Equal(t, KindStr, s.Kind())
	assert.Equal(t, "connection lost", s.String())
	require.NoError(t, s.Destroy(alloc))

	s = FromBusIn(alloc, types.String("héllo"), time.UTC)
	back := ToBus(&s)
	assert.True(t, types.String("héllo").Equal(back))
	require.NoError(t, s.Destroy(alloc))

	when := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	d := FromBusIn(alloc, types.DateTime(when), time.UTC)
	f, err := ToF64(&d)
	require.NoError(t, err)
	assert.InDelta(t, 45293.5, f, 1e-9)

	assert.Equal(t, 0, alloc.Live())
}

// ============================================================================
// Coercion 测试
// ============================================================================

// TestParseCoercion 测试选择器解析
func TestParseCoercion(t *testing.T) {
	for _, s := range []string{"", "auto", "f64", "i64", "null", "time", "string", "bool"} {
		c, err := ParseCoercion(s)
		require.NoError(t, err, s)
		if s != "" {
			assert.Equal(t, s, c.String())
		}
	}

	_, err := ParseCoercion("decimal")
	assert.ErrorIs(t, err, ErrUnknownCoercion)
}

// TestCoercion_Apply 测试强制转换
func TestCoercion_Apply(t *testing.T) {
	alloc := HeapAllocator{}
	str := FromString(alloc, "abc")
	num := FromF64(2.5)
	bad := FromHost([]uint16{1, 0xD800})

	assert.True(t, types.Error("#TYPE!").Equal(CoerceF64.Apply(&str, time.UTC)))
	assert.True(t, types.Error("#TYPE!").Equal(CoerceI64.Apply(&str, time.UTC)))
	assert.True(t, types.Error("#TYPE!").Equal(CoerceBool.Apply(&str, time.UTC)))
	assert.True(t, types.Error("#TYPE!").Equal(CoerceTime.Apply(&str, time.UTC)))
	assert.True(t, types.I64(2).Equal(CoerceI64.Apply(&num, time.UTC)))
	assert.True(t, types.String("2.5").Equal(CoerceString.Apply(&num, time.UTC)))
	assert.True(t, types.Null().Equal(CoerceNull.Apply(&num, time.UTC)))
	assert.True(t, types.F64(2.5).Equal(CoerceAuto.Apply(&num, time.UTC)))

	got := CoerceString.Apply(&bad, time.UTC)
	msg, ok := got.AsError()
	require.True(t, ok)
	assert.Contains(t, msg, ErrInvalidUTF16.Error())
}
