package valuecodec

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-rtdbridge/pkg/types"
)

// TestCodec_RoundTrip 各类值编码后可还原
func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    types.Value
	}{
		{"null", types.Null()},
		{"f64", types.F64(3.25)},
		{"f64 负零", types.F64(math.Copysign(0, -1))},
		{"f64 NaN", types.F64(math.NaN())},
		{"i64 负数", types.I64(-42)},
		{"i64 最大值", types.I64(math.MaxInt64)},
		{"string", types.String("héllo 😀")},
		{"空字符串", types.String("")},
		{"bool", types.Bool(true)},
		{"datetime", types.DateTime(time.Date(2024, 1, 2, 12, 0, 0, 123456789, time.UTC))},
		{"error", types.Error("#N/A")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.v)
			require.NoError(t, err)

			got, err := Unmarshal(data)
			require.NoError(t, err)
			assert.True(t, tt.v.Equal(got), "want %s, got %s", tt.v, got)
		})
	}
}

// TestCodec_StringAndErrorDistinct 相同文本的字符串与错误不混淆
func TestCodec_StringAndErrorDistinct(t *testing.T) {
	s, err := Marshal(types.String("#N/A"))
	require.NoError(t, err)
	e, err := Marshal(types.Error("#N/A"))
	require.NoError(t, err)
	assert.NotEqual(t, s, e)

	got, err := Unmarshal(e)
	require.NoError(t, err)
	assert.True(t, got.IsError())
}

// TestCodec_SkipsUnknownFields 未知字段被跳过
func TestCodec_SkipsUnknownFields(t *testing.T) {
	data, err := Marshal(types.I64(7))
	require.NoError(t, err)

	data = protowire.AppendTag(data, 99, protowire.BytesType)
	data = protowire.AppendString(data, "future")

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, types.I64(7).Equal(got))
}

// TestCodec_Errors 损坏的输入返回错误
func TestCodec_Errors(t *testing.T) {
	_, err := Unmarshal(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	// 只有 f64 字段，缺少类型
	var noKind []byte
	noKind = protowire.AppendTag(noKind, fieldF64, protowire.Fixed64Type)
	noKind = protowire.AppendFixed64(noKind, 1)
	_, err = Unmarshal(noKind)
	assert.ErrorIs(t, err, ErrMalformed)

	// 截断
	full, err := Marshal(types.String("truncated"))
	require.NoError(t, err)
	_, err = Unmarshal(full[:len(full)-2])
	assert.ErrorIs(t, err, ErrMalformed)

	// 未知类型
	var bad []byte
	bad = protowire.AppendTag(bad, fieldKind, protowire.VarintType)
	bad = protowire.AppendVarint(bad, 200)
	_, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrUnknownKind)

	// datetime 缺少时间
	var noTime []byte
	noTime = protowire.AppendTag(noTime, fieldKind, protowire.VarintType)
	noTime = protowire.AppendVarint(noTime, uint64(types.KindDateTime))
	_, err = Unmarshal(noTime)
	assert.ErrorIs(t, err, ErrMalformed)
}

// TestCodec_Append 追加编码保留前缀
func TestCodec_Append(t *testing.T) {
	prefix := []byte{0xAA}
	out, err := Append(prefix, types.Bool(false))
	require.NoError(t, err)
	assert.Equal(t, byte(0xAA), out[0])

	got, err := Unmarshal(out[1:])
	require.NoError(t, err)
	assert.True(t, types.Bool(false).Equal(got))
}
