package xloper

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dep2p/go-rtdbridge/pkg/types"
)

// ============================================================================
//                              宿主值 -> 总线值
// ============================================================================

// ToBus 将宿主值转换为总线值
//
// 全函数：无法表示的类型映射为 types.Error，从不失败。
func ToBus(v *Value) types.Value {
	switch v.kind {
	case KindNil, KindMissing:
		return types.Null()
	case KindNum:
		return types.F64(v.num)
	case KindInt:
		return types.I64(int64(v.w))
	case KindStr:
		s, err := decodeUTF16(v.Units())
		if err != nil {
			return types.Error(err.Error())
		}
		return types.String(s)
	case KindBool:
		return types.Bool(v.b)
	case KindErr:
		return types.Error(v.err.String())
	case KindMulti:
		if len(v.cells) == 0 {
			return types.Error("#EMPTY_MULTI")
		}
		return ToBus(&v.cells[0])
	case KindRef:
		return types.Error("#UNSUPPORTED_REF")
	case KindFlow:
		return types.Error("#UNSUPPORTED_FLOW")
	case KindSRef:
		return types.Error("#UNSUPPORTED_SREF")
	case KindBigData:
		return types.Error("#UNSUPPORTED_BIGDATA")
	default:
		return types.Error(fmt.Sprintf("#UNKNOWN%d", v.unknown))
	}
}

// ============================================================================
//                              标量转换
// ============================================================================

// ToF64 转换为浮点
func ToF64(v *Value) (float64, error) {
	switch v.kind {
	case KindNum:
		return v.num, nil
	case KindInt:
		return float64(v.w), nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindMulti:
		if len(v.cells) > 0 {
			return ToF64(&v.cells[0])
		}
	}
	return 0, mismatch(v.kind, "f64")
}

// ToI64 转换为整数
//
// 浮点向零截断并饱和到 int64 范围，NaN 得到 0。
func ToI64(v *Value) (int64, error) {
	switch v.kind {
	case KindNum:
		return saturateI64(v.num), nil
	case KindInt:
		return int64(v.w), nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindMulti:
		if len(v.cells) > 0 {
			return ToI64(&v.cells[0])
		}
	}
	return 0, mismatch(v.kind, "i64")
}

// ToBool 转换为布尔，数值非零即真
func ToBool(v *Value) (bool, error) {
	switch v.kind {
	case KindNum:
		return v.num != 0, nil
	case KindInt:
		return v.w != 0, nil
	case KindBool:
		return v.b, nil
	case KindMulti:
		if len(v.cells) > 0 {
			return ToBool(&v.cells[0])
		}
	}
	return false, mismatch(v.kind, "bool")
}

// ToString 转换为字符串
//
// 数值使用最短往返十进制形式，布尔为 "true"/"false"。
func ToString(v *Value) (string, error) {
	switch v.kind {
	case KindNum:
		return strconv.FormatFloat(v.num, 'f', -1, 64), nil
	case KindInt:
		return strconv.FormatInt(int64(v.w), 10), nil
	case KindStr:
		s, err := decodeUTF16(v.Units())
		if err != nil {
			return "", &ConversionError{From: KindStr, To: "string", Err: err}
		}
		return s, nil
	case KindBool:
		return strconv.FormatBool(v.b), nil
	case KindMulti:
		if len(v.cells) > 0 {
			return ToString(&v.cells[0])
		}
	}
	return "", mismatch(v.kind, "string")
}

func saturateI64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}

// ============================================================================
//                              总线值 -> 宿主值
// ============================================================================

// FromBus 将总线值转换为宿主值，时间按本地时区换算为序列号
func FromBus(a Allocator, v types.Value) Value {
	return FromBusIn(a, v, time.Local)
}

// FromBusIn 将总线值转换为宿主值，时间按 loc 换算为序列号
//
// 能放入 int32 的 I64 映射为 Int，否则为 Num；已知的错误文本映射为错误码，
// 其余错误文本以字符串形式呈现。
func FromBusIn(a Allocator, v types.Value, loc *time.Location) Value {
	switch v.Kind() {
	case types.KindF64:
		f, _ := v.AsF64()
		return FromF64(f)
	case types.KindI64:
		i, _ := v.AsI64()
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return FromInt(int32(i))
		}
		return FromF64(float64(i))
	case types.KindString:
		s, _ := v.AsString()
		return FromString(a, s)
	case types.KindBool:
		b, _ := v.AsBool()
		return FromBool(b)
	case types.KindDateTime:
		t, _ := v.AsDateTime()
		serial, ok := TimeToSerial(t, loc)
		if !ok {
			return ErrorValue(ErrValue)
		}
		return FromF64(serial)
	case types.KindError:
		msg, _ := v.AsError()
		if code, ok := ParseErrCode(msg); ok {
			return ErrorValue(code)
		}
		return FromString(a, msg)
	default:
		return Nil()
	}
}
