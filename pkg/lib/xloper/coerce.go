package xloper

import (
	"time"

	"github.com/dep2p/go-rtdbridge/pkg/types"
)

// Coercion 写入总线前对宿主值的强制转换方式
type Coercion uint8

const (
	// CoerceAuto 按 ToBus 自动转换
	CoerceAuto Coercion = iota
	// CoerceF64 强制为浮点
	CoerceF64
	// CoerceI64 强制为整数
	CoerceI64
	// CoerceNull 忽略输入，写入 Null
	CoerceNull
	// CoerceTime 按日期序列号解析为时间
	CoerceTime
	// CoerceString 强制为字符串
	CoerceString
	// CoerceBool 强制为布尔
	CoerceBool
)

// typeErrorText 标量转换失败时写入总线的错误文本
const typeErrorText = "#TYPE!"

// ParseCoercion 解析选择器文本
//
// 空串与 "auto" 为 CoerceAuto，其余未知文本返回 ErrUnknownCoercion。
func ParseCoercion(s string) (Coercion, error) {
	switch s {
	case "", "auto":
		return CoerceAuto, nil
	case "f64":
		return CoerceF64, nil
	case "i64":
		return CoerceI64, nil
	case "null":
		return CoerceNull, nil
	case "time":
		return CoerceTime, nil
	case "string":
		return CoerceString, nil
	case "bool":
		return CoerceBool, nil
	default:
		return CoerceAuto, ErrUnknownCoercion
	}
}

// String 返回选择器文本
func (c Coercion) String() string {
	switch c {
	case CoerceF64:
		return "f64"
	case CoerceI64:
		return "i64"
	case CoerceNull:
		return "null"
	case CoerceTime:
		return "time"
	case CoerceString:
		return "string"
	case CoerceBool:
		return "bool"
	default:
		return "auto"
	}
}

// Apply 按选择器将宿主值转换为总线值
//
// 转换失败不返回错误，而是产生总线错误值："#TYPE!"，字符串失败时为错误文本。
func (c Coercion) Apply(v *Value, loc *time.Location) types.Value {
	switch c {
	case CoerceF64:
		f, err := ToF64(v)
		if err != nil {
			return types.Error(typeErrorText)
		}
		return types.F64(f)
	case CoerceI64:
		i, err := ToI64(v)
		if err != nil {
			return types.Error(typeErrorText)
		}
		return types.I64(i)
	case CoerceNull:
		return types.Null()
	case CoerceString:
		s, err := ToString(v)
		if err != nil {
			return types.Error(err.Error())
		}
		return types.String(s)
	case CoerceBool:
		b, err := ToBool(v)
		if err != nil {
			return types.Error(typeErrorText)
		}
		return types.Bool(b)
	case CoerceTime:
		f, err := ToF64(v)
		if err != nil {
			return types.Error(typeErrorText)
		}
		return SerialToTime(f, loc)
	default:
		return ToBus(v)
	}
}
