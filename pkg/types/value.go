package types

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ============================================================================
//                              ValueKind - 总线值类型
// ============================================================================

// ValueKind 总线值的类型标签
type ValueKind uint8

const (
	// KindNull 空值
	KindNull ValueKind = iota
	// KindF64 64 位浮点数
	KindF64
	// KindI64 64 位整数
	KindI64
	// KindString 字符串
	KindString
	// KindBool 布尔值
	KindBool
	// KindDateTime UTC 时间
	KindDateTime
	// KindError 错误文本
	KindError
)

// String 返回类型标签的字符串表示
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindF64:
		return "f64"
	case KindI64:
		return "i64"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "datetime"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Value - 总线值
// ============================================================================

// Value 总线侧的标签联合值
//
// 零值即 Null。Value 是纯值类型，可以安全地跨 goroutine 复制传递。
type Value struct {
	kind ValueKind
	num  float64
	i    int64
	b    bool
	s    string // String / Error 共用
	t    time.Time
}

// Null 返回空值
func Null() Value { return Value{} }

// F64 构造浮点值
func F64(v float64) Value { return Value{kind: KindF64, num: v} }

// I64 构造整数值
func I64(v int64) Value { return Value{kind: KindI64, i: v} }

// String 构造字符串值
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bool 构造布尔值
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// DateTime 构造时间值，统一转换为 UTC
func DateTime(t time.Time) Value { return Value{kind: KindDateTime, t: t.UTC()} }

// Error 构造错误值
func Error(msg string) Value { return Value{kind: KindError, s: msg} }

// Kind 返回类型标签
func (v Value) Kind() ValueKind { return v.kind }

// IsNull 是否为空值
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsError 是否为错误值
func (v Value) IsError() bool { return v.kind == KindError }

// AsF64 返回浮点负载
func (v Value) AsF64() (float64, bool) { return v.num, v.kind == KindF64 }

// AsI64 返回整数负载
func (v Value) AsI64() (int64, bool) { return v.i, v.kind == KindI64 }

// AsString 返回字符串负载
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsBool 返回布尔负载
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsDateTime 返回时间负载
func (v Value) AsDateTime() (time.Time, bool) { return v.t, v.kind == KindDateTime }

// AsError 返回错误文本
func (v Value) AsError() (string, bool) { return v.s, v.kind == KindError }

// Equal 比较两个值
//
// F64 按位比较，因此 NaN 与自身相等。
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindF64:
		return math.Float64bits(v.num) == math.Float64bits(o.num)
	case KindI64:
		return v.i == o.i
	case KindString, KindError:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindDateTime:
		return v.t.Equal(o.t)
	default:
		return false
	}
}

// String 实现 fmt.Stringer，用于日志输出
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindF64:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindI64:
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return strconv.Quote(v.s)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDateTime:
		return v.t.Format(time.RFC3339Nano)
	case KindError:
		return "error:" + v.s
	default:
		return fmt.Sprintf("<kind %d>", v.kind)
	}
}
