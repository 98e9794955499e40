package xloper

import (
	"math"
	"unicode"
	"unicode/utf16"
)

// MaxStringLen 宿主字符串的最大码元数（不含长度前缀）
const MaxStringLen = 32767

// ============================================================================
//                              Value - 宿主值
// ============================================================================

// Value 宿主侧的标签联合值
//
// 零值为无所有权的 Nil。堆负载（str、cells）由 own 决定释放责任，
// 复制 Value 结构体不会复制负载，只有 Clone 才会深拷贝。
type Value struct {
	kind Kind
	own  Ownership
	// lent 本侧分配、经 IntoExternallyOwned 借给宿主的负载，只有它能被 TakeLocalOwnership 收回
	lent bool

	num  float64
	w    int32
	b    bool
	err  ErrCode
	flow uint32

	// str 长度前缀 UTF-16 缓冲区：str[0] = N，后跟 N 个码元
	str []uint16

	// cells 行优先存储的 rows*cols 个元素
	cells      []Value
	rows, cols int

	sref Range
	refs []Range

	big     []byte
	unknown uint32
}

// Range 宿主单元格区域（行列均为 0 基）
type Range struct {
	RowFirst int32
	RowLast  int32
	ColFirst int32
	ColLast  int32
}

// ============================================================================
//                              构造
// ============================================================================

// Nil 返回空单元格
func Nil() Value { return Value{} }

// Missing 返回缺省参数
func Missing() Value { return Value{kind: KindMissing} }

// FromF64 构造浮点值，NaN 与 ±Inf 编码为 #N/A
func FromF64(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ErrorValue(ErrNA)
	}
	return Value{kind: KindNum, num: f}
}

// FromInt 构造 32 位整数值
func FromInt(w int32) Value { return Value{kind: KindInt, w: w} }

// FromBool 构造布尔值
func FromBool(b bool) Value { return Value{kind: KindBool, b: b} }

// ErrorValue 构造错误值
func ErrorValue(code ErrCode) Value { return Value{kind: KindErr, err: code} }

// FromString 构造本侧所有的字符串
//
// 编码后超过 MaxStringLen 个码元时返回 #VALUE!，不截断。
func FromString(a Allocator, s string) Value {
	n := utf16Len(s)
	if n > MaxStringLen {
		return ErrorValue(ErrValue)
	}
	buf := a.AllocUnits(n + 1)
	buf[0] = uint16(n)
	encodeUTF16(buf[1:], s)
	return Value{kind: KindStr, own: OwnedSelf, str: buf}
}

// ConstString 构造静态字符串（OwnedNone），用于包级常量
//
// 超长时 panic，相当于编译期断言。
func ConstString(s string) Value {
	n := utf16Len(s)
	if n > MaxStringLen {
		panic("xloper: constant string longer than 32767 utf-16 units")
	}
	buf := make([]uint16, n+1)
	buf[0] = uint16(n)
	encodeUTF16(buf[1:], s)
	return Value{kind: KindStr, own: OwnedNone, str: buf}
}

// NewMulti 构造本侧所有的 rows×cols 数组，元素初始为 Nil
func NewMulti(a Allocator, rows, cols int) Value {
	if rows < 0 || cols < 0 {
		rows, cols = 0, 0
	}
	return Value{
		kind:  KindMulti,
		own:   OwnedSelf,
		cells: a.AllocCells(rows * cols),
		rows:  rows,
		cols:  cols,
	}
}

// FromSRef 构造单区域引用
func FromSRef(r Range) Value { return Value{kind: KindSRef, sref: r} }

// FromRefs 构造多区域引用（Go 堆，无本地释放责任）
func FromRefs(rs ...Range) Value {
	return Value{kind: KindRef, refs: append([]Range(nil), rs...)}
}

// FromFlow 构造宏流程控制值
func FromFlow(code uint32) Value { return Value{kind: KindFlow, flow: code} }

// FromBigData 构造二进制大对象（Go 堆，无本地释放责任）
func FromBigData(b []byte) Value {
	return Value{kind: KindBigData, big: append([]byte(nil), b...)}
}

// FromUnknown 构造无法识别类型标签的值
func FromUnknown(tag uint32) Value { return Value{kind: KindUnknown, unknown: tag} }

// FromHost 构造宿主交给本侧的字符串值（OwnedHost）
//
// units 为完整的长度前缀缓冲区，本侧不得释放。
func FromHost(units []uint16) Value {
	return Value{kind: KindStr, own: OwnedHost, str: units}
}

// ============================================================================
//                              访问
// ============================================================================

// Kind 返回类型
func (v *Value) Kind() Kind { return v.kind }

// Ownership 返回所有权
func (v *Value) Ownership() Ownership { return v.own }

// Tag 返回宿主协议中的类型标签（含所有权位）
func (v *Value) Tag() uint32 {
	if v.kind == KindUnknown {
		return v.unknown
	}
	t := kindTag(v.kind)
	switch v.own {
	case OwnedSelf:
		t |= BitSelfFree
	case OwnedHost:
		t |= BitHostFree
	}
	return t
}

// Lent 判断 v 是否为本侧借给宿主、等待 AutoFree 交还的值
func (v *Value) Lent() bool { return v.lent }

// IsErr 判断是否为指定错误码
func (v *Value) IsErr(code ErrCode) bool {
	return v.kind == KindErr && v.err == code
}

// Err 返回错误码
func (v *Value) Err() (ErrCode, bool) { return v.err, v.kind == KindErr }

// Units 返回字符串的 UTF-16 码元（不含长度前缀）
func (v *Value) Units() []uint16 {
	if v.kind != KindStr || len(v.str) == 0 {
		return nil
	}
	n := int(v.str[0])
	if n > len(v.str)-1 {
		n = len(v.str) - 1
	}
	return v.str[1 : 1+n]
}

// Dims 返回 Multi 的行列数
func (v *Value) Dims() (rows, cols int) { return v.rows, v.cols }

// Cell 返回 Multi 中 (r, c) 处元素的指针
//
// 越界返回 nil。
func (v *Value) Cell(r, c int) *Value {
	if v.kind != KindMulti || r < 0 || c < 0 || r >= v.rows || c >= v.cols {
		return nil
	}
	return &v.cells[r*v.cols+c]
}

// SetCell 将 x 移入 Multi 的 (r, c) 处
//
// 原元素先被销毁，x 被重置为 Nil。越界时返回 false 且不修改任何值。
func (v *Value) SetCell(a Allocator, r, c int, x *Value) bool {
	cell := v.Cell(r, c)
	if cell == nil {
		return false
	}
	_ = cell.Destroy(a)
	*cell = *x
	*x = Value{}
	return true
}

// SRef 返回单区域引用
func (v *Value) SRef() (Range, bool) { return v.sref, v.kind == KindSRef }

// Refs 返回多区域引用
func (v *Value) Refs() ([]Range, bool) { return v.refs, v.kind == KindRef }

// ============================================================================
//                              UTF-16 辅助
// ============================================================================

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 && r <= unicode.MaxRune {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func encodeUTF16(dst []uint16, s string) {
	i := 0
	for _, r := range s {
		if r >= 0x10000 && r <= unicode.MaxRune {
			r1, r2 := utf16.EncodeRune(r)
			dst[i], dst[i+1] = uint16(r1), uint16(r2)
			i += 2
			continue
		}
		dst[i] = uint16(r)
		i++
	}
}

// decodeUTF16 严格解码，孤立代理项视为错误
func decodeUTF16(units []uint16) (string, error) {
	rs := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := rune(units[i])
		switch {
		case u < 0xD800 || u > 0xDFFF:
			rs = append(rs, u)
		case u <= 0xDBFF && i+1 < len(units) && units[i+1] >= 0xDC00 && units[i+1] <= 0xDFFF:
			rs = append(rs, utf16.DecodeRune(u, rune(units[i+1])))
			i++
		default:
			return "", ErrInvalidUTF16
		}
	}
	return string(rs), nil
}
