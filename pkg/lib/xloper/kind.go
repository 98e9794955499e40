package xloper

import "fmt"

// ============================================================================
//                              Kind - 宿主值类型
// ============================================================================

// Kind 宿主值的类型标签（不含所有权位）
//
// 零值为 KindNil，因此 Value{} 即一个无所有权的 Nil。
type Kind uint8

const (
	// KindNil 空单元格
	KindNil Kind = iota
	// KindNum 双精度浮点
	KindNum
	// KindStr 长度前缀 UTF-16 字符串（堆负载）
	KindStr
	// KindBool 布尔
	KindBool
	// KindRef 多区域引用（堆负载）
	KindRef
	// KindErr 错误码
	KindErr
	// KindFlow 宏流程控制
	KindFlow
	// KindMulti 二维数组（堆负载）
	KindMulti
	// KindMissing 缺省参数
	KindMissing
	// KindSRef 单区域引用（内联，无堆负载）
	KindSRef
	// KindInt 32 位整数
	KindInt
	// KindBigData 二进制大对象
	KindBigData
	// KindUnknown 无法识别的类型标签
	KindUnknown
)

// 宿主协议中的类型位
const (
	tagNum     uint32 = 0x0001
	tagStr     uint32 = 0x0002
	tagBool    uint32 = 0x0004
	tagRef     uint32 = 0x0008
	tagErr     uint32 = 0x0010
	tagFlow    uint32 = 0x0020
	tagMulti   uint32 = 0x0040
	tagMissing uint32 = 0x0080
	tagNil     uint32 = 0x0100
	tagSRef    uint32 = 0x0400
	tagInt     uint32 = 0x0800
	tagBigData uint32 = tagStr | tagInt

	// BitHostFree 宿主负责释放
	BitHostFree uint32 = 0x1000
	// BitSelfFree 本侧（DLL）负责释放
	BitSelfFree uint32 = 0x4000
)

// String 返回类型名称
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindNum:
		return "Num"
	case KindStr:
		return "Str"
	case KindBool:
		return "Bool"
	case KindRef:
		return "Ref"
	case KindErr:
		return "Err"
	case KindFlow:
		return "Flow"
	case KindMulti:
		return "Multi"
	case KindMissing:
		return "Missing"
	case KindSRef:
		return "SRef"
	case KindInt:
		return "Int"
	case KindBigData:
		return "BigData"
	default:
		return "Unknown"
	}
}

// kindTag 返回类型对应的宿主类型位
func kindTag(k Kind) uint32 {
	switch k {
	case KindNum:
		return tagNum
	case KindStr:
		return tagStr
	case KindBool:
		return tagBool
	case KindRef:
		return tagRef
	case KindErr:
		return tagErr
	case KindFlow:
		return tagFlow
	case KindMulti:
		return tagMulti
	case KindMissing:
		return tagMissing
	case KindSRef:
		return tagSRef
	case KindInt:
		return tagInt
	case KindBigData:
		return tagBigData
	default:
		return tagNil
	}
}

// KindOf 从宿主类型标签解析类型，忽略所有权位
func KindOf(tag uint32) Kind {
	switch tag &^ (BitHostFree | BitSelfFree) {
	case tagNum:
		return KindNum
	case tagStr:
		return KindStr
	case tagBool:
		return KindBool
	case tagRef:
		return KindRef
	case tagErr:
		return KindErr
	case tagFlow:
		return KindFlow
	case tagMulti:
		return KindMulti
	case tagMissing:
		return KindMissing
	case tagNil:
		return KindNil
	case tagSRef:
		return KindSRef
	case tagInt:
		return KindInt
	case tagBigData:
		return KindBigData
	default:
		return KindUnknown
	}
}

// ============================================================================
//                              Ownership - 所有权
// ============================================================================

// Ownership 堆负载的所有权状态，三者互斥
type Ownership uint8

const (
	// OwnedNone 静态负载，本地永不释放
	OwnedNone Ownership = iota
	// OwnedSelf 本侧释放
	OwnedSelf
	// OwnedHost 宿主释放，本侧绝不释放
	OwnedHost
)

// String 返回所有权的字符串表示
func (o Ownership) String() string {
	switch o {
	case OwnedNone:
		return "none"
	case OwnedSelf:
		return "self"
	case OwnedHost:
		return "host"
	default:
		return fmt.Sprintf("ownership(%d)", uint8(o))
	}
}

// OwnershipOf 从宿主类型标签解析所有权
//
// 两个释放位同时置位属于协议违规，按宿主所有处理，保证本侧不会误释放。
func OwnershipOf(tag uint32) Ownership {
	switch {
	case tag&BitHostFree != 0:
		return OwnedHost
	case tag&BitSelfFree != 0:
		return OwnedSelf
	default:
		return OwnedNone
	}
}

// ============================================================================
//                              ErrCode - 错误码
// ============================================================================

// ErrCode 宿主错误码
type ErrCode int32

const (
	// ErrNull #NULL!
	ErrNull ErrCode = 0
	// ErrDiv0 #DIV/0!
	ErrDiv0 ErrCode = 7
	// ErrValue #VALUE!
	ErrValue ErrCode = 15
	// ErrRef #REF!
	ErrRef ErrCode = 23
	// ErrName #NAME?
	ErrName ErrCode = 29
	// ErrNum #NUM!
	ErrNum ErrCode = 36
	// ErrNA #N/A
	ErrNA ErrCode = 42
	// ErrGettingData #GETTING_DATA
	ErrGettingData ErrCode = 43
)

// String 返回错误码在单元格中的文本
func (c ErrCode) String() string {
	switch c {
	case ErrNull:
		return "#NULL!"
	case ErrDiv0:
		return "#DIV/0!"
	case ErrValue:
		return "#VALUE!"
	case ErrRef:
		return "#REF!"
	case ErrName:
		return "#NAME?"
	case ErrNum:
		return "#NUM!"
	case ErrNA:
		return "#N/A"
	case ErrGettingData:
		return "#GETTING_DATA"
	default:
		return fmt.Sprintf("#ERR%d", int32(c))
	}
}

// ParseErrCode 将单元格错误文本解析为错误码
func ParseErrCode(s string) (ErrCode, bool) {
	switch s {
	case "#NULL!":
		return ErrNull, true
	case "#DIV/0!":
		return ErrDiv0, true
	case "#VALUE!":
		return ErrValue, true
	case "#REF!":
		return ErrRef, true
	case "#NAME?":
		return ErrName, true
	case "#NUM!":
		return ErrNum, true
	case "#N/A":
		return ErrNA, true
	case "#GETTING_DATA":
		return ErrGettingData, true
	default:
		return 0, false
	}
}
