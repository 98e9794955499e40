// Package interfaces 定义 rtdbridge 的公共接口
//
// 本文件定义 Host 接口，即电子表格宿主回调的最小契约。
package interfaces

import (
	"fmt"

	"github.com/dep2p/go-rtdbridge/pkg/lib/xloper"
)

// HostFunction 宿主回调函数编号
type HostFunction int32

const (
	// FnRTD 宿主的 RTD 工作表函数
	FnRTD HostFunction = 379
	// FnRegister 注册工作表函数
	FnRegister HostFunction = 149
	// FnGetName 返回本模块的完整路径
	FnGetName HostFunction = 9 | 0x4000
	// FnCaller 返回调用单元格的引用
	FnCaller HostFunction = 89
)

// String 返回函数名
func (f HostFunction) String() string {
	switch f {
	case FnRTD:
		return "xlfRtd"
	case FnRegister:
		return "xlfRegister"
	case FnGetName:
		return "xlGetName"
	case FnCaller:
		return "xlfCaller"
	default:
		return fmt.Sprintf("xlfn(%d)", int32(f))
	}
}

// 宿主回调返回码
const (
	// HostSuccess 调用成功
	HostSuccess = 0
	// HostAbort 用户中止
	HostAbort = 1
	// HostInvalidFunction 函数编号无效
	HostInvalidFunction = 2
	// HostInvalidCount 参数个数错误
	HostInvalidCount = 4
	// HostFailed 命令失败
	HostFailed = 32
)

// Host 电子表格宿主
//
// 回调只能在宿主调用本模块的线程上进行。result 中返回的值为宿主所有，
// 本侧使用完毕后交给 Free 或移交回宿主。
type Host interface {
	// Call 调用宿主函数，返回码 HostSuccess 表示成功
	Call(fn HostFunction, result *xloper.Value, args ...*xloper.Value) int

	// Free 释放宿主在 Call 中返回的值
	Free(v *xloper.Value)
}
