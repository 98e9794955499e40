package udf

import (
	"fmt"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
)

// HostProtocolError 宿主回调失败
type HostProtocolError struct {
	// Fn 调用的宿主函数
	Fn interfaces.HostFunction
	// Func 相关的工作表函数名
	Func string
	// Code 宿主返回码
	Code int
	// Result 宿主返回值的显示文本（返回码为 0 但结果为错误时）
	Result string
}

func (e *HostProtocolError) Error() string {
	if e.Result != "" {
		return fmt.Sprintf("%s for %s failed with result %s", e.Fn, e.Func, e.Result)
	}
	return fmt.Sprintf("%s for %s failed with code %d", e.Fn, e.Func, e.Code)
}
