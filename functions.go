package rtdbridge

import (
	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/internal/core/udf"
)

// 导出的工作表函数名
const (
	// FuncSet 写入总线路径
	FuncSet = "NetSet"
	// FuncGet 经 RTD 读取总线路径
	FuncGet = "NetGet"
)

// worksheetFunctions 返回 AutoOpen 注册的工作表函数
//
// NetSet 的参数类型 "QCQC$"：返回 XLOPER12，路径为 C 字符串，值为 XLOPER12，
// 类型选择器为 C 字符串，$ 声明线程安全。NetGet 调用宿主的 RTD 函数，不能声明线程安全。
func worksheetFunctions(s config.SessionConfig) []udf.Udf {
	return []udf.Udf{
		{
			Name:     FuncSet,
			Export:   FuncSet,
			ArgTypes: "QCQC$",
			ArgText:  "path,value,[type]",
			Category: s.Category,
			Help:     "Write to a bus path",
		},
		{
			Name:     FuncGet,
			Export:   FuncGet,
			ArgTypes: "QQ",
			ArgText:  "path",
			Category: s.Category,
			Help:     "Read a bus path in real time",
		},
	}
}
