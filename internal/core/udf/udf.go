package udf

import (
	"go.uber.org/multierr"

	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
	"github.com/dep2p/go-rtdbridge/pkg/lib/xloper"
)

var logger = log.Logger("core/udf")

// macroTypeFunction xlfRegister 的宏类型：1 为工作表函数
const macroTypeFunction = 1

// Udf 工作表函数定义
type Udf struct {
	// Name 工作表中使用的函数名
	Name string
	// Export 模块导出的符号名
	Export string
	// ArgTypes 参数类型串
	ArgTypes string
	// ArgText 函数向导显示的参数列表
	ArgText string
	// Category 函数分类
	Category string
	// Help 函数帮助文本
	Help string
	// ArgHelp 每个参数的帮助文本
	ArgHelp []string
}

// Register 向宿主注册函数
func (u Udf) Register(host interfaces.Host, a xloper.Allocator) error {
	var dll xloper.Value
	if rc := host.Call(interfaces.FnGetName, &dll); rc != interfaces.HostSuccess {
		return &HostProtocolError{Fn: interfaces.FnGetName, Func: u.Name, Code: rc}
	}
	dll.WithHostOwnership()
	defer host.Free(&dll)

	args := []xloper.Value{
		xloper.FromString(a, u.Export),
		xloper.FromString(a, u.ArgTypes),
		xloper.FromString(a, u.Name),
		xloper.FromString(a, u.ArgText),
		xloper.FromInt(macroTypeFunction),
		xloper.FromString(a, u.Category),
		xloper.Missing(),
		xloper.Missing(),
		xloper.FromString(a, u.Help),
	}
	for _, h := range u.ArgHelp {
		args = append(args, xloper.FromString(a, h))
	}
	defer func() {
		for i := range args {
			_ = args[i].Destroy(a)
		}
	}()

	ptrs := make([]*xloper.Value, 0, len(args)+1)
	ptrs = append(ptrs, &dll)
	for i := range args {
		ptrs = append(ptrs, &args[i])
	}

	var result xloper.Value
	rc := host.Call(interfaces.FnRegister, &result, ptrs...)
	result.WithHostOwnership()
	defer host.Free(&result)

	if rc != interfaces.HostSuccess {
		return &HostProtocolError{Fn: interfaces.FnRegister, Func: u.Name, Code: rc}
	}
	if result.IsErr(xloper.ErrValue) {
		return &HostProtocolError{Fn: interfaces.FnRegister, Func: u.Name, Result: result.String()}
	}

	logger.Debug("工作表函数已注册", "name", u.Name, "types", u.ArgTypes)
	return nil
}

// RegisterAll 依次注册所有函数，单个失败不影响其余函数
func RegisterAll(host interfaces.Host, a xloper.Allocator, udfs ...Udf) error {
	var errs error
	for _, u := range udfs {
		if err := u.Register(host, a); err != nil {
			logger.Error("注册工作表函数失败", "name", u.Name, "error", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
