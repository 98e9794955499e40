// Package udf 向宿主注册工作表函数
//
// 注册流程：先通过 xlGetName 取得本模块的完整路径，再以
// (模块路径, 导出名, 参数类型串, 函数名, 参数文本, 宏类型, 分类, 快捷键, 帮助主题, 帮助文本, 参数帮助...)
// 调用 xlfRegister。宿主返回 #VALUE! 或非零返回码均视为注册失败。
//
// 参数类型串示例："QCQC$" 表示返回 XLOPER12、参数为 C 字符串/XLOPER12/C 字符串，
// 末尾 $ 声明线程安全。
package udf
