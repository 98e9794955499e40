// Package xloper 实现宿主（电子表格）侧的标签联合值及其与总线值的转换
//
// 宿主的每个值都是一个带类型标签的联合体，堆负载（字符串缓冲区、Multi 数组）
// 同时携带三态所有权标记，且与类型标签正交：
//
//   - OwnedNone: 静态/不可变负载，本地永不释放
//   - OwnedSelf: 本侧分配，销毁时由本侧释放
//   - OwnedHost: 宿主负责释放，本侧绝不能释放
//
// 在宿主的二进制协议中，所有权位直接编码在类型标签上（见 Value.Tag、KindOf 与 OwnershipOf）。
//
// # 所有权转移
//
//	v := xloper.FromString(alloc, "hello")  // OwnedSelf
//	ret := v.IntoExternallyOwned()          // v 被清空，ret 为 OwnedHost
//	...
//	// 宿主通过 AutoFree 回调交还
//	local := ret.TakeLocalOwnership()       // OwnedSelf
//	_ = local.Destroy(alloc)                // 恰好释放一次
//
// 宿主分配的值（FromHost、宿主结果参数）即使被交到 TakeLocalOwnership
// 也保持 OwnedHost，本侧永远不会释放它们。
//
// 转移操作是"移动"语义：源值被重置为 Nil，因此同一缓冲区不可能被释放两次。
//
// # 转换
//
//   - ToBus: 全函数，任何宿主值都映射到唯一的总线值，无法表示的类型映射为 Error
//   - ToF64/ToI64/ToBool/ToString: 部分函数，失败返回 *ConversionError
//   - Multi 只取左上角元素 [0][0]，与宿主的标量参数约定一致
//
// # 字符串
//
// 字符串为长度前缀的 UTF-16：首个码元为长度 N，后跟 N 个码元，N ≤ 32767。
// 超长文本编码为 #VALUE! 错误值，绝不截断。
package xloper
