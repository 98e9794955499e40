// Package types 定义 rtdbridge 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 职能
//
// pkg/types 定义总线侧的数据结构：
//   - Value: 总线值，Null/F64/I64/String/Bool/DateTime/Error 的标签联合
//   - ValueKind: 总线值的类型标签
//
// 宿主侧的值（带所有权的单元格值）在 pkg/lib/xloper 中定义，
// 两者之间的转换也在 xloper 中完成。
//
// # 与 pkg/lib/valuecodec 的区别
//
// pkg/types 定义内存结构，pkg/lib/valuecodec 定义持久化时的二进制格式。
package types
