// Package rtd 实现宿主的实时数据（RTD）主题服务器
//
// 宿主通过 ConnectData 为单元格申请主题，主题参数的第一个字符串是总线路径。
// 同一路径上的多个主题共享一个总线订阅（按引用计数），订阅的更新由转发协程
// 标记为待刷新并调用派发器 Notify；宿主随后在自己的线程上调用 RefreshData
// 拉取所有待刷新主题的最新值。
//
//	总线订阅 ──Updates──▶ 转发协程 ──标记──▶ dirty 集合
//	                          │
//	                          └──Notify──▶ Dispatcher ──UpdateNotify──▶ 宿主
//	宿主 ──RefreshData──▶ 2×N 数组（主题号 / 值）
//
// 主题表由互斥锁保护，服务器从不直接调用事件接收者。
package rtd
