// Package metrics 提供会话级监控指标
//
// metrics 模块把各组件已有的统计快照导出为 Prometheus 指标：
//   - 进程内总线：路径数、订阅数、写入与丢弃次数
//   - RTD 服务器：主题数、订阅源数
//   - 派发器：活跃数、通知/调用/失败次数
//   - 写入器：写入、订阅、失败次数，以及 NetSet 调用速率
//
// 指标在 Collect 时从组件读取，不维护第二份计数。
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector("rtdbridge", metrics.Sources{
//	    Local:  bus,
//	    Server: server,
//	})
//	reg.MustRegister(c)
//
// # 速率计算
//
// RateMeter 使用 60 个 1 秒桶计算最近 60 秒的平均速率，
// 时钟可替换为 clock.Mock 以便测试。
//
// # Fx 模块
//
//	app := fx.New(
//	    localbus.Module(),
//	    metrics.Module(),
//	    fx.Invoke(func(g prometheus.Gatherer) { ... }),
//	)
//
// 所有可选来源缺失时对应指标不输出。
package metrics
