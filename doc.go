// Package rtdbridge 把电子表格宿主的实时数据（RTD）协议桥接到发布/订阅数据总线
//
// 宿主通过工作表函数读写总线路径：
//
//   - NetGet(path): 经宿主的 RTD 函数订阅路径，值更新时单元格自动刷新
//   - NetSet(path, value, [type]): 按类型选择器转换单元格值并写入路径
//
// # 核心组件
//
//	┌───────────────────────────────────────────────────────────────┐
//	│  Bridge  宿主入口：AutoOpen / Get / Set / AutoFree / RTD()     │
//	├───────────────────────────────────────────────────────────────┤
//	│  rtd.Server         主题表、路径订阅、RefreshData               │
//	│  dispatch           专用线程上合并投递 UpdateNotify             │
//	│  multiplex          单 actor 路径写入复用，严格 FIFO            │
//	│  xloper             宿主值、三态所有权、类型转换                │
//	├───────────────────────────────────────────────────────────────┤
//	│  localbus / storage 进程内总线与最新值持久化（BadgerDB）        │
//	├───────────────────────────────────────────────────────────────┤
//	│  metrics            会话私有 Prometheus 注册表，Bridge.Metrics()│
//	└───────────────────────────────────────────────────────────────┘
//
// # 快速开始
//
//	bridge, err := rtdbridge.New(
//	    rtdbridge.WithConfigDir(config.DefaultDir()),
//	    rtdbridge.WithLogging(),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := bridge.Start(ctx); err != nil {
//	    return err
//	}
//	defer bridge.Close()
//
//	bridge.AutoOpen(host)
//
// 所有宿主入口都不会 panic：失败返回宿主错误值（#N/A 等）并记录日志。
package rtdbridge
