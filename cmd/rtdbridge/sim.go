package main

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-rtdbridge"
	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/lib/xloper"
)

// simHost 进程内模拟的电子表格宿主
//
// xlfRtd 回调直接转到桥接的 RTD 服务器；事件接收者把 UpdateNotify 转成
// 通道信号，由 loop 在主 goroutine 上调用 RefreshData，与真实宿主一致。
type simHost struct {
	bridge  *rtdbridge.Bridge
	refresh chan struct{}
	nextID  atomic.Int32
	topics  map[int32]string
}

var _ interfaces.Host = (*simHost)(nil)

func newSimHost(b *rtdbridge.Bridge) *simHost {
	return &simHost{
		bridge:  b,
		refresh: make(chan struct{}, 1),
		topics:  make(map[int32]string),
	}
}

// Call 实现 interfaces.Host
func (h *simHost) Call(fn interfaces.HostFunction, result *xloper.Value, args ...*xloper.Value) int {
	switch fn {
	case interfaces.FnGetName:
		*result = xloper.ConstString("rtdbridge-sim.xll")
		return interfaces.HostSuccess
	case interfaces.FnRegister:
		logger.Debug("模拟注册", "name", args[3].String(), "types", args[2].String())
		return interfaces.HostSuccess
	case interfaces.FnRTD:
		if len(args) < 3 {
			return interfaces.HostInvalidCount
		}
		path, err := xloper.ToString(args[2])
		if err != nil {
			return interfaces.HostFailed
		}
		id := h.nextID.Add(1)
		v, err := h.bridge.RTD().ConnectData(id, []string{path})
		if err != nil {
			logger.Warn("建立主题失败", "path", path, "error", err)
			return interfaces.HostFailed
		}
		h.topics[id] = path
		*result = v
		return interfaces.HostSuccess
	default:
		return interfaces.HostInvalidFunction
	}
}

// Free 实现 interfaces.Host
func (h *simHost) Free(*xloper.Value) {}

// Resolve 实现 interfaces.EventSink
func (h *simHost) Resolve(name string) (interfaces.MethodID, error) {
	if name != "UpdateNotify" {
		return 0, fmt.Errorf("unknown method %q", name)
	}
	return 1, nil
}

// Invoke 实现 interfaces.EventSink
func (h *simHost) Invoke(interfaces.MethodID) error {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
	return nil
}

// open 加载模块、启动 RTD 服务器并为每个路径调用 NetGet
func (h *simHost) open(paths []string) error {
	h.bridge.AutoOpen(h)

	if _, err := h.bridge.RTD().ServerStart(h); err != nil {
		return fmt.Errorf("启动 RTD 服务器失败: %w", err)
	}

	for _, p := range paths {
		arg := xloper.ConstString(p)
		v := h.bridge.Get(h, &arg)
		fmt.Printf("  NetGet(%s) = %s\n", p, describe(&v))
	}
	return nil
}

// close 断开所有主题并终止 RTD 服务器
func (h *simHost) close() {
	server := h.bridge.RTD()
	for id := range h.topics {
		server.DisconnectData(id)
	}
	if err := server.ServerTerminate(); err != nil {
		logger.Warn("终止 RTD 服务器失败", "error", err)
	}
	h.bridge.AutoClose()
}

// loop 周期性写入并处理刷新，直到轮数用完或上下文取消
func (h *simHost) loop(ctx context.Context, paths []string, interval time.Duration, ticks int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Println("收到中断，退出")
			return nil

		case <-h.refresh:
			h.printRefresh()

		case <-ticker.C:
			if ticks > 0 && tick >= ticks {
				// 最后一轮写入后再等待一个间隔的刷新
				h.printRefresh()
				fmt.Printf("完成 %d 轮写入\n", ticks)
				return nil
			}
			tick++
			for i, p := range paths {
				raw := xloper.FromF64(100 + 10*math.Sin(float64(tick+i)/3))
				out := h.bridge.Set(p, &raw, "f64")
				if out.IsErr(xloper.ErrNA) {
					fmt.Printf("  NetSet(%s) 失败\n", p)
				}
			}
		}
	}
}

// printRefresh 调用 RefreshData 并打印结果
func (h *simHost) printRefresh() {
	out, n := h.bridge.RTD().RefreshData()
	defer h.bridge.AutoFree(&out)

	for c := 0; c < n; c++ {
		id, _ := xloper.ToI64(out.Cell(0, c))
		fmt.Printf("  刷新 topic=%d path=%s value=%s\n", id, h.topics[int32(id)], describe(out.Cell(1, c)))
	}
}
