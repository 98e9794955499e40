// Package main 提供 rtdbridge 命令行入口
//
// 命令行在进程内模拟宿主：注册工作表函数，用 NetGet 为每个路径建立 RTD 主题，
// 按固定间隔通过 NetSet 写入数值，并在收到 UpdateNotify 后调用 RefreshData
// 打印刷新结果。用于在没有电子表格宿主的环境下验证整条链路。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-rtdbridge"
	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
	"github.com/dep2p/go-rtdbridge/pkg/lib/xloper"
)

var logger = log.Logger("rtdbridge/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configDir    = flag.String("config-dir", "", "配置目录（默认: 用户配置目录下的 rtdbridge）")
	paths        = flag.String("paths", "/sim/a,/sim/b", "模拟的总线路径，逗号分隔")
	interval     = flag.Duration("interval", 500*time.Millisecond, "写入间隔")
	ticks        = flag.Int("ticks", 10, "写入轮数（0 = 直到中断）")
	persist      = flag.Bool("persist", false, "持久化最新值")
	inMemory     = flag.Bool("in-memory", false, "存储使用内存模式")
	reset        = flag.Bool("reset", false, "启动时清空持久化的最新值")
	logLevel     = flag.String("log-level", "", "覆盖配置中的日志级别 (off/error/warn/info/debug/trace)")
	serveMetrics = flag.Bool("metrics", false, "在配置的 listen_addr 上暴露 /metrics")
	metricsAddr  = flag.String("metrics-addr", "", "覆盖指标监听地址")

	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		printVersion()
		return nil
	}
	if *showHelp {
		printHelp()
		return nil
	}

	dir := *configDir
	if dir == "" {
		dir = config.DefaultDir()
	}
	cfg, err := config.LoadOrCreate(dir)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	cfg.Bus.Persist = cfg.Bus.Persist || *persist
	cfg.Storage.ResetOnStart = cfg.Storage.ResetOnStart || *reset
	if *inMemory {
		cfg.Storage.InMemory = true
		cfg.Storage.DataDir = ""
	}

	targets := splitPaths(*paths)
	if len(targets) == 0 {
		return fmt.Errorf("至少需要一个路径")
	}

	bridge, err := rtdbridge.New(
		rtdbridge.WithConfig(cfg),
		rtdbridge.WithConfigDir(dir),
		rtdbridge.WithLogging(),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := bridge.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "关闭失败: %v\n", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := bridge.Start(ctx); err != nil {
		return err
	}

	sim := newSimHost(bridge)
	if err := sim.open(targets); err != nil {
		return err
	}
	defer sim.close()

	fmt.Printf("rtdbridge 回环模拟已启动 (session %s)\n", bridge.ID())
	fmt.Printf("  配置目录: %s\n", dir)
	fmt.Printf("  路径:     %s\n", strings.Join(targets, ", "))

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	if addr := metricsListenAddr(cfg); addr != "" && bridge.Metrics() != nil {
		serveMetricsOn(gctx, g, addr, bridge.Metrics())
		fmt.Printf("  指标:     http://%s/metrics\n", addr)
	}

	g.Go(func() error {
		defer stop()
		return sim.loop(gctx, targets, *interval, *ticks)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	printMetrics(bridge.Metrics())
	return nil
}

// metricsListenAddr 返回指标监听地址，未开启时为空
func metricsListenAddr(cfg *config.Config) string {
	if *metricsAddr != "" {
		return *metricsAddr
	}
	if *serveMetrics {
		return cfg.Metrics.ListenAddr
	}
	return ""
}

// serveMetricsOn 在 addr 上提供 /metrics，ctx 结束时关闭
func serveMetricsOn(ctx context.Context, g *errgroup.Group, addr string, gatherer prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("指标服务失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// printMetrics 打印会话指标摘要
func printMetrics(gatherer prometheus.Gatherer) {
	if gatherer == nil {
		return
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		logger.Warn("收集指标失败", "error", err)
		return
	}
	fmt.Println("指标:")
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Printf("  %-40s %g\n", mf.GetName(), m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Printf("  %-40s %g\n", mf.GetName(), m.GetGauge().GetValue())
			}
		}
	}
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("rtdbridge %s\n", rtdbridge.Version)
	if rtdbridge.GitCommit != "" {
		fmt.Printf("  commit: %s\n", rtdbridge.GitCommit)
	}
	if rtdbridge.BuildDate != "" {
		fmt.Printf("  built:  %s\n", rtdbridge.BuildDate)
	}
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("rtdbridge - 电子表格 RTD 与数据总线桥接的回环模拟")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  rtdbridge [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  rtdbridge -paths /fx/eur,/fx/gbp -interval 200ms -ticks 20")
	fmt.Println("  rtdbridge -persist -in-memory -log-level debug")
	fmt.Println("  rtdbridge -ticks 0 -metrics-addr 127.0.0.1:9102")
}

// describe 格式化一个刷新结果
func describe(v *xloper.Value) string {
	return fmt.Sprintf("%s(%s)", v.String(), v.Kind())
}
