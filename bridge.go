package rtdbridge

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/internal/core/metrics"
	"github.com/dep2p/go-rtdbridge/internal/core/multiplex"
	"github.com/dep2p/go-rtdbridge/internal/core/rtd"
	"github.com/dep2p/go-rtdbridge/internal/core/udf"
	"github.com/dep2p/go-rtdbridge/internal/util/logger"
	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/lib/log"
	"github.com/dep2p/go-rtdbridge/pkg/lib/xloper"
	"github.com/dep2p/go-rtdbridge/pkg/types"
)

var bridgeLog = log.Logger("rtdbridge")

// 生命周期超时
const (
	startTimeout = 30 * time.Second
	stopTimeout  = 10 * time.Second
)

// setResult 写入成功时返回给宿主的静态字符串
var setResult = xloper.ConstString("#SET")

// ════════════════════════════════════════════════════════════════════════════
//                              Bridge
// ════════════════════════════════════════════════════════════════════════════

// Bridge 宿主会话
//
// Bridge 是宿主与总线之间的门面，持有一次会话的全部状态：配置、日志、
// Fx 应用（存储、总线、派发、RTD 服务器）以及惰性创建的写入器。
// 宿主入口方法（AutoOpen、Get、Set、AutoFree）从不 panic。
type Bridge struct {
	id     string
	cfg    *config.Config
	dir    string
	alloc  xloper.Allocator
	loc    *time.Location
	progID xloper.Value

	app       *fx.App
	bus       interfaces.Bus
	server    *rtd.Server
	logCloser io.Closer

	// 指标，配置关闭时为 nil
	gatherer prometheus.Gatherer
	setRate  *metrics.RateMeter

	connect    multiplex.Connector
	setterOnce sync.Once
	setter     atomic.Pointer[multiplex.Multiplexer]

	mu      sync.Mutex
	started bool
	closed  bool
}

// New 创建桥接
//
// 配置按以下顺序确定：WithConfig 显式给出；否则 WithConfigDir 目录下的
// config.json（首次运行写入默认值）；否则默认配置。
func New(opts ...Option) (*Bridge, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg := o.config
	if cfg == nil {
		if o.configDir != "" {
			loaded, err := config.LoadOrCreate(o.configDir)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		} else {
			cfg = config.NewConfig()
		}
	}

	b := &Bridge{
		id:     uuid.NewString(),
		cfg:    cfg,
		dir:    o.configDir,
		alloc:  o.alloc,
		loc:    o.location,
		progID: xloper.ConstString(cfg.Session.ProgID),
	}

	if o.logging {
		if o.configDir == "" {
			return nil, fmt.Errorf("logging requires a config dir")
		}
		closer, err := logger.Setup(o.configDir, cfg)
		if err != nil {
			return nil, fmt.Errorf("setup logging: %w", err)
		}
		b.logCloser = closer
	}

	app, err := buildFxApp(o, cfg, b)
	if err != nil {
		b.closeLog()
		return nil, err
	}
	b.app = app

	b.connect = o.connector
	if b.connect == nil {
		b.connect = func() (interfaces.Bus, error) {
			return sharedBus{b.bus}, nil
		}
	}

	bridgeLog.Info("桥接已创建", "session", b.id, "progID", cfg.Session.ProgID)
	return b, nil
}

// ID 返回会话标识
func (b *Bridge) ID() string { return b.id }

// Config 返回配置副本
func (b *Bridge) Config() *config.Config { return b.cfg.Clone() }

// RTD 返回 RTD 主题服务器，供宿主的 COM 胶水层调用
func (b *Bridge) RTD() *rtd.Server { return b.server }

// Bus 返回桥接使用的总线
func (b *Bridge) Bus() interfaces.Bus { return b.bus }

// Metrics 返回会话指标，配置关闭指标时为 nil
func (b *Bridge) Metrics() prometheus.Gatherer { return b.gatherer }

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动 Fx 应用（存储、总线、派发器工厂、RTD 服务器）
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBridgeClosed
	}
	if b.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := b.app.Start(startCtx); err != nil {
		bridgeLog.Error("桥接启动失败", "error", err)
		return fmt.Errorf("start: %w", err)
	}
	b.started = true
	bridgeLog.Info("桥接已启动", "session", b.id)
	return nil
}

// Close 关闭写入器、停止 Fx 应用并关闭日志，可重复调用
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	started := b.started
	b.mu.Unlock()

	var errs error

	// 阻止之后的惰性创建
	b.setterOnce.Do(func() {})
	if setter := b.setter.Load(); setter != nil {
		errs = multierr.Append(errs, setter.Close())
	}

	if started {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		errs = multierr.Append(errs, b.app.Stop(ctx))
		cancel()
	}

	bridgeLog.Info("桥接已关闭", "session", b.id, "error", errs)
	errs = multierr.Append(errs, b.closeLog())
	return errs
}

func (b *Bridge) closeLog() error {
	if b.logCloser == nil {
		return nil
	}
	return b.logCloser.Close()
}

// ════════════════════════════════════════════════════════════════════════════
//                              宿主入口
// ════════════════════════════════════════════════════════════════════════════

// AutoOpen 宿主加载模块时调用，注册工作表函数
//
// 注册失败只记录日志，相应功能不可用。按宿主约定总是返回 1。
func (b *Bridge) AutoOpen(host interfaces.Host) (rc int32) {
	defer func() {
		if r := recover(); r != nil {
			bridgeLog.Error("宿主调用 panic", "op", "AutoOpen", "panic", r)
			rc = 1
		}
	}()

	if !b.cfg.Session.RegisterUDFs {
		return 1
	}
	if err := udf.RegisterAll(host, b.alloc, worksheetFunctions(b.cfg.Session)...); err != nil {
		bridgeLog.Error("注册工作表函数失败", "error", err)
	}
	return 1
}

// AutoClose 宿主卸载模块时调用，按宿主约定返回 1
func (b *Bridge) AutoClose() int32 {
	return 1
}

// Get 经宿主的 RTD 函数订阅路径
//
// 成功时返回宿主分配的结果（宿主所有），失败返回 #N/A。
func (b *Bridge) Get(host interfaces.Host, path *xloper.Value) (out xloper.Value) {
	defer b.recoverHostCall("Get", &out)

	res := xloper.ErrorValue(xloper.ErrGettingData)
	missing := xloper.Missing()
	progID := b.progID

	if rc := host.Call(interfaces.FnRTD, &res, &progID, &missing, path); rc != interfaces.HostSuccess {
		bridgeLog.Debug("RTD 调用失败", "path", path.String(), "code", rc)
		return xloper.ErrorValue(xloper.ErrNA)
	}
	res.WithHostOwnership()
	return res
}

// Set 按类型选择器转换 raw 并写入路径
//
// path 必须以 "/" 开头，否则在转换之前直接返回 #N/A。
// 选择器为空或 "auto" 时按宿主类型推断；未知选择器、写入器不可用或入队失败
// 返回 #N/A；成功返回静态字符串 "#SET"。转换失败不算失败，写入的是总线错误值。
func (b *Bridge) Set(path string, raw *xloper.Value, selector string) (out xloper.Value) {
	defer b.recoverHostCall("Set", &out)

	if !strings.HasPrefix(path, "/") {
		bridgeLog.Debug("无效路径", "path", path, "error", ErrInvalidPath)
		return xloper.ErrorValue(xloper.ErrNA)
	}

	coercion, err := xloper.ParseCoercion(selector)
	if err != nil {
		bridgeLog.Debug("未知类型选择器", "selector", selector)
		return xloper.ErrorValue(xloper.ErrNA)
	}

	setter := b.ensureSetter()
	if setter == nil {
		return xloper.ErrorValue(xloper.ErrNA)
	}

	value := coercion.Apply(raw, b.loc)
	if err := setter.Set(path, value); err != nil {
		bridgeLog.Error("写入总线失败", "path", path, "value", value, "error", err)
		return xloper.ErrorValue(xloper.ErrNA)
	}
	if b.setRate != nil {
		b.setRate.Mark(1)
	}
	return setResult
}

// Publish 直接向路径写入总线值（不经宿主值转换）
func (b *Bridge) Publish(path string, v types.Value) error {
	setter := b.ensureSetter()
	if setter == nil {
		return ErrBridgeClosed
	}
	return setter.Set(path, v)
}

// AutoFree 宿主交还本模块返回的值，接管所有权并释放
//
// 只释放本侧借给宿主的值；宿主分配的值保持宿主所有，不会在本地释放。
func (b *Bridge) AutoFree(v *xloper.Value) {
	defer b.recoverHostCall("AutoFree", nil)

	if v.Ownership() == xloper.OwnedHost && !v.Lent() {
		bridgeLog.Debug("AutoFree 收到宿主分配的值，不释放", "kind", v.Kind())
	}
	local := v.TakeLocalOwnership()
	if err := local.Destroy(b.alloc); err != nil {
		bridgeLog.Warn("释放宿主交还的值失败", "error", err)
	}
}

// ensureSetter 惰性创建写入器，只尝试一次
func (b *Bridge) ensureSetter() *multiplex.Multiplexer {
	b.setterOnce.Do(func() {
		m, err := multiplex.New(b.connect,
			multiplex.WithSubscriptionOpts(interfaces.WriteOnly()),
		)
		if err != nil {
			bridgeLog.Error("创建写入器失败", "error", err)
			return
		}
		b.setter.Store(m)
	})
	return b.setter.Load()
}

// setterStats 供指标读取写入器统计
func (b *Bridge) setterStats() (multiplex.Stats, bool) {
	m := b.setter.Load()
	if m == nil {
		return multiplex.Stats{}, false
	}
	return m.Stats(), true
}

// recoverHostCall 宿主调用不能 panic，恢复后返回 #N/A
func (b *Bridge) recoverHostCall(op string, out *xloper.Value) {
	if r := recover(); r != nil {
		bridgeLog.Error("宿主调用 panic", "op", op, "panic", r)
		if out != nil {
			*out = xloper.ErrorValue(xloper.ErrNA)
		}
	}
}

// sharedBus 写入器使用的总线视图，关闭由 Fx 生命周期负责
type sharedBus struct {
	interfaces.Bus
}

func (sharedBus) Close() error { return nil }
