package rtdbridge

import (
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/internal/core/dispatch"
	"github.com/dep2p/go-rtdbridge/internal/core/multiplex"
	"github.com/dep2p/go-rtdbridge/pkg/interfaces"
	"github.com/dep2p/go-rtdbridge/pkg/lib/xloper"
)

// Option 桥接配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 配置
	config    *config.Config
	configDir string

	// 日志
	logging bool

	// 外部总线，nil 时使用进程内总线
	bus interfaces.Bus

	// 写入器的总线连接，nil 时复用桥接的总线
	connector multiplex.Connector

	// 事件接收者套间
	apartment dispatch.Apartment

	// 宿主值分配器与时区
	alloc    xloper.Allocator
	location *time.Location

	// 自定义 Fx 选项
	fxOptions []fx.Option
}

func defaultOptions() *options {
	return &options{
		alloc:    xloper.DefaultAllocator,
		location: time.Local,
	}
}

// WithConfig 使用给定配置
//
// 与 WithConfigDir 同时使用时，目录只用于日志与数据文件。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithConfigDir 设置配置目录
//
// 未通过 WithConfig 指定配置时，从该目录加载 config.json，不存在时写入默认值。
func WithConfigDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return fmt.Errorf("config dir cannot be empty")
		}
		o.configDir = dir
		return nil
	}
}

// WithLogging 在配置目录下打开日志文件
func WithLogging() Option {
	return func(o *options) error {
		o.logging = true
		return nil
	}
}

// WithBus 使用外部总线替代进程内总线
//
// 外部总线的关闭由调用方负责。
func WithBus(bus interfaces.Bus) Option {
	return func(o *options) error {
		if bus == nil {
			return fmt.Errorf("bus cannot be nil")
		}
		o.bus = bus
		return nil
	}
}

// WithConnector 设置写入器的总线连接函数
//
// 写入器在首次 Set 时调用一次。
func WithConnector(c multiplex.Connector) Option {
	return func(o *options) error {
		o.connector = c
		return nil
	}
}

// WithApartment 设置事件接收者的线程套间
func WithApartment(ap dispatch.Apartment) Option {
	return func(o *options) error {
		o.apartment = ap
		return nil
	}
}

// WithAllocator 设置宿主值分配器
func WithAllocator(a xloper.Allocator) Option {
	return func(o *options) error {
		if a == nil {
			return fmt.Errorf("allocator cannot be nil")
		}
		o.alloc = a
		return nil
	}
}

// WithLocation 设置日期序列号换算使用的时区
func WithLocation(loc *time.Location) Option {
	return func(o *options) error {
		if loc == nil {
			return fmt.Errorf("location cannot be nil")
		}
		o.location = loc
		return nil
	}
}

// WithFxOption 追加自定义 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
