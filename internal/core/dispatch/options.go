package dispatch

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-rtdbridge/config"
)

// DefaultMethod 接收者上被调用的通知方法名
const DefaultMethod = "UpdateNotify"

// settings 派发器设置
type settings struct {
	clock            clock.Clock
	retryBackoff     time.Duration
	errorLogInterval time.Duration
	method           string
}

func defaultSettings() settings {
	def := config.DefaultDispatcherConfig()
	return settings{
		clock:            clock.New(),
		retryBackoff:     def.RetryBackoff.Duration(),
		errorLogInterval: def.ErrorLogInterval.Duration(),
		method:           DefaultMethod,
	}
}

// Option 派发器选项
type Option func(*settings)

// WithClock 设置重试计时所用的时钟
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRetryBackoff 设置调用失败后的重试间隔
func WithRetryBackoff(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.retryBackoff = d
		}
	}
}

// WithErrorLogInterval 设置重试失败日志的最小间隔，0 表示每次都记录
func WithErrorLogInterval(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.errorLogInterval = d
		}
	}
}

// WithMethod 设置通知方法名
func WithMethod(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.method = name
		}
	}
}

// WithConfig 从配置应用重试参数
func WithConfig(cfg config.DispatcherConfig) Option {
	return func(s *settings) {
		s.retryBackoff = cfg.RetryBackoff.Duration()
		s.errorLogInterval = cfg.ErrorLogInterval.Duration()
	}
}
