package localbus

import (
	"github.com/dep2p/go-rtdbridge/config"
	"github.com/dep2p/go-rtdbridge/internal/core/storage"
)

// settings 总线设置
type settings struct {
	buffer    int
	warnEvery int64
	values    *storage.Values
}

func defaultSettings() settings {
	def := config.DefaultBusConfig()
	return settings{
		buffer:    def.UpdateBuffer,
		warnEvery: int64(def.DropWarnEvery),
	}
}

// Option 总线选项
type Option func(*settings)

// WithBuffer 设置订阅更新通道的默认容量
func WithBuffer(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// WithDropWarnEvery 设置慢消费者警告间隔（按丢弃次数）
func WithDropWarnEvery(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.warnEvery = int64(n)
		}
	}
}

// WithValues 开启最新值持久化
func WithValues(v *storage.Values) Option {
	return func(s *settings) {
		s.values = v
	}
}

// WithConfig 从总线配置设置选项
func WithConfig(cfg config.BusConfig) Option {
	return func(s *settings) {
		WithBuffer(cfg.UpdateBuffer)(s)
		WithDropWarnEvery(cfg.DropWarnEvery)(s)
	}
}
