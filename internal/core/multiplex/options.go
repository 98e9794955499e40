package multiplex

import "github.com/dep2p/go-rtdbridge/pkg/interfaces"

type settings struct {
	subOpts []interfaces.SubscriptionOpt
}

// Option 复用器选项
type Option func(*settings)

// WithSubscriptionOpts 设置创建订阅时使用的选项
func WithSubscriptionOpts(opts ...interfaces.SubscriptionOpt) Option {
	return func(s *settings) {
		s.subOpts = append(s.subOpts, opts...)
	}
}
