// Package interfaces 定义 rtdbridge 的公共接口
//
// 本文件定义 Bus 接口，即外部发布/订阅数据总线的最小契约。
package interfaces

import "github.com/dep2p/go-rtdbridge/pkg/types"

// Bus 数据总线
//
// 路径是总线上的层级名称（如 "/market/eur"）。Subscribe 是唯一创建订阅句柄的方式，
// 同一路径多次订阅得到相互独立的句柄。实现必须并发安全。
type Bus interface {
	// Subscribe 订阅路径，返回可读写的订阅句柄
	Subscribe(path string, opts ...SubscriptionOpt) (BusSubscription, error)

	// Close 关闭总线连接，所有订阅随之失效
	Close() error
}

// BusSubscription 路径订阅句柄
type BusSubscription interface {
	// Path 返回订阅的路径
	Path() string

	// Write 向路径写入值，即发即忘
	Write(v types.Value)

	// Last 返回路径上的最新值，尚无值时为 Null
	Last() types.Value

	// Updates 返回值更新通道
	//
	// 通道满时实现可以丢弃最旧的更新，消费者总能通过 Last 读到最新值。
	// 订阅关闭后通道被关闭。
	Updates() <-chan types.Value

	// Close 取消订阅
	Close() error
}

// SubscriptionOpt 订阅选项函数类型
type SubscriptionOpt func(*SubscriptionSettings)

// SubscriptionSettings 订阅设置（导出以供实现使用）
type SubscriptionSettings struct {
	// Buffer 更新通道容量
	Buffer int

	// WriteOnly 只写订阅：不接收更新，Updates 通道只在关闭时关闭
	WriteOnly bool
}

// BufSize 设置更新通道容量
func BufSize(size int) SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.Buffer = size
	}
}

// WriteOnly 声明只写订阅，用于只写入不读取更新的写入方
func WriteOnly() SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.WriteOnly = true
	}
}
