package rtdbridge

import "errors"

// 公共错误定义
var (
	// ErrAlreadyStarted 桥接已启动
	ErrAlreadyStarted = errors.New("bridge already started")

	// ErrBridgeClosed 桥接已关闭
	ErrBridgeClosed = errors.New("bridge closed")

	// ErrInvalidPath 无效的总线路径
	ErrInvalidPath = errors.New("invalid bus path")
)
