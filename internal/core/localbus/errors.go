package localbus

import "errors"

var (
	// ErrClosed 总线已关闭
	ErrClosed = errors.New("localbus: closed")

	// ErrInvalidPath 无效路径
	ErrInvalidPath = errors.New("localbus: invalid path")
)
