package multiplex

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-rtdbridge/pkg/types"
)

// ErrStopped 复用器已停止
var ErrStopped = errors.New("multiplex: stopped")

// TransportError 总线连接或订阅失败
type TransportError struct {
	// Op 失败的操作: connect/subscribe
	Op   string
	Path string
	Err  error
}

// Error 实现 error 接口
func (e *TransportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("multiplex %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("multiplex %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap 返回底层错误
func (e *TransportError) Unwrap() error {
	return e.Err
}

// SendError 复用器已退出，写请求未能入队
//
// 携带被拒绝的路径与值，调用者可以自行重试或丢弃。
type SendError struct {
	Path  string
	Value types.Value
}

// Error 实现 error 接口
func (e *SendError) Error() string {
	return fmt.Sprintf("multiplex: cannot send %s to %s: actor stopped", e.Value, e.Path)
}

// Unwrap 返回 ErrStopped
func (e *SendError) Unwrap() error {
	return ErrStopped
}
