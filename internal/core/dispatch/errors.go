package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenConsumed 令牌已被解组过
	ErrTokenConsumed = errors.New("dispatch: token already consumed")

	// ErrNotSink 编组对象不是事件接收者
	ErrNotSink = errors.New("dispatch: object is not an event sink")

	// ErrWrongThread 在非绑定线程上调用事件接收者
	ErrWrongThread = errors.New("dispatch: sink called from a foreign thread")

	// ErrNotEntered 未在当前线程上进入套间
	ErrNotEntered = errors.New("dispatch: apartment not entered on this thread")

	// ErrForeignToken 令牌不是由该套间编组的
	ErrForeignToken = errors.New("dispatch: token was marshaled by another apartment")
)

// MarshalError 编组/解组/方法解析失败
//
// 发生在构造期时由 New 返回；发生在工作线程上时记录日志，派发器不可用。
type MarshalError struct {
	// Op 失败的步骤: marshal/enter/unmarshal/resolve
	Op  string
	Err error
}

// Error 实现 error 接口
func (e *MarshalError) Error() string {
	return fmt.Sprintf("dispatch %s: %v", e.Op, e.Err)
}

// Unwrap 返回底层错误
func (e *MarshalError) Unwrap() error {
	return e.Err
}
