package rtd

import "errors"

var (
	// ErrNotStarted 服务器未启动
	ErrNotStarted = errors.New("rtd: server not started")

	// ErrAlreadyStarted 服务器已启动
	ErrAlreadyStarted = errors.New("rtd: server already started")

	// ErrTerminated 服务器已终止
	ErrTerminated = errors.New("rtd: server terminated")

	// ErrNoPath 主题参数中没有路径
	ErrNoPath = errors.New("rtd: topic has no path")

	// ErrDuplicateTopic 主题号已存在
	ErrDuplicateTopic = errors.New("rtd: duplicate topic id")
)
