//go:build windows

package dispatch

import "golang.org/x/sys/windows"

// threadID 返回当前 OS 线程号
func threadID() int {
	return int(windows.GetCurrentThreadId())
}
