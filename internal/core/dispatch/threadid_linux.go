//go:build linux

package dispatch

import "golang.org/x/sys/unix"

// threadID 返回当前 OS 线程号
func threadID() int {
	return unix.Gettid()
}
