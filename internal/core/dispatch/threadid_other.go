//go:build !linux && !windows

package dispatch

// threadID 平台不提供线程号，所有线程视为同一线程
func threadID() int {
	return 0
}
