// Package testutil 提供测试辅助函数
package testutil

import (
	"context"
	"testing"
	"time"
)

// WaitForCondition 等待条件满足或超时
//
// 参数：
//   - t: 测试对象
//   - timeout: 超时时间
//   - interval: 检查间隔
//   - condition: 条件函数，返回 true 表示条件满足
//
// 返回：条件是否满足（超时返回 false）
func WaitForCondition(t *testing.T, timeout time.Duration, interval time.Duration, condition func() bool) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 立即检查一次
	if condition() {
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if condition() {
				return true
			}
		}
	}
}

// WaitForConditionOrFail 等待条件满足，超时则 fail 测试
func WaitForConditionOrFail(t *testing.T, timeout time.Duration, interval time.Duration, condition func() bool, msg string) {
	t.Helper()

	if !WaitForCondition(t, timeout, interval, condition) {
		t.Fatalf("等待超时: %s", msg)
	}
}

// Eventually 在指定时间内重试条件检查
//
// 使用默认间隔 10ms。
//
// 示例:
//
//	testutil.Eventually(t, time.Second, func() bool {
//	    return sink.Invocations() > 0
//	}, "应该通知宿主")
func Eventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	WaitForConditionOrFail(t, timeout, 10*time.Millisecond, condition, msg)
}

// EventuallyAdvancing 在每次检查前调用 tick，用于推进模拟时钟
//
// 示例:
//
//	testutil.EventuallyAdvancing(t, time.Second, func() { mock.Add(250 * time.Millisecond) },
//	    func() bool { return sink.Invocations() == 3 }, "应该重试两次")
func EventuallyAdvancing(t *testing.T, timeout time.Duration, tick func(), condition func() bool, msg string) {
	t.Helper()
	WaitForConditionOrFail(t, timeout, 10*time.Millisecond, func() bool {
		tick()
		return condition()
	}, msg)
}

// Never 在整个时间窗口内条件都不应满足
func Never(t *testing.T, window time.Duration, condition func() bool, msg string) {
	t.Helper()
	if WaitForCondition(t, window, 10*time.Millisecond, condition) {
		t.Fatalf("条件不应满足: %s", msg)
	}
}

// Receive 从通道接收一个值，超时则 fail 测试
func Receive[T any](t *testing.T, ch <-chan T, timeout time.Duration) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("通道已关闭")
		}
		return v
	case <-time.After(timeout):
		t.Fatalf("接收超时（%v）", timeout)
	}
	var zero T
	return zero
}

// WaitClosed 等待通道关闭，超时则 fail 测试
func WaitClosed[T any](t *testing.T, ch <-chan T, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("等待通道关闭超时（%v）", timeout)
		}
	}
}
