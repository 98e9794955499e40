// Package log 提供 rtdbridge 统一日志接口
//
// 组件通过包级变量持有 LazyLogger：
//
//	var logger = log.Logger("core/dispatch")
//	logger.Info("派发器已启动", "method", "UpdateNotify")
//
// LazyLogger 不持有 handler，每次调用都取 slog.Default()。
// 输出目标与级别由 internal/util/logger 在会话启动时安装，
// 安装前创建的 LazyLogger 同样生效。
package log

import (
	"context"
	"log/slog"
)

// LevelTrace 比 Debug 更详细的级别，用于第三方库的调试输出
const LevelTrace = slog.Level(-8)

// LazyLogger 按组件打标签的日志记录器
type LazyLogger struct {
	component string
}

// Logger 返回组件 component 的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// log 级别判断在带组件属性的 handler 上进行，子系统可以比默认级别更详细
func (l *LazyLogger) log(level slog.Level, msg string, args []any) {
	slog.Default().With("component", l.component).Log(context.Background(), level, msg, args...)
}

// Trace 输出 Trace 级别日志
func (l *LazyLogger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args) }

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args) }

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args) }

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }
