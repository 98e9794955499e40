package logger

import (
	"context"
	"io"
	"log/slog"

	"github.com/dep2p/go-rtdbridge/config"
)

// componentKey LazyLogger 附加的组件属性名
const componentKey = "component"

// componentHandler 按组件决定级别的 slog.Handler
//
// 根 handler 使用默认级别；With("component", name) 派生的 handler
// 改用该组件在配置中的级别。实际格式化交给 inner。
type componentHandler struct {
	cfg   *Config
	level slog.Level
	inner slog.Handler
}

// newHandler 创建输出到 w 的根 handler
func newHandler(cfg *Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		// 级别在外层判断
		Level:       config.LevelTrace,
		AddSource:   cfg.AddSource,
		ReplaceAttr: shortAttrs,
	}

	var inner slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Format == FormatJSON {
		inner = slog.NewJSONHandler(w, opts)
	}
	return &componentHandler{cfg: cfg, level: cfg.DefaultLevel, inner: inner}
}

// shortAttrs 把时间键缩写为 ts，级别写成小写名称
func shortAttrs(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(lvl))
		}
	}
	return a
}

func (h *componentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	level := h.level
	for _, a := range attrs {
		if a.Key == componentKey {
			level = h.cfg.LevelForSubsystem(a.Value.String())
		}
	}
	return &componentHandler{cfg: h.cfg, level: level, inner: h.inner.WithAttrs(attrs)}
}

func (h *componentHandler) WithGroup(name string) slog.Handler {
	return &componentHandler{cfg: h.cfg, level: h.level, inner: h.inner.WithGroup(name)}
}

func levelName(level slog.Level) string {
	switch {
	case level <= config.LevelTrace:
		return "trace"
	case level <= slog.LevelDebug:
		return "debug"
	case level <= slog.LevelInfo:
		return "info"
	case level <= slog.LevelWarn:
		return "warn"
	default:
		return "error"
	}
}
