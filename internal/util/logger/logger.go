// Package logger 安装 rtdbridge 的统一日志系统
//
// 基于标准库 log/slog，支持：
//   - 按组件配置日志级别（与 pkg/lib/log 的 LazyLogger 配合）
//   - 环境变量配置（RTDBRIDGE_LOG_LEVEL, RTDBRIDGE_LOG_FORMAT）
//   - 会话级安装与卸载：Setup 返回的 io.Closer 恢复之前的 logger
//
// 使用示例:
//
//	closer, err := logger.Setup(config.DefaultDir(), cfg)
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dep2p/go-rtdbridge/config"
)

// Install 将配置安装为默认 logger，输出到 w
//
// 返回的函数恢复安装前的 logger。
func Install(cfg *Config, w io.Writer) (restore func()) {
	prev := slog.Default()
	slog.SetDefault(slog.New(newHandler(cfg, w)))
	return func() { slog.SetDefault(prev) }
}

// Setup 打开 dir 下的日志文件并按配置安装 logger
//
// 日志文件每次会话重新创建。返回的 io.Closer 恢复之前的 logger 并关闭文件，
// 多次调用 Close 是安全的。
func Setup(dir string, c *config.Config) (io.Closer, error) {
	cfg, err := FromConfig(c)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	name := c.Log.FileName
	if name == "" {
		name = config.DefaultLogConfig().FileName
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &session{file: f, restore: Install(cfg, f)}, nil
}

// session 一次 Setup 安装的日志会话
type session struct {
	once    sync.Once
	file    *os.File
	restore func()
	err     error
}

// Close 恢复之前的 logger 并关闭日志文件
func (s *session) Close() error {
	s.once.Do(func() {
		s.restore()
		s.err = s.file.Close()
	})
	return s.err
}
