package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName 配置目录名
	dirName = "rtdbridge"
	// fileName 配置文件名
	fileName = "config.json"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。JSON 格式与 Config 结构体一一对应。
//
// 示例 JSON:
//
//	{
//	  "log_level": "info",
//	  "auth_mechanism": "Kerberos",
//	  "dispatcher": {"retry_backoff": "250ms"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为带缩进的 JSON
func ToJSON(cfg *Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// DefaultDir 返回默认配置目录
//
// 依次尝试用户配置目录、用户主目录，最后退回文件系统根目录。
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, dirName)
	}
	if dir, err := os.UserHomeDir(); err == nil && dir != "" {
		return filepath.Join(dir, dirName)
	}
	return filepath.Join(string(filepath.Separator), dirName)
}

// FilePath 返回 dir 下的配置文件路径
func FilePath(dir string) string {
	return filepath.Join(dir, fileName)
}

// LoadOrCreate 从 dir 加载配置
//
// 目录不存在时创建；配置文件不存在时写入默认配置并返回默认值。
func LoadOrCreate(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	path := FilePath(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := NewConfig()
		if err := Save(dir, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save 将配置写入 dir 下的配置文件
func Save(dir string, cfg *Config) error {
	data, err := ToJSON(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(FilePath(dir), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
