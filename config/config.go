// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//   - 首次运行时在用户配置目录写入默认配置
//
// 配置文件位于 <UserConfigDir>/rtdbridge/config.json，日志文件 log.txt 与之同目录。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.LogLevel = "debug"
//
//	// 从默认目录加载，不存在时写入默认值
//	cfg, err := config.LoadOrCreate(config.DefaultDir())
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

// Config 是 rtdbridge 的完整配置结构
//
// 顶层的 log_level 与 auth_mechanism 保持与早期配置文件兼容，
// 其余按功能模块组织：
//   - Log: 日志格式与子系统级别
//   - Bus: 数据总线
//   - Storage: 最新值持久化
//   - Dispatcher: 宿主通知派发
//   - Session: 宿主侧注册信息
//   - Metrics: Prometheus 指标
type Config struct {
	// LogLevel 日志级别: off/error/warn/info/debug/trace
	LogLevel string `json:"log_level"`

	// AuthMechanism 总线认证方式，null 表示使用总线默认值
	AuthMechanism *AuthMechanism `json:"auth_mechanism"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Bus 数据总线配置
	Bus BusConfig `json:"bus"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage"`

	// Dispatcher 通知派发配置
	Dispatcher DispatcherConfig `json:"dispatcher"`

	// Session 宿主会话配置
	Session SessionConfig `json:"session"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
//
// 默认关闭日志、不指定认证方式，适用于大多数场景。
func NewConfig() *Config {
	return &Config{
		LogLevel:   "off",
		Log:        DefaultLogConfig(),
		Bus:        DefaultBusConfig(),
		Storage:    DefaultStorageConfig(),
		Dispatcher: DefaultDispatcherConfig(),
		Session:    DefaultSessionConfig(),
		Metrics:    DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置是否有效，如果发现无效配置则返回错误。
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.AuthMechanism != nil {
		if err := c.AuthMechanism.Validate(); err != nil {
			return err
		}
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Bus.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Dispatcher.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return nil
}

// Clone 返回配置的深拷贝
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cloned := *c
	if c.AuthMechanism != nil {
		auth := *c.AuthMechanism
		cloned.AuthMechanism = &auth
	}
	if c.Log.Subsystems != nil {
		cloned.Log.Subsystems = make(map[string]string, len(c.Log.Subsystems))
		for k, v := range c.Log.Subsystems {
			cloned.Log.Subsystems[k] = v
		}
	}
	return &cloned
}
