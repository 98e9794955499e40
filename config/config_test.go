package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "off", cfg.LogLevel)
	assert.Nil(t, cfg.AuthMechanism)
	assert.Equal(t, 250*time.Millisecond, cfg.Dispatcher.RetryBackoff.Duration())
	assert.Equal(t, "RtdBridge", cfg.Session.ProgID)

	// 验证默认配置有效
	assert.NoError(t, cfg.Validate())

	t.Log("✅ NewConfig 测试通过")
}

// TestConfig_Validate 测试配置验证
func TestConfig_Validate(t *testing.T) {
	t.Run("UnknownLevel", func(t *testing.T) {
		cfg := NewConfig()
		cfg.LogLevel = "loud"
		assert.Error(t, cfg.Validate())
	})

	t.Run("UnknownAuth", func(t *testing.T) {
		cfg := NewConfig()
		bad := AuthMechanism("Password")
		cfg.AuthMechanism = &bad
		assert.Error(t, cfg.Validate())
	})

	t.Run("ZeroBackoff", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Dispatcher.RetryBackoff = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("BadSubsystemLevel", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Log.Subsystems = map[string]string{"core/dispatch": "chatty"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("InMemoryWithDir", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Storage.InMemory = true
		cfg.Storage.DataDir = "/tmp/x"
		assert.Error(t, cfg.Validate())
	})

	t.Run("NegativeCache", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Storage.CacheSize = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("MetricsListenAddr", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Metrics.ListenAddr = "no-port"
		assert.Error(t, cfg.Validate())

		// 禁用时不检查
		cfg.Metrics.Enabled = false
		assert.NoError(t, cfg.Validate())
	})

	t.Log("✅ Config.Validate 测试通过")
}

// TestParseLogLevel 测试日志级别解析
func TestParseLogLevel(t *testing.T) {
	for name, want := range map[string]int{
		"OFF":   int(LevelOff),
		"error": 8,
		"Warn":  4,
		"info":  0,
		"DEBUG": -4,
		"trace": int(LevelTrace),
	} {
		got, err := ParseLogLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, int(got), name)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

// TestFromJSON 测试从 JSON 加载
func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"log_level": "INFO",
		"auth_mechanism": "kerberos",
		"dispatcher": {"retry_backoff": "1s"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	require.NotNil(t, cfg.AuthMechanism)
	assert.Equal(t, AuthKerberos, *cfg.AuthMechanism)
	assert.Equal(t, time.Second, cfg.Dispatcher.RetryBackoff.Duration())
	// 未出现的字段保留默认值
	assert.Equal(t, 64, cfg.Bus.UpdateBuffer)
	assert.NoError(t, cfg.Validate())

	_, err = FromJSON([]byte(`{"auth_mechanism": "Password"}`))
	assert.Error(t, err)
}

// TestLoadOrCreate 测试首次运行写入默认配置
func TestLoadOrCreate(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, "off", cfg.LogLevel)

	data, err := os.ReadFile(FilePath(dir))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "off", raw["log_level"])
	assert.Contains(t, raw, "auth_mechanism")
	assert.Nil(t, raw["auth_mechanism"])

	// 修改后再次加载
	cfg.LogLevel = "debug"
	tls := AuthTLS
	cfg.AuthMechanism = &tls
	require.NoError(t, Save(dir, cfg))

	loaded, err := LoadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.LogLevel)
	assert.Equal(t, AuthTLS, *loaded.AuthMechanism)

	t.Log("✅ LoadOrCreate 测试通过")
}

// TestLoadOrCreate_Invalid 测试加载无效配置
func TestLoadOrCreate_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(FilePath(dir), []byte(`{"log_level": "loud"}`), 0o644))

	_, err := LoadOrCreate(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(FilePath(dir), []byte(`not json`), 0o644))
	_, err = LoadOrCreate(dir)
	assert.Error(t, err)
}

// TestValidateAndFix 测试自动修复
func TestValidateAndFix(t *testing.T) {
	cfg := NewConfig()
	cfg.LogLevel = "loud"
	cfg.Log.Format = "xml"
	cfg.Dispatcher.RetryBackoff = -1
	cfg.Bus.UpdateBuffer = 0
	cfg.Session.ProgID = ""
	cfg.Log.Subsystems = map[string]string{"a": "debug", "b": "nope"}

	fixed, err := ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.Equal(t, "off", fixed.LogLevel)
	assert.Equal(t, "text", fixed.Log.Format)
	assert.Equal(t, 250*time.Millisecond, fixed.Dispatcher.RetryBackoff.Duration())
	assert.Equal(t, 64, fixed.Bus.UpdateBuffer)
	assert.Equal(t, "RtdBridge", fixed.Session.ProgID)
	assert.Equal(t, map[string]string{"a": "debug"}, fixed.Log.Subsystems)

	def, err := ValidateAndFix(nil)
	require.NoError(t, err)
	assert.NotNil(t, def)

	assert.Error(t, ValidateAll(nil))
}

// TestClone 测试深拷贝
func TestClone(t *testing.T) {
	cfg := NewConfig()
	auth := AuthAnonymous
	cfg.AuthMechanism = &auth
	cfg.Log.Subsystems = map[string]string{"x": "info"}

	cloned := cfg.Clone()
	*cloned.AuthMechanism = AuthTLS
	cloned.Log.Subsystems["x"] = "debug"

	assert.Equal(t, AuthAnonymous, *cfg.AuthMechanism)
	assert.Equal(t, "info", cfg.Log.Subsystems["x"])
}

// TestDurations 测试 Duration 的 JSON 格式
func TestDurations(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"250ms"`), &d))
	assert.Equal(t, 250*time.Millisecond, d.Duration())

	// 整数按毫秒
	require.NoError(t, json.Unmarshal([]byte(`1500`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(5 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"5s"`, string(out))
}
