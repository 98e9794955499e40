// Package config 提供统一的配置管理
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Duration 在 JSON 中以 "250ms"、"5s" 形式书写的时间间隔
//
// 读取时也接受整数（按毫秒解释），便于手写配置文件。
// 写出时总是字符串。
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}

	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("duration must be a string like \"250ms\" or integer milliseconds: %s", data)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// MarshalJSON 实现 json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Duration 返回 time.Duration
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// String 实现 fmt.Stringer
func (d Duration) String() string { return time.Duration(d).String() }
