// Package config 提供统一的配置管理
package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AuthMechanism 总线认证方式
type AuthMechanism string

const (
	// AuthAnonymous 匿名
	AuthAnonymous AuthMechanism = "Anonymous"
	// AuthKerberos Kerberos
	AuthKerberos AuthMechanism = "Kerberos"
	// AuthTLS TLS 客户端证书
	AuthTLS AuthMechanism = "Tls"
)

// Validate 验证认证方式
func (a AuthMechanism) Validate() error {
	switch a {
	case AuthAnonymous, AuthKerberos, AuthTLS:
		return nil
	default:
		return fmt.Errorf("auth_mechanism: unknown mechanism %q", string(a))
	}
}

// UnmarshalJSON 实现 json.Unmarshaler，大小写不敏感
func (a *AuthMechanism) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("auth_mechanism must be a string: %w", err)
	}
	for _, m := range []AuthMechanism{AuthAnonymous, AuthKerberos, AuthTLS} {
		if strings.EqualFold(s, string(m)) {
			*a = m
			return nil
		}
	}
	return fmt.Errorf("auth_mechanism: unknown mechanism %q", s)
}
