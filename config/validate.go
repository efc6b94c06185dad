package config

import "errors"

// ValidateAll 验证整个配置的有效性，nil 配置视为错误
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}
