package config

import "fmt"

// ConfigError: фатальная ошибка конфигурации, обход не начинается
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config error: %v", e.Err)
	}
	return fmt.Sprintf("config error in %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(path string, format string, args ...interface{}) error {
	return &ConfigError{Path: path, Err: fmt.Errorf(format, args...)}
}
