package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Переменные окружения, перекрывающие YAML
const (
	EnvBaseURL    = "CIAN_BASE_URL"
	EnvStorageDSN = "STORAGE_DSN"
	EnvLogLevel   = "LOG_LEVEL"
)

// LoadEnv подгружает .env файлы; отсутствие файла не ошибка
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return configErr(f, "failed to load env file: %w", err)
		}
	}
	return nil
}

func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, configErr(filePath, "failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			// Логируем ошибку, но не возвращаем, иначе перезапишем основную ошибку
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, configErr(filePath, "failed to parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, configErr(filePath, "config validation error: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvStorageDSN); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Observability.LogLevel = v
	}
}

// ResolveBaseURL выбирает адрес выдачи: YAML/окружение, иначе запись "url" из селекторов
func (c *Config) ResolveBaseURL(fromSelectors string) (string, error) {
	if c.BaseURL != "" {
		return c.BaseURL, nil
	}
	if fromSelectors != "" {
		return fromSelectors, nil
	}
	return "", &ConfigError{Err: fmt.Errorf("base_url is not set in config, %s or the selectors file", EnvBaseURL)}
}
