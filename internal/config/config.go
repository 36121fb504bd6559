package config

import (
	"fmt"
	"time"
)

type Config struct {
	BaseURL        string              `yaml:"base_url"`
	SelectorsFile  string              `yaml:"selectors_file"`
	OutputDir      string              `yaml:"output_dir"`
	CheckpointFile string              `yaml:"checkpoint_file"`
	Fetch          FetchConfig         `yaml:"fetch"`
	Rod            RodConfig           `yaml:"rod"`
	HTTP           HttpConfig          `yaml:"http"`
	Backoff        BackoffConfig       `yaml:"backoff"`
	RateLimit      RateLimitConfig     `yaml:"rate_limit"`
	Robots         RobotsConfig        `yaml:"robots"`
	Crawl          CrawlConfig         `yaml:"crawl"`
	Storage        StorageConfig       `yaml:"storage"`
	Observability  ObservabilityConfig `yaml:"observability"`
}

type FetchConfig struct {
	Mode string `yaml:"mode"` // http | rod | colly
}

type RodConfig struct {
	ChromePath       string `yaml:"chrome_path"`
	Headless         bool   `yaml:"headless"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s"`
	LazyLoadDelayS   int    `yaml:"lazy_load_delay_s"`
}

type HttpConfig struct {
	UserAgent                 string `yaml:"user_agent"`
	AcceptLanguage            string `yaml:"accept_language"`
	ConnectTimeoutMS          int    `yaml:"connect_timeout_ms"`
	TotalTimeoutMS            int    `yaml:"total_timeout_ms"`
	MaxRetries                int    `yaml:"max_retries"`
	MaxIdleConnections        int    `yaml:"max_idle_connections"`
	MaxIdleConnectionsPerHost int    `yaml:"max_idle_connections_per_host"`
	IdleConnectionTimeoutS    int    `yaml:"idle_connection_timeout_s"`
}

type BackoffConfig struct {
	MinMS     int `yaml:"min_ms"`
	MaxMS     int `yaml:"max_ms"`
	JitterPct int `yaml:"jitter_pct"`
}

type RateLimitConfig struct {
	RPM int `yaml:"rpm"`
}

type RobotsConfig struct {
	Enabled       bool `yaml:"enabled"`
	CacheTTLHours int  `yaml:"cache_ttl_hours"`
}

type CrawlConfig struct {
	StartPage         int  `yaml:"start_page"`
	InitialTotalPages int  `yaml:"initial_total_pages"`
	CourtesyEvery     int  `yaml:"courtesy_every"`
	CourtesyDelayS    int  `yaml:"courtesy_delay_s"`
	CooldownS         int  `yaml:"cooldown_s"`
	MaxPageRetries    int  `yaml:"max_page_retries"`
	Resume            bool `yaml:"resume"`
	Progress          bool `yaml:"progress"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"` // none | mssql | postgres
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
}

// Default возвращает конфиг со значениями по умолчанию; YAML поверх него
func Default() *Config {
	return &Config{
		SelectorsFile:  "configs/selectors.json",
		OutputDir:      "output",
		CheckpointFile: ".temp.csv",
		Fetch:          FetchConfig{Mode: "http"},
		Rod: RodConfig{
			Headless:         true,
			PageTimeoutS:     60,
			WaitLoadTimeoutS: 30,
			LazyLoadDelayS:   2,
		},
		HTTP: HttpConfig{
			UserAgent:                 "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			AcceptLanguage:            "ru-RU,ru;q=0.9,en;q=0.5",
			ConnectTimeoutMS:          10000,
			TotalTimeoutMS:            30000,
			MaxRetries:                2,
			MaxIdleConnections:        100,
			MaxIdleConnectionsPerHost: 10,
			IdleConnectionTimeoutS:    90,
		},
		Backoff:   BackoffConfig{MinMS: 500, MaxMS: 5000, JitterPct: 20},
		RateLimit: RateLimitConfig{RPM: 30},
		Robots:    RobotsConfig{Enabled: true, CacheTTLHours: 12},
		Crawl: CrawlConfig{
			StartPage:         1,
			InitialTotalPages: 2,
			CourtesyEvery:     3,
			CourtesyDelayS:    60,
			CooldownS:         30,
			MaxPageRetries:    5,
		},
		Storage: StorageConfig{Driver: "none", CommandTimeoutMS: 5000},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			LogFormat:     "text",
			LogMaxSizeMB:  50,
			LogMaxBackups: 5,
			LogMaxAgeDays: 30,
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.SelectorsFile == "" {
		return fmt.Errorf("selectors_file is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	switch c.Fetch.Mode {
	case "http", "rod", "colly":
	default:
		return fmt.Errorf("fetch.mode must be 'http', 'rod' or 'colly'")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("http.connect_timeout_ms must be > 0")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.RateLimit.RPM <= 0 {
		return fmt.Errorf("rate_limit.rpm must be > 0")
	}
	if c.Robots.Enabled && c.Robots.CacheTTLHours <= 0 {
		return fmt.Errorf("robots.cache_ttl_hours must be > 0")
	}
	if c.Backoff.MinMS <= 0 {
		return fmt.Errorf("backoff.min_ms must be > 0")
	}
	if c.Backoff.MaxMS <= 0 {
		return fmt.Errorf("backoff.max_ms must be > 0")
	}
	if c.Backoff.MinMS > c.Backoff.MaxMS {
		return fmt.Errorf("backoff.min_ms must be <= backoff.max_ms")
	}
	if c.Backoff.JitterPct < 0 || c.Backoff.JitterPct > 100 {
		return fmt.Errorf("backoff.jitter_pct must be between 0 and 100")
	}
	if c.Crawl.StartPage <= 0 {
		return fmt.Errorf("crawl.start_page must be > 0")
	}
	if c.Crawl.InitialTotalPages < c.Crawl.StartPage {
		return fmt.Errorf("crawl.initial_total_pages must be >= crawl.start_page")
	}
	if c.Crawl.CourtesyEvery < 0 {
		return fmt.Errorf("crawl.courtesy_every must be >= 0")
	}
	if c.Crawl.CourtesyDelayS < 0 || c.Crawl.CooldownS < 0 {
		return fmt.Errorf("crawl delays must be >= 0")
	}
	if c.Crawl.MaxPageRetries < 0 {
		return fmt.Errorf("crawl.max_page_retries must be >= 0")
	}
	switch c.Storage.Driver {
	case "", "none":
	case "mssql", "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when storage.driver is %q", c.Storage.Driver)
		}
		if c.Storage.CommandTimeoutMS <= 0 {
			return fmt.Errorf("storage.command_timeout_ms must be > 0")
		}
	default:
		return fmt.Errorf("storage.driver must be 'none', 'mssql' or 'postgres'")
	}
	if c.Fetch.Mode == "rod" {
		if c.Rod.PageTimeoutS <= 0 {
			return fmt.Errorf("rod.page_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
		if c.Rod.LazyLoadDelayS < 0 {
			return fmt.Errorf("rod.lazy_load_delay_s must be >= 0")
		}
	}
	return nil
}

// Getters
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.HTTP.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetBackoffMin() time.Duration {
	return time.Duration(c.Backoff.MinMS) * time.Millisecond
}

func (c *Config) GetBackoffMax() time.Duration {
	return time.Duration(c.Backoff.MaxMS) * time.Millisecond
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetRobotsCacheTTL() time.Duration {
	return time.Duration(c.Robots.CacheTTLHours) * time.Hour
}

func (c *Config) GetCourtesyDelay() time.Duration {
	return time.Duration(c.Crawl.CourtesyDelayS) * time.Second
}

func (c *Config) GetCooldown() time.Duration {
	return time.Duration(c.Crawl.CooldownS) * time.Second
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}

func (c *Config) GetRodLazyLoadDelay() time.Duration {
	return time.Duration(c.Rod.LazyLoadDelayS) * time.Second
}
