package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Sweep  SweepConfig  `yaml:"sweep"`
	Market MarketConfig `yaml:"market"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
}

// SweepConfig holds background sweeper settings.
type SweepConfig struct {
	Disabled        bool `yaml:"disabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}

// MarketConfig holds market data provider settings.
type MarketConfig struct {
	// Provider selects the data source: "http" or "sim".
	Provider           string  `yaml:"provider"`
	ChartURL           string  `yaml:"chart_url"`
	ProfileURL         string  `yaml:"profile_url"`
	TimeoutSeconds     int     `yaml:"timeout_seconds"`
	RPS                float64 `yaml:"rps"`
	Burst              int     `yaml:"burst"`
	SnapshotTTLSeconds int     `yaml:"snapshot_ttl_seconds"`
	ClosesTTLSeconds   int     `yaml:"closes_ttl_seconds"`
	// RedisAddr switches the market data cache to Redis when set.
	RedisAddr string `yaml:"redis_addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file and applies defaults for unset fields. An
// empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 10
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 10
	}
	if c.Server.IdleTimeoutSeconds == 0 {
		c.Server.IdleTimeoutSeconds = 60
	}
	if c.Sweep.IntervalSeconds == 0 {
		c.Sweep.IntervalSeconds = 60
	}
	if c.Market.Provider == "" {
		c.Market.Provider = "sim"
	}
	if c.Market.ChartURL == "" {
		c.Market.ChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if c.Market.TimeoutSeconds == 0 {
		c.Market.TimeoutSeconds = 10
	}
	if c.Market.RPS == 0 {
		c.Market.RPS = 4
	}
	if c.Market.Burst == 0 {
		c.Market.Burst = 8
	}
	if c.Market.SnapshotTTLSeconds == 0 {
		c.Market.SnapshotTTLSeconds = 300
	}
	if c.Market.ClosesTTLSeconds == 0 {
		c.Market.ClosesTTLSeconds = 300
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// SweepInterval returns the sweep interval as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sweep.IntervalSeconds) * time.Second
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
