// Package config provides configuration management for the harvester.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hearings/pkg/utils"
)

// Environment overrides.
const (
	EnvSnapshotPath = "HARVESTER_SNAPSHOT_PATH"
	EnvLogLevel     = "HARVESTER_LOG_LEVEL"
)

// Upstream defaults.
const (
	DefaultSenateFeedURL   = "https://www.senate.gov/general/committee_schedules/hearings.xml"
	DefaultSenateDetailURL = "https://www.senate.gov/committees/hearings_meetings.htm"
	DefaultHouseBaseURL    = "https://docs.house.gov"
)

// Configuration validation errors.
var (
	ErrNoEnabledSources         = errors.New("at least one source must be enabled")
	ErrInvalidSenateURL         = errors.New("sources.senate.url must be an absolute http(s) URL")
	ErrInvalidHouseBaseURL      = errors.New("sources.house.base_url must be an absolute http(s) URL")
	ErrInvalidWeekWindow        = errors.New("sources.house.weeks_back and weeks_ahead must be non-negative")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidHTTPTimeout       = errors.New("http.timeout_sec must be at least 1")
	ErrInvalidBufferSize        = errors.New("http.buffer_size_kb must be at least 1")
	ErrInvalidConcurrency       = errors.New("crawl.concurrency must be at least 1")
	ErrInvalidRate              = errors.New("crawl.rate_per_second must be non-negative")
	ErrInvalidBurst             = errors.New("crawl.burst must be at least 1 when a rate is set")
	ErrMissingSnapshotPath      = errors.New("output.snapshot_path is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
	ErrMissingHistoryPath       = errors.New("history.db_path is required when history is enabled")
	ErrMissingListenAddress     = errors.New("server.listen_address is required")
)

// Config represents the complete harvester configuration.
type Config struct {
	Harvester HarvesterConfig `yaml:"harvester"`
	History   HistoryConfig   `yaml:"history"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Server    ServerConfig    `yaml:"server"`
}

// HarvesterConfig contains harvest-run settings.
type HarvesterConfig struct {
	Sources SourcesConfig `yaml:"sources"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	HTTP    HTTPConfig    `yaml:"http"`
	Crawl   CrawlConfig   `yaml:"crawl"`
	Retry   RetryPolicy   `yaml:"retry"`
}

// SourcesConfig holds per-source settings.
type SourcesConfig struct {
	Senate SenateConfig `yaml:"senate"`
	House  HouseConfig  `yaml:"house"`
}

// SenateConfig configures the Senate XML feed adapter.
type SenateConfig struct {
	URL string `yaml:"url"`
	// DefaultDetailURL is used for entries that carry no link of their own.
	DefaultDetailURL string `yaml:"default_detail_url"`
	Enabled          bool   `yaml:"enabled"`
}

// HouseConfig configures the House calendar crawl adapter.
type HouseConfig struct {
	BaseURL    string `yaml:"base_url"`
	WeeksBack  int    `yaml:"weeks_back"`
	WeeksAhead int    `yaml:"weeks_ahead"`
	Enabled    bool   `yaml:"enabled"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	// TimeoutSec bounds one fetch unit including all of its retries.
	TimeoutSec int `yaml:"timeout_sec"`
}

// HTTPConfig defines client behavior for a single request.
type HTTPConfig struct {
	UserAgent    string `yaml:"user_agent"`
	TimeoutSec   int    `yaml:"timeout_sec"`
	BufferSizeKb int    `yaml:"buffer_size_kb"`
}

// CrawlConfig bounds per-event fan-out against the House calendar.
type CrawlConfig struct {
	Concurrency   int     `yaml:"concurrency"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// OutputConfig defines snapshot output behavior.
type OutputConfig struct {
	SnapshotPath string `yaml:"snapshot_path"`
	PrettyPrint  bool   `yaml:"pretty_print"`
	CreateBackup bool   `yaml:"create_backup"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	DBPath  string `yaml:"db_path"`
	Enabled bool   `yaml:"enabled"`
}

// MetricsConfig configures metric export. An empty path disables the textfile.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// ServerConfig configures the read-only snapshot API.
type ServerConfig struct {
	ListenAddress string `yaml:"listen_address"`
	// SnapshotPath defaults to harvester.output.snapshot_path.
	SnapshotPath string `yaml:"snapshot_path"`
	Watch        bool   `yaml:"watch"`
}

// Default returns a configuration that harvests both chambers into
// public/meetings.json.
func Default() *Config {
	return &Config{
		Harvester: HarvesterConfig{
			Sources: SourcesConfig{
				Senate: SenateConfig{
					URL:              DefaultSenateFeedURL,
					DefaultDetailURL: DefaultSenateDetailURL,
					Enabled:          true,
				},
				House: HouseConfig{
					BaseURL:    DefaultHouseBaseURL,
					WeeksBack:  1,
					WeeksAhead: 2,
					Enabled:    true,
				},
			},
			Output: OutputConfig{
				SnapshotPath: "public/meetings.json",
				PrettyPrint:  true,
			},
			Logging: LoggingConfig{Level: "info", Format: "text"},
			HTTP: HTTPConfig{
				UserAgent:    utils.DefaultUserAgent,
				TimeoutSec:   20,
				BufferSizeKb: 4096,
			},
			Crawl: CrawlConfig{Concurrency: 4, Burst: 1},
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        5000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        60,
			},
		},
		History: HistoryConfig{DBPath: "data/history.db"},
		Server:  ServerConfig{ListenAddress: ":8080", Watch: true},
	}
}

// LoadConfig loads configuration from a YAML file over the defaults, then
// applies environment overrides.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Load reads filepath when set, otherwise returns the validated defaults with
// environment overrides.
func Load(filepath string) (*Config, error) {
	if filepath != "" {
		return LoadConfig(filepath)
	}

	cfg := Default()
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv applies environment overrides read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvSnapshotPath); v != "" {
		c.Harvester.Output.SnapshotPath = v
	}

	if v := getenv(EnvLogLevel); v != "" {
		c.Harvester.Logging.Level = v
	}
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return data, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	h := c.Harvester

	if !h.Sources.Senate.Enabled && !h.Sources.House.Enabled {
		return ErrNoEnabledSources
	}

	if h.Sources.Senate.Enabled && !utils.IsValidURL(h.Sources.Senate.URL) {
		return ErrInvalidSenateURL
	}

	if h.Sources.House.Enabled {
		if !utils.IsValidURL(h.Sources.House.BaseURL) {
			return ErrInvalidHouseBaseURL
		}

		if h.Sources.House.WeeksBack < 0 || h.Sources.House.WeeksAhead < 0 {
			return ErrInvalidWeekWindow
		}
	}

	// Validate retry policy
	if h.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if h.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if h.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if h.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if h.HTTP.TimeoutSec < 1 {
		return ErrInvalidHTTPTimeout
	}

	if h.HTTP.BufferSizeKb < 1 {
		return ErrInvalidBufferSize
	}

	if h.Crawl.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if h.Crawl.RatePerSecond < 0 {
		return ErrInvalidRate
	}

	if h.Crawl.RatePerSecond > 0 && h.Crawl.Burst < 1 {
		return ErrInvalidBurst
	}

	if h.Output.SnapshotPath == "" {
		return ErrMissingSnapshotPath
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[h.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if h.Logging.Format != "" && h.Logging.Format != "text" && h.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return ErrMissingHistoryPath
	}

	if c.Server.ListenAddress == "" {
		return ErrMissingListenAddress
	}

	return nil
}

// ServerSnapshotPath returns the snapshot file the API serves.
func (c *Config) ServerSnapshotPath() string {
	if c.Server.SnapshotPath != "" {
		return c.Server.SnapshotPath
	}

	return c.Harvester.Output.SnapshotPath
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// GetTimeout returns the per-request timeout.
func (hc *HTTPConfig) GetTimeout() time.Duration {
	return time.Duration(hc.TimeoutSec) * time.Second
}

// GetBufferSize returns the response body cap in bytes.
func (hc *HTTPConfig) GetBufferSize() int64 {
	return int64(hc.BufferSizeKb) * 1024
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Senate: %t, House: %t, MaxAttempts: %d, Output: %s}",
		c.Harvester.Sources.Senate.Enabled,
		c.Harvester.Sources.House.Enabled,
		c.Harvester.Retry.MaxAttempts,
		c.Harvester.Output.SnapshotPath,
	)
}
