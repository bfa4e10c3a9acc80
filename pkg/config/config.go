package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"bilifollow/pkg/pacer"
)

// Config holds all configuration options for the following manager
type Config struct {
	// API client settings
	API APIConfig `yaml:"api" json:"api"`

	// Request pacing policy for batch mutations
	Pacer PacerConfig `yaml:"pacer" json:"pacer"`

	// Steady-state request gate
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Local snapshot storage
	Store StoreConfig `yaml:"store" json:"store"`

	// Batch operation settings
	Batch BatchConfig `yaml:"batch" json:"batch"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds platform client configuration
type APIConfig struct {
	BaseURL        string `yaml:"base_url" json:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent" json:"user_agent"`
	PageSize       int    `yaml:"page_size" json:"page_size"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// PacerConfig holds the backoff policy for the request pacer. Values are in
// seconds so the file format stays readable.
type PacerConfig struct {
	BaseDelaySeconds         float64 `yaml:"base_delay_seconds" json:"base_delay_seconds"`
	JitterSeconds            float64 `yaml:"jitter_seconds" json:"jitter_seconds"`
	MaxDelaySeconds          float64 `yaml:"max_delay_seconds" json:"max_delay_seconds"`
	TransientMaxDelaySeconds float64 `yaml:"transient_max_delay_seconds" json:"transient_max_delay_seconds"`
	MaxConsecutiveFailures   int     `yaml:"max_consecutive_failures" json:"max_consecutive_failures"`
}

// Build converts the section into a pacer policy.
func (p PacerConfig) Build() pacer.Config {
	return pacer.Config{
		BaseDelay:              seconds(p.BaseDelaySeconds),
		Jitter:                 seconds(p.JitterSeconds),
		MaxDelay:               seconds(p.MaxDelaySeconds),
		TransientMaxDelay:      seconds(p.TransientMaxDelaySeconds),
		MaxConsecutiveFailures: p.MaxConsecutiveFailures,
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// RateLimitConfig holds the steady request gate configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// StoreConfig holds local snapshot storage configuration
type StoreConfig struct {
	DataDir      string `yaml:"data_dir" json:"data_dir"`
	BackupOnSync bool   `yaml:"backup_on_sync" json:"backup_on_sync"`
	KeepBackups  int    `yaml:"keep_backups" json:"keep_backups"`
}

// BatchConfig holds batch mutation settings. Test mode caps how many targets
// a batch touches, so a dry run never mutates the whole following list.
type BatchConfig struct {
	TestMode          bool `yaml:"test_mode" json:"test_mode"`
	MaxTestOperations int  `yaml:"max_test_operations" json:"max_test_operations"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "https://api.bilibili.com",
			TimeoutSeconds: 30,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			PageSize:       50,
		},
		Pacer: PacerConfig{
			BaseDelaySeconds:         1.0,
			JitterSeconds:            0.5,
			MaxDelaySeconds:          60.0,
			TransientMaxDelaySeconds: 15.0,
			MaxConsecutiveFailures:   5,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
		},
		Store: StoreConfig{
			DataDir:      defaultDataDir(),
			BackupOnSync: true,
			KeepBackups:  5,
		},
		Batch: BatchConfig{
			TestMode:          false,
			MaxTestOperations: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".local", "share", "bilifollow")
}

// LoadFromEnv loads configuration from environment variables. A .env file in
// the working directory is honored when present.
func (c *Config) LoadFromEnv() error {
	// Best effort; a missing .env file is not an error
	_ = godotenv.Load()

	if baseURL := os.Getenv("BILIFOLLOW_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if userAgent := os.Getenv("BILIFOLLOW_USER_AGENT"); userAgent != "" {
		c.API.UserAgent = userAgent
	}
	if rpm := os.Getenv("BILIFOLLOW_REQUESTS_PER_MINUTE"); rpm != "" {
		if val, err := strconv.Atoi(rpm); err == nil && val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if base := os.Getenv("BILIFOLLOW_BASE_DELAY_SECONDS"); base != "" {
		if val, err := strconv.ParseFloat(base, 64); err == nil && val >= 0 {
			c.Pacer.BaseDelaySeconds = val
		}
	}
	if dataDir := os.Getenv("BILIFOLLOW_DATA_DIR"); dataDir != "" {
		c.Store.DataDir = dataDir
	}
	if testMode := os.Getenv("BILIFOLLOW_TEST_MODE"); testMode != "" {
		c.Batch.TestMode = strings.ToLower(testMode) == "true"
	}
	if logLevel := os.Getenv("BILIFOLLOW_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile looks for a config file in standard locations
func (c *Config) findConfigFile() string {
	candidates := []string{
		"bilifollow.yaml",
		"bilifollow.yml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "bilifollow", "config.yaml"),
			filepath.Join(home, ".bilifollow.yaml"),
		)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ApplyFlags overrides configuration values with command line flags
func (c *Config) ApplyFlags(flags map[string]interface{}) {
	for key, value := range flags {
		switch key {
		case "requests-per-minute":
			if v, ok := value.(int); ok && v > 0 {
				c.RateLimit.RequestsPerMinute = v
			}
		case "base-delay":
			if v, ok := value.(float64); ok && v >= 0 {
				c.Pacer.BaseDelaySeconds = v
			}
		case "max-failures":
			if v, ok := value.(int); ok && v > 0 {
				c.Pacer.MaxConsecutiveFailures = v
			}
		case "data-dir":
			if v, ok := value.(string); ok && v != "" {
				c.Store.DataDir = v
			}
		case "test-mode":
			if v, ok := value.(bool); ok {
				c.Batch.TestMode = v
			}
		case "log-level":
			if v, ok := value.(string); ok && v != "" {
				c.Logging.Level = v
			}
		case "log-file":
			if v, ok := value.(string); ok && v != "" {
				c.Logging.File = v
			}
		}
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		return errors.New("api.timeout_seconds must be positive")
	}
	if c.API.PageSize < 1 || c.API.PageSize > 50 {
		return errors.New("api.page_size must be between 1 and 50")
	}
	if c.Pacer.BaseDelaySeconds < 0 {
		return errors.New("pacer.base_delay_seconds must not be negative")
	}
	if c.Pacer.JitterSeconds < 0 {
		return errors.New("pacer.jitter_seconds must not be negative")
	}
	if c.Pacer.MaxDelaySeconds < c.Pacer.BaseDelaySeconds {
		return errors.New("pacer.max_delay_seconds must be at least base_delay_seconds")
	}
	if c.Pacer.MaxConsecutiveFailures < 1 {
		return errors.New("pacer.max_consecutive_failures must be at least 1")
	}
	if c.RateLimit.RequestsPerMinute < 1 {
		return errors.New("rate_limit.requests_per_minute must be at least 1")
	}
	if c.Store.KeepBackups < 0 {
		return errors.New("store.keep_backups must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not valid", c.Logging.Level)
	}
	return nil
}

// Load builds the effective configuration: defaults, then the config file,
// then environment variables, then command line flags.
func Load(path string, flags map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteExample writes a fully commented example configuration file
func WriteExample(path string) error {
	example := `# bilifollow configuration

api:
  base_url: https://api.bilibili.com
  timeout_seconds: 30
  # Sent with every request; keep it looking like a real browser
  user_agent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
  # Followings page size, capped at 50 by the platform
  page_size: 50

pacer:
  base_delay_seconds: 1.0
  jitter_seconds: 0.5
  max_delay_seconds: 60.0
  transient_max_delay_seconds: 15.0
  max_consecutive_failures: 5

rate_limit:
  requests_per_minute: 30

store:
  # data_dir: /home/user/.local/share/bilifollow
  backup_on_sync: true
  keep_backups: 5

batch:
  # When true, batch mutations stop after max_test_operations targets
  test_mode: false
  max_test_operations: 5

logging:
  level: info
  # file: bilifollow.log
`
	return os.WriteFile(path, []byte(example), 0644)
}
