package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ResultsMode selects how the results panel reads the backend
type ResultsMode string

const (
	ResultsModeLatest ResultsMode = "latest" // single most recent result
	ResultsModeList   ResultsMode = "list"   // every result the backend holds
)

// SubmitMode selects which endpoint a submission goes through
type SubmitMode string

const (
	SubmitModeStartScan SubmitMode = "start-scan" // check-model, start-scan, then poll
	SubmitModeDirect    SubmitMode = "direct"     // single synchronous POST /scan
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Polling PollingConfig `mapstructure:"polling"`
	UI      UIConfig      `mapstructure:"ui"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds scraper backend configuration
type ServerConfig struct {
	URL     string        `mapstructure:"url"`     // Backend base URL
	Timeout time.Duration `mapstructure:"timeout"` // Per-request timeout
}

// PollingConfig holds re-fetch intervals
type PollingConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	ResultsMode  ResultsMode   `mapstructure:"results_mode"`
	SubmitMode   SubmitMode    `mapstructure:"submit_mode"`
	DismissAfter time.Duration `mapstructure:"dismiss_after"` // auto-dismiss for duplicate/not-found notices
}

// HistoryConfig holds local scan history configuration
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Limit   int  `mapstructure:"limit"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "",
			Timeout: 15 * time.Second,
		},
		Polling: PollingConfig{
			Interval: 3 * time.Second,
		},
		UI: UIConfig{
			ResultsMode:  ResultsModeLatest,
			SubmitMode:   SubmitModeStartScan,
			DismissAfter: 5 * time.Second,
		},
		History: HistoryConfig{
			Enabled: true,
			Limit:   200,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "lorascan", "lorascan.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "lorascan", "lorascan.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "lorascan")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "lorascan")
	}
}

// configure registers defaults, search paths and env overrides on v
func configure(v *viper.Viper, cfg *Config, paths ...string) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Defaults must be registered for AutomaticEnv to see nested keys
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.timeout", cfg.Server.Timeout)
	v.SetDefault("polling.interval", cfg.Polling.Interval)
	v.SetDefault("ui.results_mode", string(cfg.UI.ResultsMode))
	v.SetDefault("ui.submit_mode", string(cfg.UI.SubmitMode))
	v.SetDefault("ui.dismiss_after", cfg.UI.DismissAfter)
	v.SetDefault("history.enabled", cfg.History.Enabled)
	v.SetDefault("history.limit", cfg.History.Limit)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)

	// Environment variable overrides, e.g. LORASCAN_SERVER_URL
	v.SetEnvPrefix("LORASCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.GetViper(), defaultConfigPath(), ".")
}

func loadConfig(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()
	configure(v, cfg, paths...)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the UI cannot work with
func (c *Config) Validate() error {
	if c.Polling.Interval <= 0 {
		return fmt.Errorf("polling.interval must be positive, got %s", c.Polling.Interval)
	}
	switch c.UI.ResultsMode {
	case ResultsModeLatest, ResultsModeList:
	default:
		return fmt.Errorf("ui.results_mode must be %q or %q, got %q", ResultsModeLatest, ResultsModeList, c.UI.ResultsMode)
	}
	switch c.UI.SubmitMode {
	case SubmitModeStartScan, SubmitModeDirect:
	default:
		return fmt.Errorf("ui.submit_mode must be %q or %q, got %q", SubmitModeStartScan, SubmitModeDirect, c.UI.SubmitMode)
	}
	return nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	return saveConfig(viper.GetViper(), cfg, defaultConfigPath())
}

func saveConfig(v *viper.Viper, cfg *Config, configPath string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v.Set("server.url", cfg.Server.URL)
	v.Set("server.timeout", cfg.Server.Timeout.String())
	v.Set("polling.interval", cfg.Polling.Interval.String())

	v.Set("ui.results_mode", string(cfg.UI.ResultsMode))
	v.Set("ui.submit_mode", string(cfg.UI.SubmitMode))
	v.Set("ui.dismiss_after", cfg.UI.DismissAfter.String())

	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.limit", cfg.History.Limit)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the backend URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "lorascan", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "lorascan", "cache")
	}
}

// ClearCache removes all cached data, including scan history
func ClearCache() error {
	cachePath := defaultCachePath()
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCachePath returns the cache directory path
func GetCachePath() string {
	return defaultCachePath()
}
