package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Search  SearchConfig  `mapstructure:"search"`
	Health  HealthConfig  `mapstructure:"health"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	// SearchesPerMinute limits searches per client IP. Zero disables the limit.
	SearchesPerMinute int `mapstructure:"searches_per_minute"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// LLMConfig holds the language model connection settings.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // seconds
	MaxAttempts int     `mapstructure:"max_attempts"`
}

// CatalogConfig holds the OMDb catalog settings.
type CatalogConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	Timeout           int     `mapstructure:"timeout"` // seconds
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	FixturePath       string  `mapstructure:"fixture_path"`
}

// SearchConfig holds the match selection limits.
type SearchConfig struct {
	MaxMatches      int `mapstructure:"max_matches"`
	ResultsPerQuery int `mapstructure:"results_per_query"`
}

// HealthConfig holds the background upstream checks.
type HealthConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

const (
	DefaultLLMBaseURL     = "https://api.groq.com/openai/v1/chat/completions"
	DefaultLLMModel       = "llama-3.3-70b-versatile"
	DefaultCatalogBaseURL = "https://www.omdbapi.com/"
)

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8501,
			SessionTTL:        30 * time.Minute,
			SearchesPerMinute: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		LLM: LLMConfig{
			BaseURL:     DefaultLLMBaseURL,
			Model:       DefaultLLMModel,
			Temperature: 0.7,
			Timeout:     30,
			MaxAttempts: 3,
		},
		Catalog: CatalogConfig{
			BaseURL:           DefaultCatalogBaseURL,
			Timeout:           10,
			RequestsPerSecond: 5,
		},
		Search: SearchConfig{
			MaxMatches:      3,
			ResultsPerQuery: 3,
		},
		Health: HealthConfig{
			CheckInterval: 15 * time.Minute,
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > .env file > config file > defaults
func Load(configPath string) (*Config, error) {
	// A missing .env is normal; variables already set in the process win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.reelfinder")
	}

	v.SetEnvPrefix("REELFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The two secrets are also accepted under their provider names.
	if err := v.BindEnv("llm.api_key", "REELFINDER_LLM_API_KEY", "GROQ_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind llm api key: %w", err)
	}
	if err := v.BindEnv("catalog.api_key", "REELFINDER_CATALOG_API_KEY", "OMDB_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind catalog api key: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("server.searches_per_minute", d.Server.SearchesPerMinute)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_attempts", d.LLM.MaxAttempts)

	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.base_url", d.Catalog.BaseURL)
	v.SetDefault("catalog.timeout", d.Catalog.Timeout)
	v.SetDefault("catalog.requests_per_second", d.Catalog.RequestsPerSecond)
	v.SetDefault("catalog.fixture_path", "")

	v.SetDefault("search.max_matches", d.Search.MaxMatches)
	v.SetDefault("search.results_per_query", d.Search.ResultsPerQuery)

	v.SetDefault("health.check_interval", d.Health.CheckInterval)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
