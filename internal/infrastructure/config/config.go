// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // session.timezone must resolve without system zoneinfo

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	AI         AIConfig         `mapstructure:"ai"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Session    SessionConfig    `mapstructure:"session"`
	Shopping   ShoppingConfig   `mapstructure:"shopping"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`

	v *viper.Viper
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxUploadBytes    int64         `mapstructure:"max_upload_bytes"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS        bool          `mapstructure:"enable_cors"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	EnableCompression bool          `mapstructure:"enable_compression"`
	EnableH2C         bool          `mapstructure:"enable_h2c"`
}

// AuthConfig contains session token configuration
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
	Issuer        string        `mapstructure:"issuer"`
}

// AIConfig contains AI gateway and provider configuration
type AIConfig struct {
	Provider    string         `mapstructure:"provider"`
	Timeout     time.Duration  `mapstructure:"timeout"`
	MaxAttempts int            `mapstructure:"max_attempts"`
	BaseDelay   time.Duration  `mapstructure:"base_delay"`
	MaxDelay    time.Duration  `mapstructure:"max_delay"`
	CacheTTL    time.Duration  `mapstructure:"cache_ttl"`
	Gemini      ProviderConfig `mapstructure:"gemini"`
	OpenAI      ProviderConfig `mapstructure:"openai"`
	Ollama      ProviderConfig `mapstructure:"ollama"`
}

// ProviderConfig configures one model backend
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// OCRConfig configures the receipt OCR service
type OCRConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig selects the AI response cache backend: none, memory or redis
type CacheConfig struct {
	Driver          string        `mapstructure:"driver"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SessionConfig contains session lifetime and expiry watch settings
type SessionConfig struct {
	IdleTTL             time.Duration `mapstructure:"idle_ttl"`
	SweepInterval       time.Duration `mapstructure:"sweep_interval"`
	ExpiryThresholdDays int           `mapstructure:"expiry_threshold_days"`
	Timezone            string        `mapstructure:"timezone"`
}

// Location loads the configured time zone
func (c SessionConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// ShoppingConfig configures purchase links
type ShoppingConfig struct {
	SearchURL string `mapstructure:"search_url"`
}

// RateLimitConfig contains per-session AI rate limiting configuration
type RateLimitConfig struct {
	Enable          bool          `mapstructure:"enable"`
	RPS             float64       `mapstructure:"rps"`
	Burst           int           `mapstructure:"burst"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics bool    `mapstructure:"enable_metrics"`
	EnableTracing bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint  string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure  bool    `mapstructure:"otlp_insecure"`
	SamplingRate  float64 `mapstructure:"sampling_rate"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/pantrypairing")
	}

	// Enable environment variable override
	v.SetEnvPrefix("PANTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	config, err := decode(v)
	if err != nil {
		return nil, err
	}
	config.v = v
	return config, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Watch reloads the config file on change and passes each valid new
// configuration to onChange. Invalid edits are logged and ignored.
func (c *Config) Watch(logger *zap.Logger, onChange func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		logger.Debug("No config file in use, skipping watch")
		return
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(c.v)
		if err != nil {
			logger.Warn("Ignoring invalid configuration change",
				zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("Configuration reloaded", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		onChange(next)
	})
	c.v.WatchConfig()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Pantry Pairing")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "3m")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "3m")
	v.SetDefault("server.max_header_bytes", 1<<20) // 1MB
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.enable_compression", true)
	v.SetDefault("server.enable_h2c", true)

	// Auth defaults
	v.SetDefault("auth.jwt_expiration", "24h")
	v.SetDefault("auth.issuer", "pantrypairing")

	// AI defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.max_attempts", 3)
	v.SetDefault("ai.base_delay", "1s")
	v.SetDefault("ai.max_delay", "30s")
	v.SetDefault("ai.cache_ttl", "30m")
	v.SetDefault("ai.gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash-preview-09-2025")
	v.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.ollama.base_url", "http://localhost:11434")
	v.SetDefault("ai.ollama.model", "llama3.2-vision")

	// OCR defaults
	v.SetDefault("ocr.enabled", false)
	v.SetDefault("ocr.base_url", "http://localhost:8000")
	v.SetDefault("ocr.timeout", "30s")

	// Cache defaults
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.cleanup_interval", "5m")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "pantry:")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	// Session defaults
	v.SetDefault("session.idle_ttl", "2h")
	v.SetDefault("session.sweep_interval", "1m")
	v.SetDefault("session.expiry_threshold_days", 3)
	v.SetDefault("session.timezone", "Asia/Seoul")

	v.SetDefault("shopping.search_url", "https://www.coupang.com/np/search?rocketAll=false")

	// Rate limit defaults
	v.SetDefault("rate_limit.enable", true)
	v.SetDefault("rate_limit.rps", 1.0)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("rate_limit.cleanup_interval", "10m")

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.otlp_insecure", true)
	v.SetDefault("monitoring.sampling_rate", 0.1)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate required fields
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Auth.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}

	// Validate port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.AI.Provider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("ai.provider must be one of gemini, openai, ollama")
	}
	if c.AI.MaxAttempts < 1 {
		return fmt.Errorf("ai.max_attempts must be at least 1")
	}
	if c.AI.BaseDelay < 0 {
		return fmt.Errorf("ai.base_delay must not be negative")
	}

	switch c.Cache.Driver {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("cache.driver must be one of none, memory, redis")
	}

	if c.OCR.Enabled && c.OCR.BaseURL == "" {
		return fmt.Errorf("ocr.base_url is required when ocr is enabled")
	}

	if c.Session.ExpiryThresholdDays < 0 {
		return fmt.Errorf("session.expiry_threshold_days must not be negative")
	}
	if _, err := c.Session.Location(); err != nil {
		return fmt.Errorf("session.timezone: %w", err)
	}

	if c.RateLimit.Enable && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("rate_limit.rps and rate_limit.burst must be positive")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// ActiveProvider returns the settings of the selected model backend
func (c *Config) ActiveProvider() ProviderConfig {
	switch c.AI.Provider {
	case "openai":
		return c.AI.OpenAI
	case "ollama":
		return c.AI.Ollama
	default:
		return c.AI.Gemini
	}
}
