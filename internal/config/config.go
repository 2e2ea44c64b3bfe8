package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the complete configuration for the guardian server
type ServerConfig struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`

	Listen     ListenConfig     `mapstructure:"listen"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Verifier   VerifierConfig   `mapstructure:"verifier"`
	Escalation EscalationConfig `mapstructure:"escalation"`
}

type ListenConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type StorageConfig struct {
	// Type selects the backend: "memory" or "redis"
	Type     string `mapstructure:"type"`
	RedisURL string `mapstructure:"redis_url"`
}

type AuthConfig struct {
	APIKey       string `mapstructure:"api_key"`
	AdminKeyHash string `mapstructure:"admin_key_hash"`
}

type VerifierConfig struct {
	HealthRegenRate   float64 `mapstructure:"health_regen_rate"`
	MaxCoinsPerMinute float64 `mapstructure:"max_coins_per_minute"`
	MaxXPPerMinute    float64 `mapstructure:"max_xp_per_minute"`
	DefaultMaxHealth  float64 `mapstructure:"default_max_health"`
}

type EscalationConfig struct {
	ViolationThreshold int           `mapstructure:"violation_threshold"`
	BanDuration        time.Duration `mapstructure:"ban_duration"`
}

// Load loads configuration from file and environment variables
func Load(path string) (*ServerConfig, error) {
	v := viper.New()

	// Default values
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen.host", "")
	v.SetDefault("listen.port", 8080)
	v.SetDefault("storage.type", "memory")
	v.SetDefault("verifier.health_regen_rate", 10.0)
	v.SetDefault("verifier.max_coins_per_minute", 1000.0)
	v.SetDefault("verifier.max_xp_per_minute", 500.0)
	v.SetDefault("verifier.default_max_health", 100.0)
	v.SetDefault("escalation.violation_threshold", 3)
	v.SetDefault("escalation.ban_duration", 24*time.Hour)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// Bind environment variables explicitly for nested structs
	v.BindEnv("environment", "ENVIRONMENT")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("listen.host", "LISTEN_HOST")
	v.BindEnv("listen.port", "LISTEN_PORT")
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.redis_url", "STORAGE_REDIS_URL")
	v.BindEnv("auth.api_key", "AUTH_API_KEY")
	v.BindEnv("auth.admin_key_hash", "AUTH_ADMIN_KEY_HASH")
	v.BindEnv("verifier.health_regen_rate", "VERIFIER_HEALTH_REGEN_RATE")
	v.BindEnv("verifier.max_coins_per_minute", "VERIFIER_MAX_COINS_PER_MINUTE")
	v.BindEnv("verifier.max_xp_per_minute", "VERIFIER_MAX_XP_PER_MINUTE")
	v.BindEnv("escalation.violation_threshold", "ESCALATION_VIOLATION_THRESHOLD")
	v.BindEnv("escalation.ban_duration", "ESCALATION_BAN_DURATION")

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	switch c.Storage.Type {
	case "memory":
	case "redis":
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required when storage.type is redis")
		}
	default:
		return errors.New("storage.type must be 'memory' or 'redis'")
	}

	if c.Listen.Port <= 0 || c.Listen.Port > 65535 {
		return errors.New("listen.port must be a valid port")
	}
	if c.Escalation.ViolationThreshold <= 0 {
		return errors.New("escalation.violation_threshold must be positive")
	}
	if c.Verifier.MaxCoinsPerMinute < 0 || c.Verifier.MaxXPPerMinute < 0 || c.Verifier.HealthRegenRate < 0 {
		return errors.New("verifier bounds must not be negative")
	}
	return nil
}
