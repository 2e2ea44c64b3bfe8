package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/lostbeltno7/GameGuardian/internal/config"
	"github.com/lostbeltno7/GameGuardian/internal/dependencies/clock"
	"github.com/lostbeltno7/GameGuardian/internal/dependencies/random"
	"github.com/lostbeltno7/GameGuardian/internal/services/auth"
	"github.com/lostbeltno7/GameGuardian/internal/services/escalate"
	"github.com/lostbeltno7/GameGuardian/internal/services/verify"
	"github.com/lostbeltno7/GameGuardian/internal/storage"
	"github.com/lostbeltno7/GameGuardian/internal/storage/memory"
	redisstorage "github.com/lostbeltno7/GameGuardian/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Verifier    *verify.Verifier
	Escalator   *escalate.Service
	AuthService *auth.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Bounds holds value-verification rates (zero value uses defaults)
	Bounds verify.Bounds
	// Escalation holds threshold/ban settings (zero value uses defaults)
	Escalation escalate.Config
	// Auth holds API/admin key settings
	Auth auth.Config
}

// FromServerConfig builds a factory Config from a loaded server config
func FromServerConfig(cfg *config.ServerConfig, logger *slog.Logger) Config {
	fc := Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		Bounds: verify.Bounds{
			HealthRegenRate:   cfg.Verifier.HealthRegenRate,
			MaxCoinsPerMinute: cfg.Verifier.MaxCoinsPerMinute,
			MaxXPPerMinute:    cfg.Verifier.MaxXPPerMinute,
			DefaultMaxHealth:  cfg.Verifier.DefaultMaxHealth,
		},
		Escalation: escalate.Config{
			ViolationThreshold: cfg.Escalation.ViolationThreshold,
			BanDuration:        cfg.Escalation.BanDuration,
		},
		Auth: auth.Config{
			APIKey:       cfg.Auth.APIKey,
			AdminKeyHash: cfg.Auth.AdminKeyHash,
		},
	}
	if cfg.Storage.Type == StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	if cfg.Bounds == (verify.Bounds{}) {
		cfg.Bounds = verify.DefaultBounds()
	}

	verifier := verify.New(cfg.Bounds, clk)
	escalator := escalate.New(store, clk, cfg.Escalation, logger)
	authService := auth.New(cfg.Auth, rnd)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Verifier:    verifier,
		Escalator:   escalator,
		AuthService: authService,
	}
}
