package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/pokeslot/slotserver/internal/dependencies/clock"
	"github.com/pokeslot/slotserver/internal/services/auth"
	"github.com/pokeslot/slotserver/internal/services/leaderboard"
	"github.com/pokeslot/slotserver/internal/services/stats"
	"github.com/pokeslot/slotserver/internal/storage"
	"github.com/pokeslot/slotserver/internal/storage/memory"
	redisstorage "github.com/pokeslot/slotserver/internal/storage/redis"
	sqlitestorage "github.com/pokeslot/slotserver/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeSQLite = "sqlite"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	AuthService          *auth.Service
	StatsUpdater         *stats.Updater
	LeaderboardProjector *leaderboard.Projector
}

// Config holds configuration for the application factory
type Config struct {
	// StorageType selects the storage backend ("memory", "sqlite" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// DatabasePath is the SQLite database file (required if StorageType is "sqlite")
	DatabasePath string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := NewStorage(cfg)
	if err != nil {
		return nil, err
	}

	clk := clock.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clk, authCfg, logger), nil
}

// NewStorage creates only the storage backend for the given config
func NewStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeSQLite:
		if cfg.DatabasePath == "" {
			return nil, errors.New("DatabasePath required when StorageType is sqlite")
		}
		return sqlitestorage.New(cfg.DatabasePath)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'sqlite' or 'redis'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, authCfg auth.Config, logger *slog.Logger) *App {
	authService := auth.New(store, clk, authCfg, logger)
	statsUpdater := stats.New(store, authService, clk, logger)
	leaderboardProjector := leaderboard.New(store, logger)

	return &App{
		Storage:              store,
		Clock:                clk,
		AuthService:          authService,
		StatsUpdater:         statsUpdater,
		LeaderboardProjector: leaderboardProjector,
	}
}
