package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/pokeslot/slotserver/internal/api"
	"github.com/pokeslot/slotserver/internal/factory"
	redisstorage "github.com/pokeslot/slotserver/internal/storage/redis"
)

const (
	sessionSweepInterval = time.Hour
	defaultDatabasePath  = "slot_machine.db"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg, err := configFromEnv(os.Getenv)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg.Logger = logger

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Storage.Close()

	// Create router
	router := api.NewRouter(api.RouterConfig{
		Logger:               logger,
		AuthService:          app.AuthService,
		StatsUpdater:         app.StatsUpdater,
		LeaderboardProjector: app.LeaderboardProjector,
		StaticDir:            staticDir(logger),
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Sweep expired sessions in the background
	go func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := app.AuthService.CleanExpiredSessions(ctx); err != nil {
					logger.Warn("session sweep failed", slog.String("error", err.Error()))
				}
			}
		}
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	if os.Getenv("OPEN_BROWSER") == "1" {
		openBrowser(logger, "http://localhost:"+strconv.Itoa(serverConfig.Port))
	}

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// configFromEnv builds the factory config from environment variables. The
// backend defaults to sqlite with the default database file so a plain run
// persists data, matching what the maintenance CLI operates on.
func configFromEnv(getenv func(string) string) (factory.Config, error) {
	cfg := factory.Config{
		StorageType:  getenv("STORAGE_TYPE"),
		DatabasePath: getenv("DATABASE_PATH"),
	}
	if cfg.StorageType == "" {
		cfg.StorageType = factory.StorageTypeSQLite
	}
	if cfg.StorageType == factory.StorageTypeSQLite && cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := getenv("REDIS_URL")
		if redisURL == "" {
			return factory.Config{}, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	return cfg, nil
}

// staticDir resolves the directory of frontend assets, if any
func staticDir(logger *slog.Logger) string {
	dir := os.Getenv("STATIC_DIR")
	if dir == "" {
		return ""
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Warn("static dir not found, serving API only", slog.String("dir", dir))
		return ""
	}
	return dir
}

// openBrowser launches the default browser for local development
func openBrowser(logger *slog.Logger, url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		logger.Warn("could not open browser", slog.String("error", err.Error()))
	}
}
