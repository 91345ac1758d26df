package setup

import (
	"context"
	"log"

	"github.com/cyberbun/cyberbun/internal/database"
	"github.com/cyberbun/cyberbun/internal/redis"
	"github.com/cyberbun/cyberbun/internal/setup/config"
	"go.uber.org/zap"
)

// App bundles all core dependencies needed by the application.
// Each field represents a subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config  // Application configuration
	Logger       *zap.Logger     // Main application logger
	DBLogger     *zap.Logger     // Database-specific logger
	DB           database.Client // Database connection pool
	RedisManager *redis.Manager  // Redis connection manager
	LogDir       string          // Base directory for this service's logs
	pprofServer  *pprofServer    // Debug HTTP server for pprof
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, logDir string) (*App, error) {
	// Load app configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logger, dbLogger, err := GetLoggers(logDir, cfg.Common.Debug.LogLevel, cfg.Common.Debug.MaxLogsToKeep)
	if err != nil {
		return nil, err
	}

	// Redis manager provides connection pools for the caching subsystems
	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	// Initialize database connection and run any pending migrations
	db, err := database.NewConnection(ctx, &cfg.Common.PostgreSQL, dbLogger, true)
	if err != nil {
		return nil, err
	}

	// Start pprof server if enabled
	var pprofSrv *pprofServer

	if cfg.Common.Debug.EnablePprof {
		srv, err := startPprofServer(cfg.Common.Debug.PprofPort, logger)
		if err != nil {
			logger.Error("Failed to start pprof server", zap.Error(err))
		} else {
			pprofSrv = srv

			logger.Warn("pprof debugging endpoint enabled - this should not be used in production!")
		}
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger,
		DB:           db,
		RedisManager: redisManager,
		LogDir:       logDir,
		pprofServer:  pprofSrv,
	}, nil
}

// Cleanup releases all resources acquired during initialization.
func (a *App) Cleanup(ctx context.Context) {
	if a.pprofServer != nil {
		if err := a.pprofServer.stop(ctx); err != nil {
			log.Printf("Failed to stop pprof server: %v", err)
		}
	}

	a.RedisManager.Close()

	if err := a.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	if err := a.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := a.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}
}
