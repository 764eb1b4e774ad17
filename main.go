package main

import (
	"github.com/wfunc/manhunt/cache"
	"github.com/wfunc/manhunt/config"
	"github.com/wfunc/manhunt/logger"
	"github.com/wfunc/manhunt/persistence"
	"github.com/wfunc/manhunt/server"
)

func main() {
	// Initialize logger
	logger.Init()

	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Log.Fatalf("Failed to load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	store, err := persistence.NewGormPostgreSQL(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	// Initialize Location Cache
	var locations cache.LocationCache
	if cfg.Redis.Address != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to redis: %v", err)
		}
		locations = redisCache
		logger.Log.Info("Redis connection successful.")
	} else {
		locations = cache.NewMemoryCache()
		logger.Log.Warn("No redis address configured, using in-memory location cache.")
	}

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, store, locations)

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
