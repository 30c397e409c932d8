package app

import (
	"fmt"

	"github.com/MrSnakeDoc/stamp/internal/config"
	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/store"
	"github.com/MrSnakeDoc/stamp/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/stamp/internal/store/redis"
	"github.com/MrSnakeDoc/stamp/internal/store/sqlite"
)

// OpenGateway connects the persistence backend selected by STAMP_STORE_BACKEND.
func OpenGateway(cfg *config.Config, log logger.Logger) (store.Gateway, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		s, err := redisstore.Connect(redisstore.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis initialized successfully")
		return s, nil

	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		log.Info("SQLite initialized successfully", logger.String("path", cfg.SQLitePath))
		return s, nil

	case config.BackendMemory:
		log.Warn("using in-memory store, marks are lost on restart")
		return memory.NewStore(), nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
