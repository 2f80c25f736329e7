package app

import (
	"context"
	"database/sql"

	"github.com/Techtuskers-redefined/shopgenie/internal/config"
	"github.com/Techtuskers-redefined/shopgenie/internal/db"
	"github.com/Techtuskers-redefined/shopgenie/internal/logger"
	"github.com/Techtuskers-redefined/shopgenie/internal/redis"

	_ "github.com/lib/pq"
)

type Infra struct {
	DB    *sql.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, sqlDB); err != nil {
		return nil, err
	}

	log.Info("database ready")

	infra := &Infra{DB: sqlDB}

	// Redis backs refresh-token revocation only; without it the
	// service runs with stateless refresh tokens.
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return nil, err
		}
		infra.Redis = redisClient
		log.Info("redis ready")
	} else {
		log.Warn("redis not configured, refresh token revocation disabled")
	}

	return infra, nil
}
