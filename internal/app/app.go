package app

import (
	"database/sql"

	"go-leave/internal/middleware"
	"go-leave/internal/shared/config"
	"go-leave/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra holds the connections shared by every process.
type Infra struct {
	GormDB *gorm.DB
	SQLDB  *sql.DB
	Redis  *redis.Client
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.SQLDB != nil {
		_ = i.SQLDB.Close()
	}
}

func connect(cfg *config.Config, withRedis bool) (*Infra, error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.Database.Host,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.Port,
		cfg.Database.SSLMode,
		cfg.Database.MaxRetries,
	)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	infra := &Infra{GormDB: gormDB, SQLDB: sqlDB}

	if withRedis {
		rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		infra.Redis = rdb
	}
	return infra, nil
}

func BuildApp(router *gin.Engine, cfg *config.Config) (*Infra, error) {
	logger := zap.L().Named("app")

	infra, err := connect(cfg, true)
	if err != nil {
		return nil, err
	}
	logger.Info("database and redis connections established")

	router.Use(middleware.RequestID())

	if err := registerModules(router, infra, cfg); err != nil {
		infra.Close()
		return nil, err
	}
	return infra, nil
}
