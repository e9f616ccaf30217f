package app

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TaiVuViet-153/HR-Portal/internal/middleware"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/connection"
)

// BuildApp connects the infrastructure and mounts every module's routes
// on the router.
func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(20, 40))

	if err := registerModules(router, db, gormDB, redisClient, logger); err != nil {
		return err
	}

	logger.Info("application wired",
		zap.String("db_host", os.Getenv("DB_HOST")),
		zap.String("redis_addr", os.Getenv("REDIS_ADDR")),
	)

	return nil
}
