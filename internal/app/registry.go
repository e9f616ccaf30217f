package app

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/TaiVuViet-153/HR-Portal/internal/balance"
	"github.com/TaiVuViet-153/HR-Portal/internal/messaging/kafka"
	"github.com/TaiVuViet-153/HR-Portal/internal/request"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/cache"
	"github.com/TaiVuViet-153/HR-Portal/internal/user"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	userRepo := user.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	requestRepo := request.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Shared infrastructure ---
	appCache := cache.New(rdb, logger)

	// --- Services ---
	balanceService := balance.NewService(db, balanceRepo, userRepo, appCache, logger)
	requestService := request.NewService(db, requestRepo, balanceRepo, outboxRepo, appCache, logger)

	// --- Handlers ---
	balanceHandler := balance.NewHandler(balanceService, logger)
	requestHandler := request.NewHandlerWithRedis(requestService, rdb, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		balance.RegisterRoutes(api, balanceHandler, logger)
		request.RegisterRoutes(api, requestHandler, logger, rdb)
	}

	return nil
}
