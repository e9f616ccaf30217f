package request

import (
	"github.com/TaiVuViet-153/HR-Portal/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	logger *zap.Logger,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware())
	requests.Use(middleware.ExtractUserID())
	requests.Use(middleware.ContextLogger(logger))
	{
		requests.GET("",
			middleware.RateLimitByUser(3, 10),
			handler.GetAll,
		)

		if redisClient != nil {
			requests.POST("",
				middleware.RateLimitByUser(0.5, 2),
				middleware.Idempotency(redisClient),
				handler.Create,
			)
		} else {
			requests.POST("",
				middleware.RateLimitByUser(0.5, 2),
				handler.Create,
			)
		}

		requests.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			handler.Update,
		)

		requests.DELETE("/:id",
			middleware.RateLimitByUser(0.1, 1),
			handler.Delete,
		)
	}
}
