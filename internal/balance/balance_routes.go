package balance

import (
	"github.com/TaiVuViet-153/HR-Portal/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, logger *zap.Logger) {
	balances := r.Group("/leave-balances")
	balances.Use(middleware.AuthMiddleware())
	balances.Use(middleware.ExtractUserID())
	balances.Use(middleware.ContextLogger(logger))
	{
		balances.GET("",
			middleware.RateLimitByUser(3, 10),
			handler.GetAll,
		)

		// Balance mutations are an HR back-office concern.
		balances.POST("",
			middleware.RoleMiddleware("hr", "admin"),
			middleware.RateLimitByUser(0.5, 2),
			handler.Create,
		)

		balances.PUT("/:userId/:type/:year",
			middleware.RoleMiddleware("hr", "admin"),
			middleware.RateLimitByUser(0.5, 2),
			handler.Update,
		)

		balances.DELETE("/:userId/:type/:year",
			middleware.RoleMiddleware("hr", "admin"),
			middleware.RateLimitByUser(0.1, 1),
			handler.Delete,
		)
	}
}
