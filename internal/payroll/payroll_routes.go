package payroll

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	salaries := r.Group("/salaries")
	salaries.Use(middleware.AuthMiddleware())
	{
		salaries.GET("/me", handler.GetMine)

		salaries.GET("", middleware.RoleMiddleware("HR"), handler.GetByPeriod)
		salaries.GET("/:id", middleware.RoleMiddleware("HR"), handler.GetByID)
		if redisClient != nil {
			salaries.POST(
				"/run",
				middleware.Idempotency(redisClient),
				middleware.RoleMiddleware("HR"),
				handler.Run,
			)
		} else {
			salaries.POST("/run", middleware.RoleMiddleware("HR"), handler.Run)
		}
		salaries.POST("/:id/approve", middleware.RoleMiddleware("HR"), handler.Approve)
		salaries.POST("/:id/mark-paid", middleware.RoleMiddleware("HR"), handler.MarkPaid)
	}
}
