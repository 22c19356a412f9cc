package leave

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("", handler.Create)
		leaves.GET("/me", handler.GetMine)
		leaves.GET("/me/balances", handler.GetMyBalances)
		leaves.POST("/:id/cancel", handler.Cancel)

		leaves.GET("", middleware.RoleMiddleware("HR", "MANAGER"), handler.GetAll)
		leaves.GET("/:id", middleware.RoleMiddleware("HR", "MANAGER"), handler.GetByID)
		leaves.POST("/:id/approve", middleware.RoleMiddleware("HR", "MANAGER"), handler.Approve)
		leaves.POST("/:id/reject", middleware.RoleMiddleware("HR", "MANAGER"), handler.Reject)
		leaves.DELETE("/:id", middleware.RoleMiddleware("HR"), handler.Delete)
	}

	leaveTypes := r.Group("/leave-types")
	leaveTypes.Use(middleware.AuthMiddleware())
	{
		leaveTypes.GET("", handler.GetTypes)
		leaveTypes.POST("", middleware.RoleMiddleware("HR"), handler.CreateType)
	}
}
