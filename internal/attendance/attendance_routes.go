package attendance

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware())
	{
		attendances.POST("/check-in", handler.CheckIn)
		attendances.POST("/check-out", handler.CheckOut)
		attendances.GET("/me", handler.GetMine)
		attendances.GET("/summary", middleware.RoleMiddleware("HR", "MANAGER"), handler.Summary)
		attendances.POST("/:id/approve", middleware.RoleMiddleware("HR", "MANAGER"), handler.Approve)
		attendances.POST("/:id/reject", middleware.RoleMiddleware("HR", "MANAGER"), handler.Reject)
	}
}
