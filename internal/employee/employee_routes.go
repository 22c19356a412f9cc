package employee

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("/options", handler.GetOptions)

		employees.GET("", middleware.RoleMiddleware("HR", "MANAGER"), handler.GetAll)
		employees.GET("/:id", middleware.RoleMiddleware("HR", "MANAGER"), handler.GetByID)
		employees.POST("", middleware.RoleMiddleware("HR"), handler.Create)
		employees.PUT("/:id", middleware.RoleMiddleware("HR"), handler.Update)
		employees.POST("/:id/terminate", middleware.RoleMiddleware("HR"), handler.Terminate)
	}
}
