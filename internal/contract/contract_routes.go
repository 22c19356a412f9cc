package contract

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	contracts := r.Group("/contracts")
	contracts.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware("HR"))
	{
		contracts.POST("", handler.Create)
		contracts.GET("/:id", handler.GetByID)
		contracts.GET("/employee/:employeeId", handler.GetByEmployee)
		contracts.POST("/:id/activate", handler.Activate)
	}
}
