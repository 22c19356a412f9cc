package auth

import (
	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitByIP(0.5, 5), handler.Login)
		auth.POST("/refresh", handler.RefreshToken)
		auth.POST("/logout", handler.Logout)
		auth.GET("/me", middleware.AuthMiddleware(), handler.Me)

		// Registration stays HR-gated; this is an internal system, not
		// public signup.
		auth.POST("/register",
			middleware.AuthMiddleware(),
			middleware.RoleMiddleware("HR"),
			handler.Register,
		)
	}
}
