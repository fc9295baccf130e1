package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/middleware"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
)

func RegisterRoutes(router *gin.RouterGroup, referral *services.ReferralService) {
	engine = referral

	auth := router.Group("/auth")
	auth.POST("/register", Register)
	auth.POST("/login", Login)
	auth.POST("/logout", middleware.AuthMiddleware(), Logout)
}
