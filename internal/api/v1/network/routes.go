package network

import (
	"github.com/gin-gonic/gin"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
)

func RegisterRoutes(router *gin.RouterGroup, referral *services.ReferralService) {
	engine = referral

	network := router.Group("/network")
	network.GET("/upline", Upline)
	network.GET("/downline", Downline)
}
