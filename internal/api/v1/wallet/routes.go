package wallet

import (
	"github.com/gin-gonic/gin"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
)

func RegisterRoutes(router *gin.RouterGroup, referral *services.ReferralService) {
	engine = referral

	wallet := router.Group("/wallet")
	wallet.POST("/connect", Connect)
}
