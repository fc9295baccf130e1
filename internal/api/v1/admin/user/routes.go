package user

import (
	"github.com/gin-gonic/gin"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
)

func RegisterRoutes(router *gin.RouterGroup, referral *services.ReferralService, balanceService *services.BalanceService) {
	engine = referral
	balances = balanceService

	router.GET("/users", ListUsers)
	router.PATCH("/users/:id", UpdateUser)
	router.POST("/users/:id/credit", CreditUser)
	router.POST("/users/:id/distribute", DistributeBonus)
}
