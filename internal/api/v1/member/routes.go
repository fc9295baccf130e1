package member

import (
	"github.com/gin-gonic/gin"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
)

func RegisterRoutes(router *gin.RouterGroup, balanceService *services.BalanceService) {
	balances = balanceService

	member := router.Group("/member")
	member.GET("/me", CurrentMember)
	member.POST("/deposit", Deposit)
	member.GET("/transactions", MyTransactions)
}
