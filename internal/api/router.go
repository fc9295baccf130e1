package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ekodaeng/CTGOLDMobile-sub000/config"
	adminTransaction "github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/admin/transaction"
	adminUser "github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/admin/user"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/auth"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/member"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/network"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/wallet"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/database"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/middleware"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	referral := services.NewReferralService(database.DB, services.ReferralConfig{
		BonusSchedule: cfg.BonusSchedule,
		MaxDepth:      cfg.ReferralMaxDepth,
		CodePrefix:    cfg.ReferralCodePrefix,
		CodeLength:    cfg.ReferralCodeLength,
		CodeRetries:   cfg.ReferralCodeRetries,
		LedgerSecret:  cfg.LedgerSecret,
	})
	balances := services.NewBalanceService(referral, cfg.ActivationThreshold, cfg.LedgerSecret)

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"}, // Allow frontend origin
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum age for preflight requests
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1, referral)
		wallet.RegisterRoutes(v1, referral)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			member.RegisterRoutes(authorized, balances)
			network.RegisterRoutes(authorized, referral)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminUser.RegisterRoutes(admin, referral, balances)
			adminTransaction.RegisterRoutes(admin)
		}
	}

	return router, nil
}
