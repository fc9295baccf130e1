package main

import (
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/ekodaeng/CTGOLDMobile-sub000/config"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/database"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
	"github.com/ekodaeng/CTGOLDMobile-sub000/pkg/logger"
)

// @title CTGOLD Membership API
// @version 1.0
// @description Token-gated membership portal with a referral bonus network.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	router, err := api.NewRouter()
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	// Migrate the schema
	err = database.DB.AutoMigrate(&models.User{}, &models.Transaction{}, &models.Referral{})
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	initAdminUser()

	if err := router.Run(":8080"); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

func initAdminUser() {
	adminEmail := "admin@ctgold.io"
	adminPassword := "ChangeMe1234"
	adminCode := "CTGENESIS"

	var adminUser models.User
	result := database.DB.Where("email = ?", adminEmail).First(&adminUser)

	if result.Error != nil {
		if result.Error.Error() == "record not found" {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("failed to hash admin password: %v", err)
			}

			adminUser = models.User{
				Email:        &adminEmail,
				Password:     string(hashedPassword),
				Role:         "admin",
				ReferralCode: adminCode,
				IsActive:     true,
			}

			if err := database.DB.Create(&adminUser).Error; err != nil {
				log.Fatalf("failed to create admin user: %v", err)
			}
			log.Println("Admin user created successfully!")
		} else {
			log.Fatalf("failed to check for admin user: %v", result.Error)
		}
	} else {
		log.Println("Admin user already exists.")
	}
}
