package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/database"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/utils"
)

var ErrUserAlreadyExists = errors.New("user with this email already exists")

// RegisterUser creates a portal member. An optional referral code links the
// new member into the network; a code that does not resolve simply leaves
// the member without an upline. The first registered member becomes admin.
func RegisterUser(engine *ReferralService, email, password, referralCode string) (*models.User, error) {
	var existingUser models.User
	result := database.DB.Where("email = ?", email).First(&existingUser)
	if result.Error == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	uplineID, err := engine.resolveUpline(ctx, referralCode)
	if err != nil {
		return nil, err
	}
	code, err := engine.uniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	var userCount int64
	database.DB.Model(&models.User{}).Count(&userCount)

	role := "user"
	if userCount == 0 {
		role = "admin"
	}

	user := &models.User{
		Email:        &email,
		Password:     string(hashedPassword),
		Role:         role,
		ReferralCode: code,
		UplineID:     uplineID,
	}

	if err := database.DB.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

func LoginUser(email, password string) (string, *models.User, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, errors.New("invalid credentials")
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}
