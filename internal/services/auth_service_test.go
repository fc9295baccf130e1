package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/database"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
)

func TestRegisterUser(t *testing.T) {
	db := setupReferralTestDB()
	database.DB = db
	engine := NewReferralService(db, ReferralConfig{})

	// First registration becomes admin.
	admin, err := RegisterUser(engine, "first@example.com", "password123", "")
	assert.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)
	assert.NotEmpty(t, admin.ReferralCode)
	assert.Nil(t, admin.UplineID)

	// Subsequent registrations are plain members, linked by code.
	member, err := RegisterUser(engine, "second@example.com", "password123", admin.ReferralCode)
	assert.NoError(t, err)
	assert.Equal(t, "user", member.Role)
	assert.NotNil(t, member.UplineID)
	assert.Equal(t, admin.ID, *member.UplineID)

	// Unknown codes degrade to no upline instead of failing registration.
	orphan, err := RegisterUser(engine, "third@example.com", "password123", "NOSUCHCODE")
	assert.NoError(t, err)
	assert.Nil(t, orphan.UplineID)

	// Duplicate email is rejected.
	_, err = RegisterUser(engine, "second@example.com", "password123", "")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginUser(t *testing.T) {
	db := setupReferralTestDB()
	database.DB = db
	engine := NewReferralService(db, ReferralConfig{})

	registered, err := RegisterUser(engine, "login@example.com", "password123", "")
	assert.NoError(t, err)

	token, user, err := LoginUser("login@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)

	_, _, err = LoginUser("login@example.com", "wrongpassword")
	assert.Error(t, err)

	_, _, err = LoginUser("ghost@example.com", "password123")
	assert.Error(t, err)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
