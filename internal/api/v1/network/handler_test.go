package network_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/network"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.Transaction{}, &models.Referral{})
	if err := db.AutoMigrate(&models.User{}, &models.Transaction{}, &models.Referral{}); err != nil {
		panic("failed to migrate database")
	}

	return db
}

func seedMember(db *gorm.DB, wallet, code string, uplineID *uint) *models.User {
	w := wallet
	user := models.User{WalletAddress: &w, ReferralCode: code, UplineID: uplineID, Role: "user", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		panic(err)
	}
	return &user
}

// setupRouter registers the network routes behind a stub that injects the
// signed-in member, standing in for the auth middleware.
func setupRouter(db *gorm.DB, current *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := services.NewReferralService(db, services.ReferralConfig{})

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.Use(func(c *gin.Context) {
		if current != nil {
			c.Set("user", *current)
		}
		c.Next()
	})
	network.RegisterRoutes(v1, engine)
	return r
}

func TestUpline(t *testing.T) {
	db := setupTestDB()

	grandparent := seedMember(db, "0xgp", "CTGP", nil)
	parent := seedMember(db, "0xp", "CTP", &grandparent.ID)
	leaf := seedMember(db, "0xleaf", "CTLEAF", &parent.ID)

	r := setupRouter(db, leaf)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/network/upline", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []services.UplineEntry `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 1, resp.Data[0].Level)
	assert.Equal(t, parent.ID, resp.Data[0].UserID)
	assert.Equal(t, grandparent.ID, resp.Data[1].UserID)

	// Depth query bounds the walk.
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/network/upline?depth=1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)

	// Bad depth is rejected.
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/network/upline?depth=zero", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownline(t *testing.T) {
	db := setupTestDB()

	root := seedMember(db, "0xroot", "CTROOT", nil)
	for i := 0; i < 2; i++ {
		child := seedMember(db, fmt.Sprintf("0xc%d", i), fmt.Sprintf("CTC%d", i), &root.ID)
		seedMember(db, fmt.Sprintf("0xg%d", i), fmt.Sprintf("CTG%d", i), &child.ID)
	}

	r := setupRouter(db, root)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/network/downline", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data services.DownlineNode `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, root.ID, resp.Data.UserID)
	assert.Equal(t, 0, resp.Data.Level)
	assert.Len(t, resp.Data.Children, 2)
	assert.Len(t, resp.Data.Children[0].Children, 1)
	assert.Equal(t, 2, resp.Data.Children[0].Children[0].Level)
}

func TestNetwork_Unauthorized(t *testing.T) {
	db := setupTestDB()
	r := setupRouter(db, nil)

	for _, path := range []string{"/api/v1/network/upline", "/api/v1/network/downline"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}
