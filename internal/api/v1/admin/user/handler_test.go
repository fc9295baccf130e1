package user_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/admin/user"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/database"
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

	database.DB = db
	return db
}

func seedMember(db *gorm.DB, wallet, code string, uplineID *uint, active bool) *models.User {
	w := wallet
	u := models.User{WalletAddress: &w, ReferralCode: code, UplineID: uplineID, Role: "user", IsActive: active}
	if err := db.Create(&u).Error; err != nil {
		panic(err)
	}
	return &u
}

func setupRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := services.NewReferralService(db, services.ReferralConfig{LedgerSecret: "test_secret"})
	balances := services.NewBalanceService(engine, 500, "test_secret")

	r := gin.New()
	admin := r.Group("/admin")
	user.RegisterRoutes(admin, engine, balances)
	return r
}

func TestListUsers(t *testing.T) {
	db := setupTestDB()
	r := setupRouter(db)

	seedMember(db, "0xone", "CTONE", nil, true)
	seedMember(db, "0xtwo", "CTTWO", nil, false)

	req, _ := http.NewRequest(http.MethodGet, "/admin/users?page=1&limit=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data user.UserListResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.Total)
	assert.Len(t, resp.Data.Users, 2)
	assert.Equal(t, "0xone", resp.Data.Users[0].WalletAddress)

	// Invalid pagination is rejected.
	req, _ = http.NewRequest(http.MethodGet, "/admin/users?page=0", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateUser(t *testing.T) {
	db := setupTestDB()
	r := setupRouter(db)

	member := seedMember(db, "0xvip", "CTVIP", nil, true)

	isVip := true
	body, _ := json.Marshal(user.UpdateUserRequest{IsVip: &isVip})
	req, _ := http.NewRequest(http.MethodPatch, fmt.Sprintf("/admin/users/%d", member.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var after models.User
	db.First(&after, member.ID)
	assert.True(t, after.IsVip)

	// Unknown member.
	req, _ = http.NewRequest(http.MethodPatch, "/admin/users/98765", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Empty update payload.
	body, _ = json.Marshal(user.UpdateUserRequest{})
	req, _ = http.NewRequest(http.MethodPatch, fmt.Sprintf("/admin/users/%d", member.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreditUser(t *testing.T) {
	db := setupTestDB()
	r := setupRouter(db)

	upline := seedMember(db, "0xupline", "CTUP", nil, true)
	member := seedMember(db, "0xcredit", "CTCREDIT", &upline.ID, false)

	// Credit past the threshold: activation plus cascade.
	body, _ := json.Marshal(map[string]interface{}{"amount": 600.0, "reason": "Reconciliation"})
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/admin/users/%d/credit", member.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var after models.User
	db.First(&after, member.ID)
	assert.True(t, after.IsActive)
	assert.Equal(t, 600.0, after.InternalBalance)

	var uplineAfter models.User
	db.First(&uplineAfter, upline.ID)
	assert.Equal(t, 100.0, uplineAfter.InternalBalance)

	var entry models.Transaction
	db.Where("user_id = ? AND type = ?", member.ID, models.TransactionTypeSystemAdmin).First(&entry)
	assert.Equal(t, "Reconciliation", entry.Reason)

	// Non-positive amounts are rejected.
	body, _ = json.Marshal(map[string]interface{}{"amount": -5.0})
	req, _ = http.NewRequest(http.MethodPost, fmt.Sprintf("/admin/users/%d/credit", member.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDistributeBonus(t *testing.T) {
	db := setupTestDB()
	r := setupRouter(db)

	upline := seedMember(db, "0xupline", "CTUP", nil, true)
	member := seedMember(db, "0xactive", "CTACT", &upline.ID, true)
	inactive := seedMember(db, "0xcold", "CTCOLD", &upline.ID, false)

	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/admin/users/%d/distribute", member.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data services.DistributionResult `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.Data.TotalDistributed)

	// Re-running settles nothing twice.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, fmt.Sprintf("/admin/users/%d/distribute", member.ID), nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.Data.TotalDistributed)

	// Inactive members cannot distribute.
	req, _ = http.NewRequest(http.MethodPost, fmt.Sprintf("/admin/users/%d/distribute", inactive.ID), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown member.
	req, _ = http.NewRequest(http.MethodPost, "/admin/users/98765/distribute", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
