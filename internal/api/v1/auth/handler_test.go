package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/auth"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/member"
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

func setupMockRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func setupRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test_secret")

	engine := services.NewReferralService(db, services.ReferralConfig{LedgerSecret: "test_secret"})

	r := gin.New()
	v1 := r.Group("/api/v1")
	auth.RegisterRoutes(v1, engine)
	return r
}

func postJSON(r *gin.Engine, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	db := setupTestDB()
	mr := setupMockRedis()
	defer func() {
		database.RedisClient = nil
		mr.Close()
	}()
	r := setupRouter(db)

	// Register: the very first member becomes admin.
	w := postJSON(r, "/api/v1/auth/register", map[string]string{
		"email":    "first@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data member.MemberResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "admin", resp.Data.Role)
	assert.NotEmpty(t, resp.Data.ReferralCode)
	assert.NotEmpty(t, resp.Data.Token)
	adminCode := resp.Data.ReferralCode

	// Register a second member under the first's code.
	w = postJSON(r, "/api/v1/auth/register", map[string]string{
		"email":         "second@example.com",
		"password":      "password123",
		"referral_code": adminCode,
	}, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user", resp.Data.Role)
	assert.NotNil(t, resp.Data.UplineID)

	// Duplicate email conflicts.
	w = postJSON(r, "/api/v1/auth/register", map[string]string{
		"email":    "second@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login.
	w = postJSON(r, "/api/v1/auth/login", map[string]string{
		"email":    "second@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp.Data.Token
	assert.NotEmpty(t, token)

	// Wrong password.
	w = postJSON(r, "/api/v1/auth/login", map[string]string{
		"email":    "second@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logout denylists the token.
	w = postJSON(r, "/api/v1/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	denied, err := services.IsDenylisted(token)
	assert.NoError(t, err)
	assert.True(t, denied)

	// The revoked token no longer passes the middleware.
	w = postJSON(r, "/api/v1/auth/logout", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_Validation(t *testing.T) {
	db := setupTestDB()
	r := setupRouter(db)

	// Bad email.
	w := postJSON(r, "/api/v1/auth/register", map[string]string{
		"email":    "not-an-email",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Short password.
	w = postJSON(r, "/api/v1/auth/register", map[string]string{
		"email":    "ok@example.com",
		"password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
