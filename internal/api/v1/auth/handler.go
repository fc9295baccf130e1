package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/member"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/utils"
)

var engine *services.ReferralService

type RegisterInput struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	ReferralCode string `json:"referral_code"`
}

// Register godoc
// @Summary Register a new member
// @Description Register a new member with email and password. An optional referral code links the member under its owner.
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   input     body   RegisterInput  true  "Register Input"
// @Success 201 {object} utils.Response{data=member.MemberResponse}
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /auth/register [post]
func Register(c *gin.Context) {
	var input RegisterInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u, err := services.RegisterUser(engine, input.Email, input.Password, input.ReferralCode)
	if err != nil {
		if errors.Is(err, services.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
			return
		}
		if errors.Is(err, services.ErrCodeExhausted) {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to register user due to an internal error"))
		return
	}

	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not generate token"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Member registered successfully", member.NewMemberResponse(u, token)))
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in a member
// @Description Log in a member with email and password
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   input     body   LoginInput  true  "Login Input"
// @Success 200 {object} utils.Response{data=member.MemberResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /auth/login [post]
func Login(c *gin.Context) {
	var input LoginInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	token, u, err := services.LoginUser(input.Email, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid email or password"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged in successfully", member.NewMemberResponse(u, token)))
}

// Logout godoc
// @Summary Log out a member
// @Description Invalidate the member's current token
// @Tags auth
// @Produce  json
// @Security Bearer
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /auth/logout [post]
func Logout(c *gin.Context) {
	tokenString, err := utils.ExtractToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
		return
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		// Already invalid, denylist it anyway; without claims we cannot
		// read the expiry, so use the max token life.
		err = services.AddToDenylist(tokenString, time.Hour*72)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to denylist token"))
			return
		}
		c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged out successfully", nil))
		return
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Invalid token expiration"))
		return
	}

	expTime := time.Unix(int64(exp), 0)
	remaining := time.Until(expTime)

	err = services.AddToDenylist(tokenString, remaining)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to denylist token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged out successfully", nil))
}
