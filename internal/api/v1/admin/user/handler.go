package user

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/utils"
)

var (
	engine   *services.ReferralService
	balances *services.BalanceService
)

type UserListItem struct {
	ID              uint      `json:"id"`
	Email           string    `json:"email,omitempty"`
	WalletAddress   string    `json:"wallet_address,omitempty"`
	ReferralCode    string    `json:"referral_code"`
	UplineID        *uint     `json:"upline_id,omitempty"`
	Role            string    `json:"role"`
	InternalBalance float64   `json:"internal_balance"`
	IsActive        bool      `json:"is_active"`
	IsVip           bool      `json:"is_vip"`
	TotalReferrals  int64     `json:"total_referrals"`
	TotalEarnings   float64   `json:"total_earnings"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserListItem `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func listItem(u *models.User) UserListItem {
	item := UserListItem{
		ID:              u.ID,
		ReferralCode:    u.ReferralCode,
		UplineID:        u.UplineID,
		Role:            u.Role,
		InternalBalance: u.InternalBalance,
		IsActive:        u.IsActive,
		IsVip:           u.IsVip,
		TotalReferrals:  u.TotalReferrals,
		TotalEarnings:   u.TotalEarnings,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.Email != nil {
		item.Email = *u.Email
	}
	if u.WalletAddress != nil {
		item.WalletAddress = *u.WalletAddress
	}
	return item
}

// ListUsers godoc
// @Summary List all members
// @Description Get a paginated list of members. Admin only.
// @Tags admin
// @Produce json
// @Security Bearer
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} utils.Response{data=UserListResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/users [get]
func ListUsers(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "20")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	users, total, err := services.FindUsers(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch users"))
		return
	}

	var userItems []UserListItem
	for i := range users {
		userItems = append(userItems, listItem(&users[i]))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Users retrieved successfully", UserListResponse{
		Users: userItems,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// UpdateUserRequest represents the request body for updating a member
type UpdateUserRequest struct {
	Password *string `json:"password,omitempty" binding:"omitempty,min=6"`
	Role     *string `json:"role,omitempty" binding:"omitempty,oneof=admin user"`
	IsVip    *bool   `json:"is_vip,omitempty"`
}

// UpdateUser godoc
// @Summary Update a member
// @Description Update member details. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Param body body UpdateUserRequest true "Fields to update"
// @Success 200 {object} utils.Response{data=UserListItem}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/users/{id} [patch]
func UpdateUser(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	updates := make(map[string]interface{})
	if req.Password != nil {
		updates["password"] = *req.Password
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsVip != nil {
		updates["is_vip"] = *req.IsVip
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "No fields to update"))
		return
	}

	updatedUser, err := services.UpdateUser(uint(id), updates, operatorFromContext(c))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
			return
		}
		if errors.Is(err, services.ErrOptimisticLock) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update user"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User updated successfully", listItem(updatedUser)))
}

// CreditUserRequest is the request body for an admin balance adjustment.
type CreditUserRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason"`
}

// CreditUser godoc
// @Summary Credit a member's balance
// @Description Record an admin balance adjustment. Crossing the activation threshold activates the member and runs the referral bonus cascade. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Param body body CreditUserRequest true "Adjustment"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/users/{id}/credit [post]
func CreditUser(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
		return
	}

	var req CreditUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "Admin balance adjustment"
	}

	updated, dist, err := balances.Credit(c.Request.Context(), uint(id), req.Amount,
		models.TransactionTypeSystemAdmin, reason, operatorFromContext(c), operatorID(c), nil)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to credit user"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Balance credited", gin.H{
		"user":         listItem(updated),
		"distribution": dist,
	}))
}

// DistributeBonus godoc
// @Summary Re-run a bonus distribution
// @Description Run the referral bonus cascade for an active member. Levels that were already settled are not paid again. Admin only.
// @Tags admin
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Success 200 {object} utils.Response{data=services.DistributionResult}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/users/{id}/distribute [post]
func DistributeBonus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
		return
	}

	result, err := engine.DistributeBonus(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
			return
		}
		if errors.Is(err, services.ErrUserNotActive) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to distribute bonus"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Bonus distribution finished", result))
}

func operatorFromContext(c *gin.Context) string {
	if userVal, exists := c.Get("user"); exists {
		if u, ok := userVal.(models.User); ok {
			if u.Email != nil {
				return *u.Email
			}
		}
	}
	return "unknown"
}

func operatorID(c *gin.Context) uint {
	if userVal, exists := c.Get("user"); exists {
		if u, ok := userVal.(models.User); ok {
			return u.ID
		}
	}
	return 0
}
