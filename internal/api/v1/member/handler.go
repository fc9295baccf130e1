package member

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/database"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/utils"
)

var balances *services.BalanceService

// CurrentMember godoc
// @Summary Get current member
// @Description Get the signed-in member's profile, referral stats and a fresh token
// @Tags member
// @Produce  json
// @Security Bearer
// @Success 200 {object} utils.Response{data=member.MemberResponse}
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /member/me [get]
func CurrentMember(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	u := userVal.(models.User)

	// Reload so the response reflects the latest balance and counters,
	// not the cached copy the middleware resolved.
	var latest models.User
	if err := database.DB.First(&latest, u.ID).Error; err == nil {
		u = latest
	}

	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not generate token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Member information retrieved successfully", NewMemberResponse(&u, token)))
}

// Deposit godoc
// @Summary Deposit internal tokens
// @Description Credit the signed-in member's balance. Crossing the activation threshold activates the member and runs the referral bonus cascade.
// @Tags member
// @Accept json
// @Produce json
// @Security Bearer
// @Param input body DepositInput true "Deposit Input"
// @Success 200 {object} utils.Response{data=DepositResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /member/deposit [post]
func Deposit(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	u := userVal.(models.User)

	var input DepositInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	wasActive := u.IsActive
	metadata := datatypes.JSON([]byte(`{"ip":"` + c.ClientIP() + `"}`))

	updated, dist, err := balances.Credit(c.Request.Context(), u.ID, input.Amount,
		models.TransactionTypeDeposit, "Member deposit", operatorName(&u), u.ID, metadata)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to record deposit"))
		return
	}

	activated := !wasActive && updated.IsActive
	message := "Deposit recorded"
	if activated && dist == nil {
		// The activation stands even when the cascade could not finish.
		message = "Deposit recorded; bonus distribution incomplete"
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse(message, DepositResponse{
		Member:       NewMemberResponse(updated, ""),
		Activated:    activated,
		Distribution: dist,
	}))
}

// MyTransactions godoc
// @Summary List own transactions
// @Description Get the signed-in member's ledger history, newest first
// @Tags member
// @Produce json
// @Security Bearer
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} utils.Response{data=TransactionListResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /member/transactions [get]
func MyTransactions(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	u := userVal.(models.User)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	userID := u.ID
	transactions, total, err := services.FindTransactions(services.TransactionFilter{
		UserID: &userID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch transactions"))
		return
	}

	items := []TransactionItem{}
	for _, t := range transactions {
		items = append(items, TransactionItem{
			ID:        t.ID,
			CreatedAt: t.CreatedAt,
			Amount:    t.Amount,
			Type:      t.Type,
			LevelFrom: t.LevelFrom,
			FromUser:  t.FromUserID,
			Reason:    t.Reason,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Transactions retrieved successfully", TransactionListResponse{
		Transactions: items,
		Total:        total,
		Page:         page,
		Limit:        limit,
	}))
}

func operatorName(u *models.User) string {
	if u.Email != nil {
		return *u.Email
	}
	if u.WalletAddress != nil {
		return *u.WalletAddress
	}
	return "member"
}
