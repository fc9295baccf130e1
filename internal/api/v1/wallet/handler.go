package wallet

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/api/v1/member"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/utils"
)

var engine *services.ReferralService

type ConnectInput struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	ReferralCode  string `json:"referral_code"`
}

// Connect godoc
// @Summary Connect a wallet
// @Description Look up the member for a wallet address, creating one on first connection. Safe to call on every connection. An unknown referral code links no upline instead of failing.
// @Tags wallet
// @Accept json
// @Produce json
// @Param input body ConnectInput true "Connect Input"
// @Success 200 {object} utils.Response{data=member.MemberResponse}
// @Failure 400 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /wallet/connect [post]
func Connect(c *gin.Context) {
	var input ConnectInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u, err := engine.EnsureUser(c.Request.Context(), input.WalletAddress, input.ReferralCode)
	if err != nil {
		if errors.Is(err, services.ErrWalletRequired) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		if errors.Is(err, services.ErrCodeExhausted) {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to connect wallet"))
		return
	}

	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not generate token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Wallet connected", member.NewMemberResponse(u, token)))
}
