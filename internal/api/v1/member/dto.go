package member

import (
	"time"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
)

// MemberResponse defines the response structure for member information.
type MemberResponse struct {
	ID              uint       `json:"id"`
	Email           string     `json:"email,omitempty"`
	Role            string     `json:"role"`
	WalletAddress   string     `json:"wallet_address,omitempty"`
	ReferralCode    string     `json:"referral_code"`
	UplineID        *uint      `json:"upline_id,omitempty"`
	InternalBalance float64    `json:"internal_balance"`
	IsActive        bool       `json:"is_active"`
	IsVip           bool       `json:"is_vip"`
	ActivatedAt     *time.Time `json:"activated_at,omitempty"`
	TotalReferrals  int64      `json:"total_referrals"`
	TotalEarnings   float64    `json:"total_earnings"`
	Token           string     `json:"token,omitempty"`
}

func NewMemberResponse(u *models.User, token string) MemberResponse {
	resp := MemberResponse{
		ID:              u.ID,
		Role:            u.Role,
		ReferralCode:    u.ReferralCode,
		UplineID:        u.UplineID,
		InternalBalance: u.InternalBalance,
		IsActive:        u.IsActive,
		IsVip:           u.IsVip,
		ActivatedAt:     u.ActivatedAt,
		TotalReferrals:  u.TotalReferrals,
		TotalEarnings:   u.TotalEarnings,
		Token:           token,
	}
	if u.Email != nil {
		resp.Email = *u.Email
	}
	if u.WalletAddress != nil {
		resp.WalletAddress = *u.WalletAddress
	}
	return resp
}

// DepositInput is the request body for a balance deposit.
type DepositInput struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// DepositResponse reports the refreshed member and, when the deposit tipped
// the member over the activation threshold, the bonus cascade outcome.
type DepositResponse struct {
	Member       MemberResponse               `json:"member"`
	Activated    bool                         `json:"activated"`
	Distribution *services.DistributionResult `json:"distribution,omitempty"`
}

// TransactionItem is one ledger entry in a member's history.
type TransactionItem struct {
	ID        uint                   `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Amount    float64                `json:"amount"`
	Type      models.TransactionType `json:"type"`
	LevelFrom int                    `json:"level_from,omitempty"`
	FromUser  uint                   `json:"from_user_id,omitempty"`
	Reason    string                 `json:"reason"`
}

type TransactionListResponse struct {
	Transactions []TransactionItem `json:"transactions"`
	Total        int64             `json:"total"`
	Page         int               `json:"page"`
	Limit        int               `json:"limit"`
}
