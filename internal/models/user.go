package models

import "time"

// User is a CTGOLD member. Portal members sign in with email/password;
// wallet-gated members are created on first wallet connection. A member may
// have both once the wallet is linked.
type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Email    *string `gorm:"uniqueIndex"` // nil for wallet-only members
	Password string
	Role     string `gorm:"not null;default:'user'"`

	WalletAddress  *string `gorm:"uniqueIndex"` // nil until a wallet is linked
	ReferralCode   string  `gorm:"uniqueIndex;not null"`
	UplineID       *uint   `gorm:"index"` // direct referrer; immutable after creation
	WalletMetadata JSON    `gorm:"type:jsonb"`

	InternalBalance float64 `gorm:"type:decimal(20,8);not null;default:0"`
	IsActive        bool    `gorm:"not null;default:false"`
	IsVip           bool    `gorm:"not null;default:false"`
	ActivatedAt     *time.Time

	TotalReferrals int64   `gorm:"not null;default:0"`
	TotalEarnings  float64 `gorm:"type:decimal(20,8);not null;default:0"`

	Version int `gorm:"default:1"`
}
