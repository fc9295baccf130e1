package models

import "time"

// Referral links a member to one specific ancestor in their upline at a
// specific level. The (user_id, referrer_id) pair is unique so re-running a
// bonus distribution upserts instead of duplicating the edge.
type Referral struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID     uint    `gorm:"uniqueIndex:idx_referral_edge;not null"` // the downline member
	ReferrerID uint    `gorm:"uniqueIndex:idx_referral_edge;not null"` // the ancestor credited
	Level      int     `gorm:"not null"`                               // 1-10, distance between the two
	BonusPaid  float64 `gorm:"type:decimal(20,8);not null;default:0"`
}
