package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/database"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
)

var ErrInvalidAmount = errors.New("amount must be positive")

// BalanceService credits member balances and owns the activation threshold:
// the first credit that lifts a balance over the threshold flips the member
// active and fires the bonus cascade. Activation and payout are separable —
// a failed cascade never rolls back the activation.
type BalanceService struct {
	engine    *ReferralService
	threshold float64
	secret    string
}

func NewBalanceService(engine *ReferralService, threshold float64, secret string) *BalanceService {
	if threshold <= 0 {
		threshold = 1000
	}
	return &BalanceService{engine: engine, threshold: threshold, secret: secret}
}

// Credit appends a ledger entry and increments the member's balance
// atomically. It returns the refreshed member and, when this credit
// activated them, the outcome of the bonus cascade (nil when the cascade
// failed; the failure is logged and the activation stands).
func (b *BalanceService) Credit(ctx context.Context, userID uint, amount float64, txType models.TransactionType, reason, operator string, operatorID uint, metadata datatypes.JSON) (*models.User, *DistributionResult, error) {
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	var user models.User
	activated := false

	err := b.engine.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("internal_balance", gorm.Expr("internal_balance + ?", amount)).Error; err != nil {
			return err
		}

		entry := models.Transaction{
			CreatedAt:  time.Now(),
			UserID:     userID,
			Amount:     amount,
			Type:       txType,
			Reason:     reason,
			Operator:   operator,
			OperatorID: operatorID,
			Metadata:   metadata,
		}
		entry.Hash = entry.GenerateHash(b.secret)
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		if !user.IsActive && user.InternalBalance >= b.threshold {
			now := time.Now()
			res := tx.Model(&models.User{}).
				Where("id = ? AND is_active = ?", userID, false).
				Updates(map[string]interface{}{
					"is_active":    true,
					"activated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			// RowsAffected 0 means a concurrent credit won the flip;
			// that run owns the cascade.
			if res.RowsAffected > 0 {
				activated = true
				user.IsActive = true
				user.ActivatedAt = &now
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, fmt.Sprintf("user:%d", userID))
	}

	if !activated {
		return &user, nil, nil
	}

	zap.L().Info("member activated",
		zap.Uint("user_id", userID),
		zap.Float64("balance", user.InternalBalance))

	dist, distErr := b.engine.DistributeBonus(ctx, userID)
	if distErr != nil {
		zap.L().Error("bonus distribution incomplete",
			zap.Uint("user_id", userID), zap.Error(distErr))
		return &user, nil, nil
	}

	return &user, dist, nil
}
