package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ekodaeng/CTGOLDMobile-sub000/config"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
)

var (
	ErrUserNotActive  = errors.New("user is not active")
	ErrCodeExhausted  = errors.New("could not generate a unique referral code")
	ErrWalletRequired = errors.New("wallet address is required")
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReferralConfig carries the engine tunables. Zero values fall back to the
// production defaults so tests only set what they care about.
type ReferralConfig struct {
	BonusSchedule []float64
	MaxDepth      int
	CodePrefix    string
	CodeLength    int
	CodeRetries   int
	LedgerSecret  string
}

// ReferralService is the referral network engine: code generation, member
// lookup/creation, the bonus cascade and the upline/downline walks. The DB
// handle is injected so tests can substitute an in-memory database.
type ReferralService struct {
	db     *gorm.DB
	cfg    ReferralConfig
	codeFn func() string
}

func NewReferralService(db *gorm.DB, cfg ReferralConfig) *ReferralService {
	if len(cfg.BonusSchedule) == 0 {
		cfg.BonusSchedule = config.DefaultBonusSchedule
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}
	if cfg.CodePrefix == "" {
		cfg.CodePrefix = "CT"
	}
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	if cfg.CodeRetries <= 0 {
		cfg.CodeRetries = 10
	}

	s := &ReferralService{db: db, cfg: cfg}
	s.codeFn = s.GenerateReferralCode
	return s
}

// MaxDepth reports the configured traversal bound.
func (s *ReferralService) MaxDepth() int {
	return s.cfg.MaxDepth
}

// GenerateReferralCode produces a candidate code: the configured prefix
// followed by random characters from A-Z0-9. Uniqueness is the caller's
// concern; see uniqueReferralCode.
func (s *ReferralService) GenerateReferralCode() string {
	buf := make([]byte, s.cfg.CodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return s.cfg.CodePrefix + string(buf)
}

// uniqueReferralCode retries generation against the directory up to the
// configured bound. Exhaustion is a hard failure, never a duplicate.
func (s *ReferralService) uniqueReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.cfg.CodeRetries; attempt++ {
		code := s.codeFn()

		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

// EnsureUser returns the member for a wallet address, creating one on first
// connection. A referral code that does not resolve degrades to "no
// referrer" instead of failing the whole operation.
func (s *ReferralService) EnsureUser(ctx context.Context, walletAddress, uplineReferralCode string) (*models.User, error) {
	if walletAddress == "" {
		return nil, ErrWalletRequired
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	uplineID, err := s.resolveUpline(ctx, uplineReferralCode)
	if err != nil {
		return nil, err
	}

	code, err := s.uniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	wallet := walletAddress
	user := models.User{
		WalletAddress:   &wallet,
		ReferralCode:    code,
		UplineID:        uplineID,
		Role:            "user",
		InternalBalance: 0,
		IsActive:        false,
		IsVip:           false,
		WalletMetadata: models.JSON{
			"source":       "wallet_connect",
			"connected_at": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	zap.L().Info("member created from wallet",
		zap.Uint("user_id", user.ID),
		zap.String("wallet", walletAddress),
		zap.Bool("has_upline", uplineID != nil))

	return &user, nil
}

// resolveUpline maps a referral code to a member id. Unknown or empty codes
// resolve to no upline.
func (s *ReferralService) resolveUpline(ctx context.Context, code string) (*uint, error) {
	if code == "" {
		return nil, nil
	}

	var referrer models.User
	err := s.db.WithContext(ctx).Where("referral_code = ?", code).First(&referrer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Warn("referral code did not resolve", zap.String("code", code))
			return nil, nil
		}
		return nil, err
	}
	return &referrer.ID, nil
}

// Distribution records one paid level of a bonus cascade.
type Distribution struct {
	Level         int     `json:"level"`
	UserID        uint    `json:"user_id"`
	WalletAddress string  `json:"wallet_address,omitempty"`
	Amount        float64 `json:"amount"`
}

// DistributionResult is the aggregate outcome of DistributeBonus.
type DistributionResult struct {
	TotalDistributed float64        `json:"total_distributed"`
	Distributions    []Distribution `json:"distributions"`
}

// DistributeBonus walks the activated member's upline chain and credits each
// active ancestor the scheduled amount for its level. Each paid level writes
// the balance credit, the ledger entry and the referral edge in one database
// transaction; a level that fails to persist is skipped and the walk
// continues. An ancestor whose edge already exists is treated as settled, so
// re-running the cascade for the same activation pays nothing twice.
func (s *ReferralService) DistributeBonus(ctx context.Context, activatedUserID uint) (*DistributionResult, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, activatedUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserNotActive
	}

	var priorEdges int64
	if err := s.db.WithContext(ctx).Model(&models.Referral{}).
		Where("user_id = ?", user.ID).Count(&priorEdges).Error; err != nil {
		return nil, err
	}

	result := &DistributionResult{Distributions: []Distribution{}}

	currentUplineID := user.UplineID
	for level := 1; currentUplineID != nil && level <= s.cfg.MaxDepth; level++ {
		var ancestor models.User
		if err := s.db.WithContext(ctx).First(&ancestor, *currentUplineID).Error; err != nil {
			// Broken chain: stop here, keep what was already paid.
			zap.L().Warn("upline chain broken during distribution",
				zap.Uint("activated_user", user.ID),
				zap.Uint("missing_id", *currentUplineID),
				zap.Int("level", level))
			break
		}

		if ancestor.IsActive {
			amount := s.bonusForLevel(level)
			if amount > 0 {
				settled, err := s.edgeExists(ctx, user.ID, ancestor.ID)
				switch {
				case err != nil:
					zap.L().Warn("referral edge lookup failed, skipping level",
						zap.Uint("ancestor", ancestor.ID), zap.Int("level", level), zap.Error(err))
				case settled:
					// Already paid by a previous run.
				default:
					if err := s.payLevel(ctx, &user, &ancestor, level, amount); err != nil {
						zap.L().Warn("bonus payout failed, skipping level",
							zap.Uint("ancestor", ancestor.ID), zap.Int("level", level), zap.Error(err))
					} else {
						result.Distributions = append(result.Distributions, Distribution{
							Level:         level,
							UserID:        ancestor.ID,
							WalletAddress: derefString(ancestor.WalletAddress),
							Amount:        amount,
						})
						result.TotalDistributed += amount
					}
				}
			}
		}

		currentUplineID = ancestor.UplineID
	}

	// The direct-referral counter reflects signups, not paid bonuses: it
	// increments exactly once per activation whatever happened above, and
	// whether or not the direct upline is active.
	if user.UplineID != nil && priorEdges == 0 {
		err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", *user.UplineID).
			UpdateColumn("total_referrals", gorm.Expr("total_referrals + ?", 1)).Error
		if err != nil {
			zap.L().Warn("failed to increment direct referral counter",
				zap.Uint("upline", *user.UplineID), zap.Error(err))
		}
	}

	zap.L().Info("bonus distribution finished",
		zap.Uint("activated_user", user.ID),
		zap.Float64("total", result.TotalDistributed),
		zap.Int("levels_paid", len(result.Distributions)))

	return result, nil
}

func (s *ReferralService) bonusForLevel(level int) float64 {
	if level < 1 || level > len(s.cfg.BonusSchedule) {
		return 0
	}
	return s.cfg.BonusSchedule[level-1]
}

func (s *ReferralService) edgeExists(ctx context.Context, userID, referrerID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Referral{}).
		Where("user_id = ? AND referrer_id = ?", userID, referrerID).
		Count(&count).Error
	return count > 0, err
}

// payLevel performs the three writes for one ancestor atomically: the
// balance credit (as an in-database increment, so concurrent cascades for a
// shared ancestor cannot lose updates), the ledger entry and the referral
// edge upsert.
func (s *ReferralService) payLevel(ctx context.Context, user, ancestor *models.User, level int, amount float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", ancestor.ID).
			Updates(map[string]interface{}{
				"internal_balance": gorm.Expr("internal_balance + ?", amount),
				"total_earnings":   gorm.Expr("total_earnings + ?", amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("ancestor %d vanished during payout", ancestor.ID)
		}

		entry := models.Transaction{
			CreatedAt:  time.Now(),
			UserID:     ancestor.ID,
			Amount:     amount,
			Type:       models.TransactionTypeBonus,
			LevelFrom:  level,
			FromUserID: user.ID,
			Reason:     fmt.Sprintf("Level %d referral bonus from member #%d", level, user.ID),
			Operator:   "system",
		}
		entry.Hash = entry.GenerateHash(s.cfg.LedgerSecret)
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		edge := models.Referral{
			UserID:     user.ID,
			ReferrerID: ancestor.ID,
			Level:      level,
			BonusPaid:  amount,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "referrer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"level", "bonus_paid", "updated_at"}),
		}).Create(&edge).Error
	})
}

// UplineEntry is one ancestor in a member's referral chain.
type UplineEntry struct {
	Level           int     `json:"level"`
	UserID          uint    `json:"user_id"`
	WalletAddress   string  `json:"wallet_address,omitempty"`
	InternalBalance float64 `json:"internal_balance"`
	IsActive        bool    `json:"is_active"`
}

// GetUplineTree follows upline pointers from the given member, level 1
// upward, stopping at the root, the depth bound or a missing record.
func (s *ReferralService) GetUplineTree(ctx context.Context, userID uint, maxLevel int) ([]UplineEntry, error) {
	if maxLevel <= 0 || maxLevel > s.cfg.MaxDepth {
		maxLevel = s.cfg.MaxDepth
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	entries := []UplineEntry{}
	currentUplineID := user.UplineID
	for level := 1; currentUplineID != nil && level <= maxLevel; level++ {
		var ancestor models.User
		if err := s.db.WithContext(ctx).First(&ancestor, *currentUplineID).Error; err != nil {
			// Missing ancestor truncates the list, it is not an error.
			break
		}
		entries = append(entries, UplineEntry{
			Level:           level,
			UserID:          ancestor.ID,
			WalletAddress:   derefString(ancestor.WalletAddress),
			InternalBalance: ancestor.InternalBalance,
			IsActive:        ancestor.IsActive,
		})
		currentUplineID = ancestor.UplineID
	}

	return entries, nil
}

// DownlineNode is one member in the downline tree, with its direct referrals
// as children.
type DownlineNode struct {
	Level           int             `json:"level"`
	UserID          uint            `json:"user_id"`
	WalletAddress   string          `json:"wallet_address,omitempty"`
	InternalBalance float64         `json:"internal_balance"`
	IsActive        bool            `json:"is_active"`
	Children        []*DownlineNode `json:"children"`
}

// GetDownlineTree builds the full multi-branch tree under a member,
// depth-bounded by maxLevel. Each expansion issues one query per node; fine
// at this network's fan-out, but a deep, wide network would need a batched
// level-order fetch instead.
func (s *ReferralService) GetDownlineTree(ctx context.Context, userID uint, maxLevel int) (*DownlineNode, error) {
	if maxLevel <= 0 || maxLevel > s.cfg.MaxDepth {
		maxLevel = s.cfg.MaxDepth
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	root := nodeFor(&user, 0)
	if err := s.expandDownline(ctx, root, maxLevel); err != nil {
		return nil, err
	}
	return root, nil
}

func (s *ReferralService) expandDownline(ctx context.Context, node *DownlineNode, maxLevel int) error {
	if node.Level >= maxLevel {
		return nil
	}

	var children []models.User
	err := s.db.WithContext(ctx).
		Where("upline_id = ?", node.UserID).
		Order("id").
		Find(&children).Error
	if err != nil {
		// Truncate this branch, keep the rest of the tree usable.
		zap.L().Warn("downline expansion failed",
			zap.Uint("user_id", node.UserID), zap.Error(err))
		return nil
	}

	for i := range children {
		child := nodeFor(&children[i], node.Level+1)
		if err := s.expandDownline(ctx, child, maxLevel); err != nil {
			return err
		}
		node.Children = append(node.Children, child)
	}
	return nil
}

func nodeFor(u *models.User, level int) *DownlineNode {
	return &DownlineNode{
		Level:           level,
		UserID:          u.ID,
		WalletAddress:   derefString(u.WalletAddress),
		InternalBalance: u.InternalBalance,
		IsActive:        u.IsActive,
		Children:        []*DownlineNode{},
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
