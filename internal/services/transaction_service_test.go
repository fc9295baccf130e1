package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/database"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
)

func TestFindTransactions_Filters(t *testing.T) {
	db := setupReferralTestDB()
	database.DB = db

	now := time.Now()
	entries := []models.Transaction{
		{CreatedAt: now.Add(-2 * time.Hour), UserID: 1, Amount: 500, Type: models.TransactionTypeDeposit, Operator: "0xme"},
		{CreatedAt: now.Add(-1 * time.Hour), UserID: 2, Amount: 100, Type: models.TransactionTypeBonus, LevelFrom: 1, FromUserID: 1, Operator: "system"},
		{CreatedAt: now, UserID: 3, Amount: 10, Type: models.TransactionTypeBonus, LevelFrom: 2, FromUserID: 1, Operator: "system"},
	}
	for i := range entries {
		assert.NoError(t, db.Create(&entries[i]).Error)
	}

	// No filter returns everything, newest first.
	all, total, err := FindTransactions(TransactionFilter{Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
	assert.Equal(t, uint(3), all[0].UserID)

	// By type.
	bonusType := models.TransactionTypeBonus
	bonuses, total, err := FindTransactions(TransactionFilter{Type: &bonusType, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, bonuses, 2)

	// By triggering member and level.
	from := uint(1)
	level := 2
	filtered, total, err := FindTransactions(TransactionFilter{FromUserID: &from, LevelFrom: &level, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, uint(3), filtered[0].UserID)

	// By amount range.
	minAmount := 50.0
	maxAmount := 200.0
	ranged, total, err := FindTransactions(TransactionFilter{MinAmount: &minAmount, MaxAmount: &maxAmount, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 100.0, ranged[0].Amount)

	// By time window.
	start := now.Add(-90 * time.Minute)
	windowed, total, err := FindTransactions(TransactionFilter{StartTime: &start, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, windowed, 2)
}

func TestGenerateTransactionCSV(t *testing.T) {
	entries := []models.Transaction{
		{
			ID:         1,
			CreatedAt:  time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			UserID:     2,
			Amount:     100,
			Type:       models.TransactionTypeBonus,
			LevelFrom:  1,
			FromUserID: 7,
			Reason:     "Level 1 referral bonus from member #7",
			Operator:   "system",
			Hash:       "abc123",
		},
	}

	content, err := GenerateTransactionCSV(entries)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "ID,Time,User ID,Type,Amount,Level,From User,Reason,Operator,Hash", lines[0])
	assert.Contains(t, lines[1], "bonus")
	assert.Contains(t, lines[1], "100.00")
	assert.Contains(t, lines[1], "abc123")
}
