package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type TransactionType string

const (
	TransactionTypeBonus       TransactionType = "bonus"
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeSystemAdmin TransactionType = "admin_adjustment"
)

// Transaction is an append-only ledger record. Bonus entries carry
// provenance: the referral level they were earned at and the member whose
// activation triggered them.
type Transaction struct {
	ID        uint            `gorm:"primarykey"`
	CreatedAt time.Time       `gorm:"precision:3"` // Millisecond precision
	UserID    uint            `gorm:"index;not null"`
	Amount    float64         `gorm:"type:decimal(20,8);not null"`
	Type      TransactionType `gorm:"type:varchar(50);index;default:'deposit'"`

	LevelFrom  int            `gorm:"default:0"` // 1-10 for bonus entries, 0 otherwise
	FromUserID uint           `gorm:"index;default:0"`
	Reason     string         `gorm:"type:text"`
	Metadata   datatypes.JSON `gorm:"type:jsonb"` // request context (ip, device), not hashed

	Operator   string `gorm:"type:varchar(100)"` // Email or 'system'
	OperatorID uint   `gorm:"index;default:0"`   // 0 for system, otherwise UserID
	Hash       string `gorm:"type:varchar(64);default:''"` // HMAC SHA256
}

// GenerateHash generates a tamper-proof hash for the transaction
func (t *Transaction) GenerateHash(secret string) string {
	data := fmt.Sprintf("%d|%d|%.8f|%s|%d|%d|%s|%s|%d",
		t.UserID, t.CreatedAt.UnixNano(), t.Amount, t.Type,
		t.LevelFrom, t.FromUserID, t.Reason, t.Operator, t.OperatorID)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
