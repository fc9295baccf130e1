package transaction

import (
	"time"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
)

type TransactionListItem struct {
	ID         uint                   `json:"id"`
	CreatedAt  time.Time              `json:"created_at"`
	UserID     uint                   `json:"user_id"`
	Amount     float64                `json:"amount"`
	Type       models.TransactionType `json:"type"`
	LevelFrom  int                    `json:"level_from,omitempty"`
	FromUserID uint                   `json:"from_user_id,omitempty"`
	Reason     string                 `json:"reason"`
	Operator   string                 `json:"operator"`
	Hash       string                 `json:"hash"`
}

type TransactionListResponse struct {
	Transactions []TransactionListItem `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}
