package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusChangedEvent is emitted once per successful ledger transition.
type StatusChangedEvent struct {
	EventID    string          `json:"eventId"`
	TxID       string          `json:"txid"`
	OldStatus  Status          `json:"oldStatus"`
	NewStatus  Status          `json:"newStatus"`
	UserID     string          `json:"userId"`
	UserEmail  string          `json:"userEmail"`
	Coin       string          `json:"coin"`
	Amount     decimal.Decimal `json:"amount"`
	Type       TransactionType `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
}
