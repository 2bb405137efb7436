package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

var ValidTypes = map[TransactionType]struct{}{
	TransactionTypeBuy:  {},
	TransactionTypeSell: {},
}

// Transaction is a buy or sell request. User fields are a snapshot taken at creation time.
type Transaction struct {
	ID                  string          `db:"id" json:"id"`
	TxID                string          `db:"txid" json:"txid"`
	UserID              string          `db:"user_id" json:"userId"`
	UserFullname        string          `db:"user_fullname" json:"userFullname"`
	UserUsername        string          `db:"user_username" json:"userUsername"`
	UserEmail           string          `db:"user_email" json:"userEmail"`
	Coin                string          `db:"coin" json:"coin"`
	Amount              decimal.Decimal `db:"amount" json:"amount"`
	CoinAmount          decimal.Decimal `db:"coin_amount" json:"coinAmount"`
	Type                TransactionType `db:"type" json:"type"`
	Country             string          `db:"country" json:"country"`
	WalletAddressUsed   string          `db:"wallet_address_used" json:"walletAddressUsed"`
	WalletAddressSentTo *string         `db:"wallet_address_sent_to" json:"walletAddressSentTo,omitempty"`
	BankName            *string         `db:"bank_name" json:"bankName,omitempty"`
	AccountName         *string         `db:"account_name" json:"accountName,omitempty"`
	AccountNumber       *string         `db:"account_number" json:"accountNumber,omitempty"`
	Status              Status          `db:"status" json:"status"`
	CreatedAt           time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updatedAt"`
}
