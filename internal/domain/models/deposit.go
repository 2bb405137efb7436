package models

import (
	"strconv"
	"time"
)

// DepositRecord is an entry of the exchange deposit ledger. It is fetched per request
// and never persisted.
type DepositRecord struct {
	OrderID     string `json:"orderId"`
	TradeID     string `json:"tradeId"`
	Coin        string `json:"coin"`
	Type        string `json:"type"`
	Size        string `json:"size"`
	Status      string `json:"status"`
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
	Chain       string `json:"chain"`
	Dest        string `json:"dest"`
	CTime       string `json:"cTime"`
	UTime       string `json:"uTime"`
}

// CreatedAt parses CTime (unix milliseconds). ok is false when the field is empty or invalid.
func (d DepositRecord) CreatedAt() (t time.Time, ok bool) {
	ms, err := strconv.ParseInt(d.CTime, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// AccountInfo is the subset of the exchange account payload exposed to operators.
type AccountInfo struct {
	UserID      string   `json:"userId"`
	InviterID   string   `json:"inviterId"`
	ChannelCode string   `json:"channelCode"`
	Channel     string   `json:"channel"`
	IPs         string   `json:"ips"`
	Authorities []string `json:"authorities"`
	ParentID    int64    `json:"parentId"`
	TraderType  string   `json:"traderType"`
	RegisTime   string   `json:"regisTime"`
}
