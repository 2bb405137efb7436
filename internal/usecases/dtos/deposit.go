package dtos

// ConfirmDepositDTO carries the raw query of a deposit confirmation request.
// Times are unix milliseconds.
type ConfirmDepositDTO struct {
	Coin      string `json:"coin" validate:"required,max=32"`
	TxID      string `json:"txid" validate:"required,max=256"`
	Size      string `json:"size" validate:"required,numeric"`
	StartTime string `json:"startTime" validate:"omitempty,numeric"`
	EndTime   string `json:"endTime" validate:"omitempty,numeric"`
}

// ListDepositsDTO pages backwards with IDLessThan, the last orderId of the previous page.
type ListDepositsDTO struct {
	Coin       string `json:"coin" validate:"required,max=32"`
	StartTime  string `json:"startTime" validate:"omitempty,numeric"`
	EndTime    string `json:"endTime" validate:"omitempty,numeric"`
	IDLessThan string `json:"idLessThan" validate:"omitempty,max=64"`
	Limit      string `json:"limit" validate:"omitempty,numeric"`
}
