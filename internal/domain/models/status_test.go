package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusPaid, true},
		{StatusConfirmed, StatusPaid, true},
		{StatusPending, StatusPending, false},
		{StatusPaid, StatusPaid, false},
		{StatusPaid, StatusPending, false},
		{StatusPaid, StatusConfirmed, false},
		{StatusConfirmed, StatusPending, false},
		{Status("refunded"), StatusPaid, false},
		{StatusPending, Status("refunded"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusConfirmed.Valid())
	assert.True(t, StatusPaid.Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("PAID").Valid())
}

func TestDepositRecord_CreatedAt(t *testing.T) {
	ts, ok := DepositRecord{CTime: "1700000000000"}.CreatedAt()
	assert.True(t, ok)
	assert.Equal(t, int64(1700000000000), ts.UnixMilli())

	_, ok = DepositRecord{CTime: ""}.CreatedAt()
	assert.False(t, ok)
}
