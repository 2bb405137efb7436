package exchange

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
)

// DepositQuery selects deposit records for one coin. Zero times are omitted from the request.
// Records come back newest first; IDLessThan set to the last orderId of a page fetches
// the next, older page.
type DepositQuery struct {
	Coin       string
	StartTime  time.Time
	EndTime    time.Time
	IDLessThan string
	Limit      int
}

// Client reads the exchange deposit ledger and account state. It never mutates anything.
type Client interface {
	FetchDeposits(ctx context.Context, q DepositQuery) ([]models.DepositRecord, error)
	// FetchDepositsRaw returns the exchange response body unmodified.
	FetchDepositsRaw(ctx context.Context, q DepositQuery) (json.RawMessage, error)
	GetAccountInfo(ctx context.Context) (*models.AccountInfo, error)
}
