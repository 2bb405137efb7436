package repositories

import (
	"context"

	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
)

const (
	UniqueViolationError = "23505"
)

// TransactionRepository persists transactions. Status changes only go through
// CompareAndSwapStatus.
type TransactionRepository interface {
	// GetByTxID returns nil, nil when no transaction has the given txid.
	GetByTxID(ctx context.Context, txid string) (*models.Transaction, error)
	// CompareAndSwapStatus sets the status to `to` only if it currently equals `from`.
	// It returns nil, nil when nothing was updated: the row is missing or its status moved.
	CompareAndSwapStatus(ctx context.Context, txid string, from, to models.Status) (*models.Transaction, error)
	Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error)
}
