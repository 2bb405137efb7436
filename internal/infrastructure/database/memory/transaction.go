package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
	"github.com/mufasadev/ramp-reconciler/internal/domain/repositories"
	apperrors "github.com/mufasadev/ramp-reconciler/internal/errors"
)

// TransactionRepository keeps transactions in a map. The compare-and-swap runs under
// the lock, so it gives the same single-winner guarantee as the conditional UPDATE.
// Interactor tests use it to assert how many writes a flow performed.
type TransactionRepository struct {
	mu     sync.Mutex
	byTxID map[string]models.Transaction
	swaps  int
	now    func() time.Time
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		byTxID: make(map[string]models.Transaction),
		now:    time.Now,
	}
}

var _ repositories.TransactionRepository = (*TransactionRepository)(nil)

func (r *TransactionRepository) GetByTxID(_ context.Context, txid string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.byTxID[txid]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (r *TransactionRepository) CompareAndSwapStatus(_ context.Context, txid string, from, to models.Status) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.byTxID[txid]
	if !ok || tx.Status != from {
		return nil, nil
	}

	tx.Status = to
	tx.UpdatedAt = r.now()
	r.byTxID[txid] = tx
	r.swaps++

	return &tx, nil
}

func (r *TransactionRepository) Create(_ context.Context, t *models.Transaction) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byTxID[t.TxID]; exists {
		return nil, apperrors.NewTransactionDuplicateError()
	}
	if t.Amount.IsNegative() || t.CoinAmount.IsNegative() {
		return nil, apperrors.NewValidationError("amount", "must not be negative")
	}

	tx := *t
	tx.ID = uuid.NewString()
	tx.Coin = strings.ToUpper(tx.Coin)
	if tx.Status == "" {
		tx.Status = models.StatusPending
	}
	tx.CreatedAt = r.now()
	tx.UpdatedAt = tx.CreatedAt
	r.byTxID[tx.TxID] = tx

	return &tx, nil
}

// Swaps returns how many status writes succeeded.
func (r *TransactionRepository) Swaps() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.swaps
}
