package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
	apperrors "github.com/mufasadev/ramp-reconciler/internal/errors"
)

func TestTransactionRepository(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Transaction{TxID: "ref-1", Coin: "usdt", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, "USDT", created.Coin)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, &models.Transaction{TxID: "ref-1"})
	var dup *apperrors.TransactionDuplicateError
	assert.ErrorAs(t, err, &dup)

	missing, err := repo.GetByTxID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	stale, err := repo.CompareAndSwapStatus(ctx, "ref-1", models.StatusConfirmed, models.StatusPaid)
	require.NoError(t, err)
	assert.Nil(t, stale)
	assert.Equal(t, 0, repo.Swaps())

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tx, _ := repo.CompareAndSwapStatus(ctx, "ref-1", models.StatusPending, models.StatusPaid); tx != nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, 1, repo.Swaps())
	got, _ := repo.GetByTxID(ctx, "ref-1")
	assert.Equal(t, models.StatusPaid, got.Status)
}

func TestTransactionRepository_ReturnsCopies(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()
	_, err := repo.Create(ctx, &models.Transaction{TxID: "ref-1"})
	require.NoError(t, err)

	got, _ := repo.GetByTxID(ctx, "ref-1")
	got.Status = models.StatusPaid

	again, _ := repo.GetByTxID(ctx, "ref-1")
	assert.Equal(t, models.StatusPending, again.Status)
}
