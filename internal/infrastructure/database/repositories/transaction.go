package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
	"github.com/mufasadev/ramp-reconciler/internal/domain/repositories"
	apperrors "github.com/mufasadev/ramp-reconciler/internal/errors"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
	"github.com/mufasadev/ramp-reconciler/pkg/postgresql"
)

type TransactionRepositoryImpl struct {
	db     postgresql.Client
	logger *zerolog.Logger
}

// NewTransactionRepositoryImpl creates new instance of TransactionRepositoryImpl.
func NewTransactionRepositoryImpl(db postgresql.Client) repositories.TransactionRepository {
	l := log.GetLogger()
	return &TransactionRepositoryImpl{
		db:     db,
		logger: &l,
	}
}

const transactionColumns = `id::text, txid, user_id, user_fullname, user_username, user_email, coin, amount, coin_amount, type,
  country, wallet_address_used, wallet_address_sent_to, bank_name, account_name, account_number, status, created_at, updated_at`

const selectByTxID = `SELECT ` + transactionColumns + ` FROM transactions WHERE txid = $1`

// compareAndSwapStatus is the only statement that changes a status. The WHERE clause on
// the current status makes concurrent duplicates race on the row lock; the loser updates nothing.
const compareAndSwapStatus = `
UPDATE transactions
SET status = $3, updated_at = now()
WHERE txid = $1 AND status = $2
RETURNING ` + transactionColumns

const insertTransaction = `
INSERT INTO transactions (txid, user_id, user_fullname, user_username, user_email, coin, amount, coin_amount, type,
  country, wallet_address_used, wallet_address_sent_to, bank_name, account_name, account_number, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING ` + transactionColumns

// GetByTxID returns transaction by txid.
func (r *TransactionRepositoryImpl) GetByTxID(ctx context.Context, txid string) (*models.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRow(ctx, selectByTxID, txid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return tx, nil
}

// CompareAndSwapStatus updates the status when it still equals from.
func (r *TransactionRepositoryImpl) CompareAndSwapStatus(ctx context.Context, txid string, from, to models.Status) (*models.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRow(ctx, compareAndSwapStatus, txid, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("txid", txid).Str("from", from.String()).Str("to", to.String()).Msg("status swap lost")
			return nil, nil
		}
		return nil, fmt.Errorf("compare and swap status: %w", err)
	}

	return tx, nil
}

// Create inserts a new pending transaction.
func (r *TransactionRepositoryImpl) Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	status := t.Status
	if status == "" {
		status = models.StatusPending
	}

	args := []interface{}{
		t.TxID,
		t.UserID,
		t.UserFullname,
		t.UserUsername,
		t.UserEmail,
		strings.ToUpper(t.Coin),
		t.Amount,
		t.CoinAmount,
		t.Type,
		t.Country,
		t.WalletAddressUsed,
		t.WalletAddressSentTo,
		t.BankName,
		t.AccountName,
		t.AccountNumber,
		status,
	}

	created, err := scanTransaction(r.db.QueryRow(ctx, insertTransaction, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.SQLState() == repositories.UniqueViolationError {
			return nil, apperrors.NewTransactionDuplicateError()
		}
		r.logger.Error().Err(err).Str("txid", t.TxID).Msg("insert transaction")
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	return created, nil
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	tx := &models.Transaction{}
	err := row.Scan(
		&tx.ID,
		&tx.TxID,
		&tx.UserID,
		&tx.UserFullname,
		&tx.UserUsername,
		&tx.UserEmail,
		&tx.Coin,
		&tx.Amount,
		&tx.CoinAmount,
		&tx.Type,
		&tx.Country,
		&tx.WalletAddressUsed,
		&tx.WalletAddressSentTo,
		&tx.BankName,
		&tx.AccountName,
		&tx.AccountNumber,
		&tx.Status,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return tx, nil
}
