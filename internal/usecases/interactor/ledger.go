package interactor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
	"github.com/mufasadev/ramp-reconciler/internal/domain/repositories"
	apperrors "github.com/mufasadev/ramp-reconciler/internal/errors"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
)

// maxTransitionAttempts bounds how often a lost compare-and-swap is re-validated.
const maxTransitionAttempts = 5

// TransitionResult is the record after a transition. Event is nil when nothing changed.
type TransitionResult struct {
	Transaction *models.Transaction
	Event       *models.StatusChangedEvent
}

func (r *TransitionResult) Changed() bool {
	return r.Event != nil
}

// LedgerInteractor owns transaction status changes. Every write goes through the
// status table and the repository compare-and-swap.
//
// TODO: nothing moves a transaction to StatusConfirmed yet. The deposit poll is
// read-only; once product decides whether a matched deposit confirms a transaction,
// call Transition(ctx, txid, models.StatusConfirmed) from DepositInteractor.
type LedgerInteractor struct {
	transactionRepository repositories.TransactionRepository
	logger                *zerolog.Logger
	now                   func() time.Time
}

func NewLedgerInteractor(transactionRepository repositories.TransactionRepository) *LedgerInteractor {
	l := log.GetLogger()
	return &LedgerInteractor{
		transactionRepository: transactionRepository,
		logger:                &l,
		now:                   time.Now,
	}
}

func (i *LedgerInteractor) FindByTxID(ctx context.Context, txid string) (*models.Transaction, error) {
	tx, err := i.transactionRepository.GetByTxID(ctx, txid)
	if err != nil {
		return nil, fmt.Errorf("find transaction %s: %w", txid, err)
	}
	if tx == nil {
		return nil, apperrors.NewNotFoundError("transaction", txid)
	}
	return tx, nil
}

// Transition moves txid to next. Requesting the current status is a no-op without an
// event; backward or unknown moves fail with InvalidTransitionError and write nothing.
func (i *LedgerInteractor) Transition(ctx context.Context, txid string, next models.Status) (*TransitionResult, error) {
	if !next.Valid() {
		return nil, apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", next))
	}

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		current, err := i.FindByTxID(ctx, txid)
		if err != nil {
			return nil, err
		}

		if current.Status == next {
			i.logger.Debug().Str("txid", txid).Str("status", next.String()).Msg("transition is a no-op")
			return &TransitionResult{Transaction: current}, nil
		}

		if !current.Status.CanTransition(next) {
			i.logger.Warn().Str("txid", txid).Str("from", current.Status.String()).Str("to", next.String()).Msg("rejected transition")
			return nil, apperrors.NewInvalidTransitionError(txid, current.Status.String(), next.String())
		}

		updated, err := i.transactionRepository.CompareAndSwapStatus(ctx, txid, current.Status, next)
		if err != nil {
			return nil, fmt.Errorf("transition %s to %s: %w", txid, next, err)
		}

		if updated == nil {
			// another writer changed the status between read and swap
			i.logger.Debug().Str("txid", txid).Int("attempt", attempt).Msg("status changed concurrently, re-validating")
			continue
		}

		event := &models.StatusChangedEvent{
			EventID:    uuid.NewString(),
			TxID:       updated.TxID,
			OldStatus:  current.Status,
			NewStatus:  updated.Status,
			UserID:     updated.UserID,
			UserEmail:  updated.UserEmail,
			Coin:       updated.Coin,
			Amount:     updated.Amount,
			Type:       updated.Type,
			OccurredAt: i.now().UTC(),
		}

		i.logger.Info().Str("txid", txid).Str("from", current.Status.String()).Str("to", next.String()).Msg("transaction status changed")
		return &TransitionResult{Transaction: updated, Event: event}, nil
	}

	return nil, fmt.Errorf("transition %s to %s: gave up after %d contended attempts", txid, next, maxTransitionAttempts)
}
