package interactor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
	"github.com/mufasadev/ramp-reconciler/internal/domain/notifier"
	apperrors "github.com/mufasadev/ramp-reconciler/internal/errors"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
	"github.com/mufasadev/ramp-reconciler/pkg/signature"
)

const (
	notifyTimeout      = 5 * time.Second
	maxLoggedReference = 128
)

var minorUnits = decimal.NewFromInt(100)

// WebhookResult describes what a delivery did. Handled is false for event types that
// are acknowledged and ignored.
type WebhookResult struct {
	Event       string
	Handled     bool
	Changed     bool
	Transaction *models.Transaction
}

type WebhookInteractor struct {
	secret   string
	ledger   *LedgerInteractor
	notifier notifier.Notifier
	logger   *zerolog.Logger
}

func NewWebhookInteractor(secret string, ledger *LedgerInteractor, n notifier.Notifier) *WebhookInteractor {
	l := log.GetLogger()
	return &WebhookInteractor{
		secret:   secret,
		ledger:   ledger,
		notifier: n,
		logger:   &l,
	}
}

// HandlePaymentWebhook verifies raw against the signature header, then marks the
// referenced transaction paid. raw must be the body exactly as received.
func (i *WebhookInteractor) HandlePaymentWebhook(ctx context.Context, raw []byte, providedSignature string) (*WebhookResult, error) {
	if err := i.verify(raw, providedSignature); err != nil {
		return nil, err
	}

	// data is only decoded for charges; other event types carry unrelated shapes
	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apperrors.NewBadRequestError(apperrors.ErrInvalidRequestBody)
	}

	if envelope.Event != models.EventChargeSuccess {
		i.logger.Info().Str("event", envelope.Event).Msg("ignoring webhook event")
		return &WebhookResult{Event: envelope.Event}, nil
	}

	event := models.WebhookEvent{Event: envelope.Event}
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &event.Data); err != nil {
			return nil, apperrors.NewBadRequestError(apperrors.ErrInvalidRequestBody)
		}
	}

	logger := i.logger.With().Str("event", event.Event).Str("txid", event.Data.Reference).Logger()

	if event.Data.Reference == "" {
		return nil, apperrors.NewBadRequestError(apperrors.ErrReferenceRequired)
	}

	tx, err := i.ledger.FindByTxID(ctx, event.Data.Reference)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			logger.Warn().Msg("webhook for unknown transaction")
		}
		return nil, err
	}

	expected := tx.Amount.Mul(minorUnits)
	if !expected.Equal(decimal.NewFromInt(event.Data.Amount)) {
		logger.Warn().
			Str("expected_minor", expected.String()).
			Int64("received_minor", event.Data.Amount).
			Msg("webhook amount does not match transaction")
	}

	result, err := i.ledger.Transition(ctx, tx.TxID, models.StatusPaid)
	if err != nil {
		logger.Error().Err(err).Msg("failed to mark transaction paid")
		return nil, err
	}

	if result.Changed() {
		i.notify(ctx, logger, *result.Event)
	}

	return &WebhookResult{
		Event:       event.Event,
		Handled:     true,
		Changed:     result.Changed(),
		Transaction: result.Transaction,
	}, nil
}

func (i *WebhookInteractor) verify(raw []byte, providedSignature string) error {
	err := signature.Verify(raw, providedSignature, i.secret)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, signature.ErrMissingSecret):
		i.logger.Error().Msg("webhook secret is not configured")
		return apperrors.NewConfigurationError(err.Error())
	case errors.Is(err, signature.ErrMissingSignature), errors.Is(err, signature.ErrMalformedSignature):
		return apperrors.NewBadRequestError(err.Error())
	default:
		i.logger.Warn().Str("txid", unverifiedReference(raw)).Msg("webhook signature mismatch")
		return apperrors.NewAuthenticationError(err.Error())
	}
}

// unverifiedReference pulls data.reference out of an unauthenticated body. It is for
// log correlation only and must never drive a decision.
func unverifiedReference(raw []byte) string {
	var body struct {
		Data struct {
			Reference json.RawMessage `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Data.Reference) == 0 {
		return ""
	}

	var ref string
	if err := json.Unmarshal(body.Data.Reference, &ref); err != nil {
		ref = string(body.Data.Reference)
	}
	if len(ref) > maxLoggedReference {
		ref = ref[:maxLoggedReference]
	}
	return ref
}

// notify is best-effort. The status is already committed, so failures are only logged.
func (i *WebhookInteractor) notify(ctx context.Context, logger zerolog.Logger, event models.StatusChangedEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	notifications := []notifier.Notification{
		{Audience: notifier.AudienceUser, Event: event, Message: "Your payment has been received"},
		{Audience: notifier.AudienceAdmin, Event: event, Message: "Transaction " + event.TxID + " marked " + event.NewStatus.String()},
	}

	for _, n := range notifications {
		if err := i.notifier.Notify(ctx, n); err != nil {
			logger.Error().Err(err).Str("audience", string(n.Audience)).Msg(apperrors.ErrFailedNotify)
		}
	}
}
