package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mufasadev/ramp-reconciler/internal/errors"
	"github.com/mufasadev/ramp-reconciler/internal/usecases/interactor"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
)

const (
	PaystackSignatureHeader = "x-paystack-signature"
	MaxWebhookBodySize      = 1 << 20
)

// PaymentWebhookProcessor verifies and applies a raw payment webhook body.
type PaymentWebhookProcessor interface {
	HandlePaymentWebhook(ctx context.Context, raw []byte, signature string) (*interactor.WebhookResult, error)
}

type WebhookHandler struct {
	processor PaymentWebhookProcessor
	logger    *zerolog.Logger
}

func NewWebhookHandler(processor PaymentWebhookProcessor) *WebhookHandler {
	logger := log.GetLogger().With().Str("component", "webhook_handler").Logger()
	return &WebhookHandler{processor: processor, logger: &logger}
}

// HandlePaystack reads the body once, unparsed, and hands the exact bytes to the
// processor for signature verification.
func (h *WebhookHandler) HandlePaystack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With().Str("request_id", middleware.GetReqID(ctx)).Logger()

	r.Body = http.MaxBytesReader(w, r.Body, MaxWebhookBodySize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			logger.Warn().Int64("limit", tooLarge.Limit).Msg(errors.ErrRequestBodyTooLarge)
			errors.HandleHTTPError(w, errors.NewPayloadTooLargeError(tooLarge.Limit))
			return
		}
		logger.Error().Err(err).Msg(errors.ErrFailedReadRequestBody)
		errors.HandleHTTPError(w, errors.NewBadRequestError(errors.ErrFailedReadRequestBody))
		return
	}

	result, err := h.processor.HandlePaymentWebhook(ctx, raw, r.Header.Get(PaystackSignatureHeader))
	if err != nil {
		logger.Error().Err(err).Msg(errors.ErrFailedProcessWebhook)
		errors.HandleHTTPError(w, err)
		return
	}

	message := "Webhook processed"
	if !result.Handled {
		message = "Event ignored"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(errors.HTTPError{Code: http.StatusOK, Message: message})
}
