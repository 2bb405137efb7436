package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
	"github.com/mufasadev/ramp-reconciler/internal/errors"
	"github.com/mufasadev/ramp-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/ramp-reconciler/internal/usecases/interactor"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
)

type DepositService interface {
	ConfirmDeposit(ctx context.Context, dto *dtos.ConfirmDepositDTO) (*interactor.ConfirmDepositResult, error)
	ListDeposits(ctx context.Context, dto *dtos.ListDepositsDTO) (json.RawMessage, error)
	AccountInfo(ctx context.Context) (*models.AccountInfo, error)
}

type DepositResponse struct {
	Success   bool        `json:"success"`
	Confirmed bool        `json:"confirmed"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

type DepositHandler struct {
	service DepositService
	logger  *zerolog.Logger
}

func NewDepositHandler(service DepositService) *DepositHandler {
	logger := log.GetLogger()
	return &DepositHandler{service: service, logger: &logger}
}

// ConfirmDeposit answers 200 when a matching deposit exists and 404 when none does.
func (h *DepositHandler) ConfirmDeposit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dto := &dtos.ConfirmDepositDTO{
		Coin:      q.Get("coin"),
		TxID:      q.Get("txid"),
		Size:      q.Get("size"),
		StartTime: q.Get("startTime"),
		EndTime:   q.Get("endTime"),
	}

	result, err := h.service.ConfirmDeposit(r.Context(), dto)
	if err != nil {
		h.logger.Error().Err(err).Str("txid", dto.TxID).Msg(errors.ErrFailedConfirmDeposit)
		httpErr := errors.ToHTTPError(err)
		writeJSON(w, httpErr.Code, DepositResponse{Message: httpErr.Message})
		return
	}

	if !result.Confirmed {
		writeJSON(w, http.StatusNotFound, DepositResponse{Message: "No matching deposit found"})
		return
	}

	writeJSON(w, http.StatusOK, DepositResponse{
		Success:   true,
		Confirmed: true,
		Message:   "Deposit confirmed",
		Data:      result.Deposit,
	})
}

// ListDeposits passes the exchange response through untouched.
func (h *DepositHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dto := &dtos.ListDepositsDTO{
		Coin:       q.Get("coin"),
		StartTime:  q.Get("startTime"),
		EndTime:    q.Get("endTime"),
		IDLessThan: q.Get("idLessThan"),
		Limit:      q.Get("limit"),
	}

	raw, err := h.service.ListDeposits(r.Context(), dto)
	if err != nil {
		h.logger.Error().Err(err).Str("coin", dto.Coin).Msg(errors.ErrFailedListDeposits)
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (h *DepositHandler) AccountInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.AccountInfo(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedGetAccountInfo)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
