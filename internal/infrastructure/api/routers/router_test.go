package routers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mufasadev/ramp-reconciler/internal/di"
	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
	"github.com/mufasadev/ramp-reconciler/internal/infrastructure/api/handlers"
	"github.com/mufasadev/ramp-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/ramp-reconciler/internal/usecases/interactor"
)

type stubProcessor struct{}

func (stubProcessor) HandlePaymentWebhook(context.Context, []byte, string) (*interactor.WebhookResult, error) {
	return &interactor.WebhookResult{Handled: true}, nil
}

type stubDeposits struct{}

func (stubDeposits) ConfirmDeposit(context.Context, *dtos.ConfirmDepositDTO) (*interactor.ConfirmDepositResult, error) {
	return &interactor.ConfirmDepositResult{}, nil
}

func (stubDeposits) ListDeposits(context.Context, *dtos.ListDepositsDTO) (json.RawMessage, error) {
	return json.RawMessage(`{"code":"00000","data":[]}`), nil
}

func (stubDeposits) AccountInfo(context.Context) (*models.AccountInfo, error) {
	panic("exchange exploded")
}

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

func newTestRouter() http.Handler {
	return NewRouter(&di.Container{
		WebhookHandler: handlers.NewWebhookHandler(stubProcessor{}),
		DepositHandler: handlers.NewDepositHandler(stubDeposits{}),
		HealthHandler:  handlers.NewHealthHandler(stubPinger{}),
	})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/api/v1/webhooks/paystack", http.StatusOK},
		{http.MethodGet, "/api/v1/webhooks/paystack", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/deposits", http.StatusOK},
		{http.MethodGet, "/api/v1/deposits/confirm?coin=USDT&txid=x&size=1", http.StatusNotFound},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/exchange/account", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
