package interactor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mufasadev/ramp-reconciler/internal/domain/exchange"
	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
	apperrors "github.com/mufasadev/ramp-reconciler/internal/errors"
	"github.com/mufasadev/ramp-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/ramp-reconciler/internal/usecases/matcher"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
)

const (
	DefaultConfirmLookback = 24 * time.Hour
	DefaultListLookback    = 90 * 24 * time.Hour

	confirmPageSize = 100
	maxConfirmPages = 5
)

type ConfirmDepositResult struct {
	Confirmed bool                  `json:"confirmed"`
	Deposit   *models.DepositRecord `json:"deposit,omitempty"`
}

// DepositInteractor answers whether a claimed deposit reached the exchange. It never
// changes a transaction.
type DepositInteractor struct {
	client   exchange.Client
	matcher  *matcher.Matcher
	validate *validator.Validate
	lookback time.Duration
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewDepositInteractor(client exchange.Client, m *matcher.Matcher, validate *validator.Validate, lookback time.Duration) *DepositInteractor {
	if lookback <= 0 {
		lookback = DefaultConfirmLookback
	}
	l := log.GetLogger()
	return &DepositInteractor{
		client:   client,
		matcher:  m,
		validate: validate,
		lookback: lookback,
		now:      time.Now,
		logger:   &l,
	}
}

// ConfirmDeposit looks for a deposit matching dto within the requested window, or the
// configured lookback when none is given. Confirmed=false is a normal answer.
func (i *DepositInteractor) ConfirmDeposit(ctx context.Context, dto *dtos.ConfirmDepositDTO) (*ConfirmDepositResult, error) {
	if err := i.validateDTO(ctx, dto); err != nil {
		return nil, err
	}

	size, err := decimal.NewFromString(dto.Size)
	if err != nil || !size.IsPositive() {
		return nil, apperrors.NewValidationError("size", "must be a positive number")
	}

	now := i.now()
	start, end, err := window(dto.StartTime, dto.EndTime, now, i.lookback)
	if err != nil {
		return nil, err
	}

	want := matcher.Expectation{Coin: dto.Coin, Size: size, TxID: dto.TxID}
	logger := i.logger.With().Str("txid", dto.TxID).Str("coin", strings.ToUpper(dto.Coin)).Logger()

	query := exchange.DepositQuery{
		Coin:      dto.Coin,
		StartTime: start,
		EndTime:   end,
		Limit:     confirmPageSize,
	}

	var seen []models.DepositRecord
	for page := 1; page <= maxConfirmPages; page++ {
		deposits, err := i.client.FetchDeposits(ctx, query)
		if err != nil {
			return nil, err
		}
		seen = append(seen, deposits...)

		if found, ok := i.matcher.Match(deposits, want); ok {
			logger.Info().Str("trade_id", found.TradeID).Int("page", page).Msg("deposit confirmed")
			return &ConfirmDepositResult{Confirmed: true, Deposit: found}, nil
		}

		cursor := nextCursor(deposits, query.IDLessThan)
		if len(deposits) < confirmPageSize || cursor == "" {
			break
		}
		if page == maxConfirmPages {
			logger.Warn().Int("pages", page).Msg("deposit window not exhausted, giving up")
			break
		}
		query.IDLessThan = cursor
	}

	if e := logger.Debug(); e.Enabled() {
		e.Interface("mismatches", i.matcher.Explain(seen, want)).Int("candidates", len(seen)).Msg("no matching deposit")
	}
	return &ConfirmDepositResult{Confirmed: false}, nil
}

// nextCursor is the orderId of the oldest record on a page, or "" when paging cannot
// advance past previous.
func nextCursor(page []models.DepositRecord, previous string) string {
	if len(page) == 0 {
		return ""
	}
	cursor := page[len(page)-1].OrderID
	if cursor == previous {
		return ""
	}
	return cursor
}

// ListDeposits returns the exchange response unmodified. The window defaults to the
// last 90 days.
func (i *DepositInteractor) ListDeposits(ctx context.Context, dto *dtos.ListDepositsDTO) (json.RawMessage, error) {
	if err := i.validateDTO(ctx, dto); err != nil {
		return nil, err
	}

	start, end, err := window(dto.StartTime, dto.EndTime, i.now(), DefaultListLookback)
	if err != nil {
		return nil, err
	}

	limit := 0
	if dto.Limit != "" {
		if limit, err = strconv.Atoi(dto.Limit); err != nil {
			return nil, apperrors.NewValidationError("limit", "must be an integer")
		}
	}

	return i.client.FetchDepositsRaw(ctx, exchange.DepositQuery{
		Coin:       dto.Coin,
		StartTime:  start,
		EndTime:    end,
		IDLessThan: dto.IDLessThan,
		Limit:      limit,
	})
}

func (i *DepositInteractor) AccountInfo(ctx context.Context) (*models.AccountInfo, error) {
	return i.client.GetAccountInfo(ctx)
}

func (i *DepositInteractor) validateDTO(ctx context.Context, dto interface{}) error {
	err := i.validate.StructCtx(ctx, dto)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(fe.Field(), fmt.Sprintf("failed %q rule", fe.Tag()))
	}
	return apperrors.NewValidationError("", err.Error())
}

// window resolves optional millisecond bounds. Missing bounds default to [now-lookback, now].
func window(rawStart, rawEnd string, now time.Time, lookback time.Duration) (time.Time, time.Time, error) {
	end := now
	if rawEnd != "" {
		ms, err := strconv.ParseInt(rawEnd, 10, 64)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("endTime", "must be unix milliseconds")
		}
		end = time.UnixMilli(ms)
	}

	start := end.Add(-lookback)
	if rawStart != "" {
		ms, err := strconv.ParseInt(rawStart, 10, 64)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("startTime", "must be unix milliseconds")
		}
		start = time.UnixMilli(ms)
	}

	return start, end, nil
}
