package bitget

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/mufasadev/ramp-reconciler/internal/domain/exchange"
	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
	"github.com/mufasadev/ramp-reconciler/internal/errors"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
	"github.com/mufasadev/ramp-reconciler/pkg/signature"
)

const (
	DepositRecordsPath = "/api/v2/spot/wallet/deposit-records"
	AccountInfoPath    = "/api/v2/spot/account/info"

	DefaultLimit          = 100
	DefaultTimeout        = 15 * time.Second
	DefaultMaxConcurrency = 8
	accountInfoMaxTries   = 3

	successCode  = "00000"
	maxBodyBytes = 1 << 24
)

type Config struct {
	APIKey         string
	SecretKey      string
	Passphrase     string
	BaseURL        string
	Timeout        time.Duration
	MaxConcurrency int64
}

// envelope is the common Bitget response wrapper.
type envelope struct {
	Code        string          `json:"code"`
	Msg         string          `json:"msg"`
	RequestTime int64           `json:"requestTime"`
	Data        json.RawMessage `json:"data"`
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	sem        *semaphore.Weighted
	now        func() time.Time
	newBackOff func() backoff.BackOff
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithClock overrides the time source used for validation and request timestamps.
func WithClock(now func() time.Time) Option {
	return func(cl *Client) {
		cl.now = now
	}
}

// WithBackOff sets the policy between account info retries.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(cl *Client) {
		cl.newBackOff = f
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sem:        semaphore.NewWeighted(cfg.MaxConcurrency),
		now:        time.Now,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		logger: log.GetLogger().With().Str("component", "bitget").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ exchange.Client = (*Client)(nil)

// FetchDeposits returns the deposit records for q. It is not retried; signatures are
// time-bound, so a caller retrying gets a fresh timestamp anyway.
func (c *Client) FetchDeposits(ctx context.Context, q exchange.DepositQuery) ([]models.DepositRecord, error) {
	env, _, err := c.fetchDeposits(ctx, q)
	if err != nil {
		return nil, err
	}

	var records []models.DepositRecord
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err = json.Unmarshal(env.Data, &records); err != nil {
			return nil, &errors.UpstreamError{Op: DepositRecordsPath, Message: "malformed deposit records", Err: err}
		}
	}

	return records, nil
}

func (c *Client) FetchDepositsRaw(ctx context.Context, q exchange.DepositQuery) (json.RawMessage, error) {
	_, raw, err := c.fetchDeposits(ctx, q)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// GetAccountInfo is idempotent and therefore retried on transient failures, re-signed
// on every attempt.
func (c *Client) GetAccountInfo(ctx context.Context) (*models.AccountInfo, error) {
	op := func() (*models.AccountInfo, error) {
		env, _, err := c.get(ctx, AccountInfoPath, "")
		if err != nil {
			var upstream *errors.UpstreamError
			if errors.As(err, &upstream) && upstream.Retryable {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}

		info := &models.AccountInfo{}
		if err = json.Unmarshal(env.Data, info); err != nil {
			return nil, backoff.Permanent(&errors.UpstreamError{Op: AccountInfoPath, Message: "malformed account info", Err: err})
		}
		return info, nil
	}

	return backoff.Retry[*models.AccountInfo](ctx, op,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(accountInfoMaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn().Err(err).Dur("retry_in", next).Msg("retrying account info")
		}),
	)
}

func (c *Client) fetchDeposits(ctx context.Context, q exchange.DepositQuery) (*envelope, json.RawMessage, error) {
	query, err := c.depositQuery(q)
	if err != nil {
		return nil, nil, err
	}
	return c.get(ctx, DepositRecordsPath, query)
}

// depositQuery validates q and renders the canonical query string. Keys are in
// alphabetical order, which the exchange requires for the signature pre-hash.
func (c *Client) depositQuery(q exchange.DepositQuery) (string, error) {
	coin := strings.ToUpper(strings.TrimSpace(q.Coin))
	if coin == "" {
		return "", errors.NewValidationError("coin", "is required")
	}

	now := c.now()
	if q.StartTime.After(now) {
		return "", errors.NewValidationError("startTime", "must not be in the future")
	}
	if q.EndTime.After(now) {
		return "", errors.NewValidationError("endTime", "must not be in the future")
	}
	if !q.StartTime.IsZero() && !q.EndTime.IsZero() && q.StartTime.After(q.EndTime) {
		return "", errors.NewValidationError("startTime", "must not be after endTime")
	}

	limit := q.Limit
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	parts := []string{"coin=" + url.QueryEscape(coin)}
	if !q.EndTime.IsZero() {
		parts = append(parts, "endTime="+strconv.FormatInt(q.EndTime.UnixMilli(), 10))
	}
	if q.IDLessThan != "" {
		parts = append(parts, "idLessThan="+url.QueryEscape(q.IDLessThan))
	}
	parts = append(parts, "limit="+strconv.Itoa(limit))
	if !q.StartTime.IsZero() {
		parts = append(parts, "startTime="+strconv.FormatInt(q.StartTime.UnixMilli(), 10))
	}

	return strings.Join(parts, "&"), nil
}

func (c *Client) sign(timestamp, method, requestPath string) string {
	return signature.SignBase64SHA256(c.cfg.SecretKey, timestamp+method+requestPath)
}

// get issues a signed GET and returns the decoded envelope along with the raw body.
func (c *Client) get(ctx context.Context, path, query string) (*envelope, json.RawMessage, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, &errors.UpstreamError{Op: path, Message: "request cancelled", Err: err}
	}
	defer c.sem.Release(1)

	start := time.Now()
	env, raw, outcome, err := c.do(ctx, path, query)
	requestDurationSeconds.WithLabelValues(path).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(path, outcome).Inc()

	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", path).Str("outcome", outcome).Msg("bitget request failed")
		return nil, nil, err
	}

	return env, raw, nil
}

func (c *Client) do(ctx context.Context, path, query string) (*envelope, json.RawMessage, string, error) {
	requestPath := path
	if query != "" {
		requestPath += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+requestPath, nil)
	if err != nil {
		return nil, nil, "network_error", &errors.UpstreamError{Op: path, Message: "build request", Err: err}
	}

	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("locale", "en-US")
	req.Header.Set("ACCESS-KEY", c.cfg.APIKey)
	req.Header.Set("ACCESS-SIGN", c.sign(timestamp, http.MethodGet, requestPath))
	req.Header.Set("ACCESS-TIMESTAMP", timestamp)
	req.Header.Set("ACCESS-PASSPHRASE", c.cfg.Passphrase)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, "network_error", &errors.UpstreamError{
			Op:        path,
			Message:   "request failed",
			Retryable: ctx.Err() == nil,
			Err:       err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, "network_error", &errors.UpstreamError{
			Op:         path,
			StatusCode: resp.StatusCode,
			Message:    "read response",
			Retryable:  ctx.Err() == nil,
			Err:        err,
		}
	}

	env := &envelope{}
	decodeErr := json.Unmarshal(body, env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, "upstream_error", &errors.UpstreamError{
			Op:         path,
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Msg,
			Retryable:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	if decodeErr != nil {
		return nil, nil, "upstream_error", &errors.UpstreamError{
			Op:         path,
			StatusCode: resp.StatusCode,
			Message:    "malformed response",
			Err:        decodeErr,
		}
	}

	if env.Code != successCode {
		return nil, nil, "rejected", &errors.UpstreamError{
			Op:         path,
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Msg,
		}
	}

	return env, body, "ok", nil
}
