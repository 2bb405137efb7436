package bitget

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mufasadev/ramp-reconciler/internal/domain/exchange"
	"github.com/mufasadev/ramp-reconciler/internal/errors"
	"github.com/mufasadev/ramp-reconciler/pkg/signature"
)

const (
	testKey        = "bg_key"
	testSecret     = "bg_secret"
	testPassphrase = "bg_pass"
)

var fixedNow = time.UnixMilli(1700000000000)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *int32) {
	t.Helper()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	}, opts...)

	c := NewClient(Config{
		APIKey:     testKey,
		SecretKey:  testSecret,
		Passphrase: testPassphrase,
		BaseURL:    srv.URL + "/",
		Timeout:    2 * time.Second,
	}, opts...)

	return c, &hits
}

func writeEnvelope(w http.ResponseWriter, code string, data interface{}) {
	raw, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(envelope{Code: code, Msg: "success", RequestTime: fixedNow.UnixMilli(), Data: raw})
}

func TestFetchDeposits_SignsCanonicalRequest(t *testing.T) {
	var gotURI string
	var gotHeaders http.Header

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		gotHeaders = r.Header.Clone()
		writeEnvelope(w, successCode, []map[string]string{
			{"coin": "USDT", "size": "100.00", "tradeId": "abc123", "status": "success", "cTime": "1699999999000"},
		})
	})

	start := fixedNow.Add(-24 * time.Hour)
	records, err := c.FetchDeposits(context.Background(), exchange.DepositQuery{
		Coin:      "usdt",
		StartTime: start,
		EndTime:   fixedNow,
		Limit:     500,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "abc123", records[0].TradeID)

	wantURI := fmt.Sprintf("%s?coin=USDT&endTime=%d&limit=100&startTime=%d",
		DepositRecordsPath, fixedNow.UnixMilli(), start.UnixMilli())
	assert.Equal(t, wantURI, gotURI)

	ts := gotHeaders.Get("ACCESS-TIMESTAMP")
	assert.Equal(t, "1700000000000", ts)
	assert.Equal(t, testKey, gotHeaders.Get("ACCESS-KEY"))
	assert.Equal(t, testPassphrase, gotHeaders.Get("ACCESS-PASSPHRASE"))
	assert.Equal(t, signature.SignBase64SHA256(testSecret, ts+"GET"+wantURI), gotHeaders.Get("ACCESS-SIGN"))
}

func TestFetchDeposits_OmitsZeroTimes(t *testing.T) {
	var gotURI string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		writeEnvelope(w, successCode, []interface{}{})
	})

	records, err := c.FetchDeposits(context.Background(), exchange.DepositQuery{Coin: "BTC"})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, DepositRecordsPath+"?coin=BTC&limit=100", gotURI)
}

func TestFetchDeposits_CursorInCanonicalOrder(t *testing.T) {
	var gotURI string
	var gotSign, gotTS string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		gotSign = r.Header.Get("ACCESS-SIGN")
		gotTS = r.Header.Get("ACCESS-TIMESTAMP")
		writeEnvelope(w, successCode, []interface{}{})
	})

	end := fixedNow.Add(-time.Minute)
	_, err := c.FetchDeposits(context.Background(), exchange.DepositQuery{
		Coin:       "USDT",
		EndTime:    end,
		IDLessThan: "1122334455",
		Limit:      50,
	})
	require.NoError(t, err)

	wantURI := fmt.Sprintf("%s?coin=USDT&endTime=%d&idLessThan=1122334455&limit=50", DepositRecordsPath, end.UnixMilli())
	assert.Equal(t, wantURI, gotURI)
	assert.Equal(t, signature.SignBase64SHA256(testSecret, gotTS+"GET"+wantURI), gotSign)
}

func TestFetchDeposits_ValidationBeforeNetwork(t *testing.T) {
	tests := []struct {
		name  string
		query exchange.DepositQuery
		field string
	}{
		{"future window", exchange.DepositQuery{Coin: "USDT", StartTime: fixedNow.Add(time.Second), EndTime: fixedNow.Add(2 * time.Second)}, "startTime"},
		{"future end", exchange.DepositQuery{Coin: "USDT", StartTime: fixedNow.Add(-time.Hour), EndTime: fixedNow.Add(time.Millisecond)}, "endTime"},
		{"inverted window", exchange.DepositQuery{Coin: "USDT", StartTime: fixedNow.Add(-time.Hour), EndTime: fixedNow.Add(-2 * time.Hour)}, "startTime"},
		{"missing coin", exchange.DepositQuery{Coin: "  "}, "coin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, successCode, nil)
			})

			_, err := c.FetchDeposits(context.Background(), tt.query)

			var validation *errors.ValidationError
			require.True(t, errors.As(err, &validation), "got %v", err)
			assert.Equal(t, tt.field, validation.Field)
			assert.Equal(t, int32(0), atomic.LoadInt32(hits))
		})
	}
}

func TestFetchDeposits_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		status    int
		code      string
		retryable bool
	}{
		{
			name: "non success code",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"code":"40014","msg":"Incorrect permissions","requestTime":1,"data":null}`))
			},
			status: http.StatusOK,
			code:   "40014",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			status:    http.StatusBadGateway,
			retryable: true,
		},
		{
			name: "client error with envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"code":"40009","msg":"sign signature error"}`))
			},
			status: http.StatusBadRequest,
			code:   "40009",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, hits := newTestClient(t, tt.handler)

			_, err := c.FetchDeposits(context.Background(), exchange.DepositQuery{Coin: "USDT"})

			var upstream *errors.UpstreamError
			require.True(t, errors.As(err, &upstream), "got %v", err)
			assert.Equal(t, tt.status, upstream.StatusCode)
			assert.Equal(t, tt.code, upstream.Code)
			assert.Equal(t, tt.retryable, upstream.Retryable)
			assert.Equal(t, int32(1), atomic.LoadInt32(hits), "deposit query is never retried")
		})
	}
}

func TestFetchDeposits_TimeoutIsRetryable(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	defer close(release)

	_, err := c.FetchDeposits(context.Background(), exchange.DepositQuery{Coin: "USDT"})

	var upstream *errors.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.True(t, upstream.Retryable)
}

func TestFetchDepositsRaw_Passthrough(t *testing.T) {
	body := `{"code":"00000","msg":"success","requestTime":1,"data":[{"coin":"USDT","extra":"kept"}]}`
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	raw, err := c.FetchDepositsRaw(context.Background(), exchange.DepositQuery{Coin: "USDT"})
	require.NoError(t, err)
	assert.JSONEq(t, body, string(raw))
}

func TestGetAccountInfo_RetriesTransientFailures(t *testing.T) {
	var calls int32
	var mu sync.Mutex
	timestamps := map[string]struct{}{}
	tick := fixedNow

	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		timestamps[r.Header.Get("ACCESS-TIMESTAMP")] = struct{}{}
		mu.Unlock()

		assert.Equal(t, AccountInfoPath, r.URL.RequestURI())
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeEnvelope(w, successCode, map[string]interface{}{"userId": "42", "authorities": []string{"srw"}})
	}, WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Millisecond)
		return tick
	}))

	info, err := c.GetAccountInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", info.UserID)
	assert.Equal(t, []string{"srw"}, info.Authorities)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
	assert.Len(t, timestamps, 3, "each attempt is signed with a fresh timestamp")
}

func TestGetAccountInfo_GivesUpAfterMaxTries(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.GetAccountInfo(context.Background())

	var upstream *errors.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, int32(accountInfoMaxTries), atomic.LoadInt32(hits))
}

func TestGetAccountInfo_PermanentFailureNotRetried(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"40006","msg":"Invalid ACCESS_KEY","requestTime":1,"data":null}`))
	})

	_, err := c.GetAccountInfo(context.Background())

	var upstream *errors.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "40006", upstream.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestClient_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		writeEnvelope(w, successCode, []interface{}{})
	}))
	defer srv.Close()

	c := NewClient(Config{
		APIKey:         testKey,
		SecretKey:      testSecret,
		Passphrase:     testPassphrase,
		BaseURL:        srv.URL,
		MaxConcurrency: 2,
	}, WithClock(func() time.Time { return fixedNow }))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.FetchDeposits(context.Background(), exchange.DepositQuery{Coin: "USDT"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Positive(t, atomic.LoadInt32(&peak))
}
