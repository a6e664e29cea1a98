package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/retry"
)

var fixedNow = time.Date(2024, 6, 3, 21, 0, 0, 0, time.UTC)

const chartBody = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL","regularMarketPrice":195.0,"fiftyTwoWeekHigh":199.62,"fiftyTwoWeekLow":164.08},
  "timestamp":[1,2,3,4,5],
  "indicators":{"quote":[{
    "close":[190.0,191.5,null,193.0,195.0],
    "volume":[100,200,300,400,null]
  }]}
}],"error":null}}`

func newClient(t *testing.T, h http.HandlerFunc) *YahooClient {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewYahooClient(
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRateLimit(1000),
		WithClock(func() time.Time { return fixedNow }),
		WithRetryPolicy(retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: func(context.Context, time.Duration) error { return nil }}),
	)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	requests := make(chan *http.Request, 1)
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests <- r.Clone(context.Background())
		_, _ = w.Write([]byte(chartBody))
	})

	snap, err := client.Snapshot(context.Background(), "aapl")
	require.NoError(t, err)

	req := <-requests
	assert.Equal(t, "/v8/finance/chart/AAPL", req.URL.Path)
	assert.Equal(t, "range=5d&interval=1d", req.URL.RawQuery)
	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, 195.0, snap.CurrentPrice)
	assert.Equal(t, 2.0, snap.Change)
	assert.Equal(t, 1.04, snap.ChangePercent)
	assert.Equal(t, int64(400), snap.Volume)
	assert.Equal(t, 199.62, snap.High52Week)
	assert.Equal(t, domain.TrendInsufficientData, snap.Trend, "only four usable closes")
	assert.Equal(t, fixedNow, snap.LastUpdated)
	assert.Empty(t, snap.Error)
}

func TestSnapshotTrend(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{},"indicators":{"quote":[{"close":[100,100.5,101,101.5,102],"volume":[1,1,1,1,1]}]}}]}}`))
	})

	snap, err := client.Snapshot(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, domain.TrendUp, snap.Trend)
}

func TestSnapshotRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(chartBody))
	})

	_, err := client.Snapshot(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSnapshotFailures(t *testing.T) {
	t.Parallel()

	cases := map[string]http.HandlerFunc{
		"not found": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"chart":{"error":{"code":"Not Found"}}}`, http.StatusNotFound)
		},
		"chart error": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
		},
		"no closes": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{},"indicators":{"quote":[{"close":[null,null]}]}}]}}`))
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
	}

	for name, h := range cases {
		h := h
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := newClient(t, h).Snapshot(context.Background(), "AAPL")
			require.Error(t, err)
		})
	}

	_, err := NewYahooClient().Snapshot(context.Background(), " ")
	assert.Error(t, err)

	_, err = newClient(t, cases["no closes"]).Snapshot(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, ErrNoData))
}
