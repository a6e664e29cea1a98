// Package market fetches the daily quote snapshot for the subject symbol.
package market

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/ports"
	"DailyBrief/internal/retry"
)

const (
	// DefaultBaseURL is the Yahoo Finance query host.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultRateLimit is requests per second.
	DefaultRateLimit = 2

	trendWindow    = 5
	trendThreshold = 1.0
)

// ErrNoData is returned when the provider has no price history for a symbol.
var ErrNoData = errors.New("no price history")

// YahooClient implements ports.QuoteSource over the Yahoo chart endpoint.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     retry.Policy
	now        func() time.Time
	logger     *slog.Logger
}

var _ ports.QuoteSource = (*YahooClient)(nil)

// ClientOption configures the client.
type ClientOption func(*YahooClient)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *YahooClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *YahooClient) {
		c.httpClient = client
	}
}

// WithRateLimit sets a custom rate limit in requests per second.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *YahooClient) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithRetryPolicy overrides the per-request retry policy.
func WithRetryPolicy(policy retry.Policy) ClientOption {
	return func(c *YahooClient) {
		c.policy = policy
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ClientOption {
	return func(c *YahooClient) {
		c.now = now
	}
}

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *YahooClient) {
		c.logger = logger
	}
}

// NewYahooClient creates a client with the public endpoint defaults.
func NewYahooClient(opts ...ClientOption) *YahooClient {
	c := &YahooClient{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		policy:     retry.Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
		MarketCap          int64   `json:"marketCap"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// Snapshot loads five days of daily closes and derives the price, the change
// against the previous close and the five-day trend.
func (c *YahooClient) Snapshot(ctx context.Context, symbol string) (domain.MarketSnapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.MarketSnapshot{}, errors.New("empty symbol")
	}

	var body chartResponse
	endpoint := c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol) + "?range=5d&interval=1d"
	if err := c.get(ctx, endpoint, &body); err != nil {
		return domain.MarketSnapshot{}, errors.Wrapf(err, "chart %s", symbol)
	}
	if body.Chart.Error != nil {
		return domain.MarketSnapshot{}, errors.Newf("chart %s: %s", symbol, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return domain.MarketSnapshot{}, errors.Wrapf(ErrNoData, "chart %s", symbol)
	}

	return c.toSnapshot(symbol, body.Chart.Result[0])
}

func (c *YahooClient) toSnapshot(symbol string, r chartResult) (domain.MarketSnapshot, error) {
	var (
		closes []float64
		volume int64
	)
	if len(r.Indicators.Quote) > 0 {
		q := r.Indicators.Quote[0]
		for _, v := range q.Close {
			if v != nil && *v > 0 {
				closes = append(closes, *v)
			}
		}
		for i := len(q.Volume) - 1; i >= 0; i-- {
			if q.Volume[i] != nil {
				volume = *q.Volume[i]
				break
			}
		}
	}
	if len(closes) == 0 {
		return domain.MarketSnapshot{}, errors.Wrapf(ErrNoData, "chart %s", symbol)
	}

	current := closes[len(closes)-1]
	var change, changePercent float64
	if len(closes) > 1 {
		prev := closes[len(closes)-2]
		change = current - prev
		changePercent = change / prev * 100
	}

	c.debug("quote loaded", "symbol", symbol, "price", current, "points", len(closes))
	return domain.MarketSnapshot{
		Symbol:        symbol,
		CurrentPrice:  round2(current),
		Change:        round2(change),
		ChangePercent: round2(changePercent),
		Volume:        volume,
		MarketCap:     r.Meta.MarketCap,
		High52Week:    r.Meta.FiftyTwoWeekHigh,
		Low52Week:     r.Meta.FiftyTwoWeekLow,
		Trend:         domain.ClassifyTrend(closes, trendWindow, trendThreshold),
		LastUpdated:   c.now().UTC(),
	}, nil
}

func (c *YahooClient) get(ctx context.Context, endpoint string, out any) error {
	return c.policy.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limit wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Permanent(errors.Wrap(err, "build request"))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; DailyBrief/1.0)")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Transient(errors.Wrap(err, "request"))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return retry.FromStatus(resp.StatusCode, errors.Newf("yahoo %s: %s", resp.Status, strings.TrimSpace(string(payload))))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Permanent(errors.Wrap(err, "decode response"))
		}
		return nil
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (c *YahooClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
