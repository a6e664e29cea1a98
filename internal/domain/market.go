package domain

import "time"

// Trend classifies the short-term price direction.
type Trend string

const (
	TrendUp               Trend = "up"
	TrendDown             Trend = "down"
	TrendFlat             Trend = "flat"
	TrendInsufficientData Trend = "insufficient-data"
)

// MarketSnapshot is the single per-run quote record for the subject symbol.
type MarketSnapshot struct {
	Symbol        string    `json:"symbol"`
	CurrentPrice  float64   `json:"current_price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	MarketCap     int64     `json:"market_cap"`
	High52Week    float64   `json:"fifty_two_week_high"`
	Low52Week     float64   `json:"fifty_two_week_low"`
	Trend         Trend     `json:"trend"`
	LastUpdated   time.Time `json:"last_updated"`
	Error         string    `json:"error,omitempty"`
}

// HasPrice reports whether the snapshot carries a real quote.
func (m MarketSnapshot) HasPrice() bool {
	return m.CurrentPrice != 0
}

// PlaceholderSnapshot is the zeroed record written when no quote is available.
func PlaceholderSnapshot(symbol string, at time.Time, cause error) MarketSnapshot {
	snapshot := MarketSnapshot{
		Symbol:      symbol,
		Trend:       TrendInsufficientData,
		LastUpdated: at,
	}
	if cause != nil {
		snapshot.Error = cause.Error()
	}
	return snapshot
}

// ClassifyTrend compares the latest close with the first close of the window.
// Windows shorter than minPoints are reported as insufficient data.
func ClassifyTrend(closes []float64, minPoints int, thresholdPercent float64) Trend {
	if len(closes) < minPoints || len(closes) == 0 || closes[0] == 0 {
		return TrendInsufficientData
	}
	first := closes[0]
	last := closes[len(closes)-1]
	change := (last - first) / first * 100
	switch {
	case change > thresholdPercent:
		return TrendUp
	case change < -thresholdPercent:
		return TrendDown
	default:
		return TrendFlat
	}
}
