package market

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stocksense/pkg/errors"
)

// SentimentLabel classifies market mood for an instrument or the market overall
type SentimentLabel string

const (
	SentimentBearish SentimentLabel = "bearish"
	SentimentNeutral SentimentLabel = "neutral"
	SentimentBullish SentimentLabel = "bullish"
)

// Valid reports whether the label is one of the enumerated variants
func (l SentimentLabel) Valid() bool {
	switch l {
	case SentimentBearish, SentimentNeutral, SentimentBullish:
		return true
	}
	return false
}

// Trend describes overall market direction
type Trend string

const (
	TrendUp       Trend = "up"
	TrendDown     Trend = "down"
	TrendSideways Trend = "sideways"
)

// Volatility buckets market turbulence
type Volatility string

const (
	VolatilityLow    Volatility = "low"
	VolatilityMedium Volatility = "medium"
	VolatilityHigh   Volatility = "high"
)

// Sentiment is a synthetic score/label pair approximating market mood
type Sentiment struct {
	Score      float64        `json:"score"` // -1 to 1
	Label      SentimentLabel `json:"label"`
	Confidence float64        `json:"confidence"` // 0 to 1
	Sources    int            `json:"sources"`
	Keywords   []string       `json:"keywords"`
}

// Validate checks score/confidence ranges and the label enum
func (s Sentiment) Validate() error {
	if s.Score < -1 || s.Score > 1 {
		return errors.NewValidationError("score", "must be within [-1, 1]", s.Score)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return errors.NewValidationError("confidence", "must be within [0, 1]", s.Confidence)
	}
	if !s.Label.Valid() {
		return errors.NewValidationError("label", "unknown sentiment label", string(s.Label))
	}
	return nil
}

// Stock is one point-in-time record of a tradable symbol.
// Snapshots are immutable: a refresh replaces the whole slice, individual
// records are never mutated in place.
type Stock struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent float64         `json:"changePercent"`
	Sentiment     Sentiment       `json:"sentiment"`
	Sector        string          `json:"sector"`
	MarketCap     int64           `json:"marketCap"`
}

// Condition aggregates market-wide mood
type Condition struct {
	Overall    Sentiment  `json:"overall"`
	VIX        float64    `json:"vix"`
	Trend      Trend      `json:"trend"`
	Volatility Volatility `json:"volatility"`
}

// Snapshot is one observation of the market: instruments plus condition
type Snapshot struct {
	Instruments []Stock   `json:"instruments"`
	Condition   Condition `json:"condition"`
	Timestamp   time.Time `json:"timestamp"`
}

// Provider supplies market snapshots to the agent loop
type Provider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}
