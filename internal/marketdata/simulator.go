package marketdata

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"stocksense/internal/domain/market"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

// Preset forces the simulator into a fixed market regime
type Preset string

const (
	PresetNone     Preset = ""
	PresetBullish  Preset = "bullish"
	PresetBearish  Preset = "bearish"
	PresetVolatile Preset = "volatile"
	PresetNeutral  Preset = "neutral"
)

// Valid reports whether the preset is one of the enumerated variants
func (p Preset) Valid() bool {
	switch p {
	case PresetNone, PresetBullish, PresetBearish, PresetVolatile, PresetNeutral:
		return true
	}
	return false
}

const (
	barWindow    = 64
	smaPeriod    = 10
	atrPeriod    = 14
	maxPriceMove = 0.02 // per-snapshot jitter, fraction of price
)

// Simulator produces synthetic market snapshots from the built-in
// instrument catalog. Each call jitters prices and sentiment, appends a
// synthetic OHLC bar, and derives the market condition from indicator
// readings over the bar history.
type Simulator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	preset Preset
	log    *logger.Logger

	// rolling synthetic index series
	closes []float64
	highs  []float64
	lows   []float64
}

func NewSimulator(seed int64) *Simulator {
	s := &Simulator{
		rng: rand.New(rand.NewSource(seed)),
		log: logger.Get().With("provider", "simulator"),
	}
	s.seedBars()
	return s
}

// SetPreset forces the market regime on subsequent snapshots
func (s *Simulator) SetPreset(p Preset) error {
	if !p.Valid() {
		return errors.NewValidationError("preset", "unknown market preset", string(p))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.preset = p
	s.log.Infow("market preset changed", "preset", string(p))
	return nil
}

// Preset returns the currently forced regime, if any
func (s *Simulator) Preset() Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preset
}

// Snapshot implements market.Provider
func (s *Simulator) Snapshot(ctx context.Context) (*market.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "snapshot cancelled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	instruments := market.Catalog()
	for i := range instruments {
		s.jitter(&instruments[i])
	}

	score := marketScore(instruments)
	s.appendBar(score)

	return &market.Snapshot{
		Instruments: instruments,
		Condition:   s.condition(score),
		Timestamp:   time.Now(),
	}, nil
}

// jitter nudges one instrument's price and sentiment. Presets bias the
// direction instead of overriding individual records wholesale.
func (s *Simulator) jitter(st *market.Stock) {
	move := (s.rng.Float64()*2 - 1) * maxPriceMove
	scale := 1.0

	switch s.preset {
	case PresetBullish:
		move = s.rng.Float64() * maxPriceMove
	case PresetBearish:
		move = -s.rng.Float64() * maxPriceMove
	case PresetVolatile:
		scale = 3.0
	case PresetNeutral:
		scale = 0.2
	}
	move *= scale

	price, _ := st.Price.Float64()
	delta := price * move
	st.Price = st.Price.Add(decimal.NewFromFloat(delta)).Round(2)
	st.Change = st.Change.Add(decimal.NewFromFloat(delta)).Round(2)
	if price != 0 {
		st.ChangePercent += move * 100
	}

	st.Sentiment.Score = clampScore(st.Sentiment.Score + move*5)
	st.Sentiment.Label = labelFor(st.Sentiment.Score)
	st.Sentiment.Sources += s.rng.Intn(5)
}

// condition derives trend from SMA slope and volatility from the ATR
// ratio over the synthetic bar history. Presets short-circuit the
// derivation so tests and demos get a deterministic regime.
func (s *Simulator) condition(score float64) market.Condition {
	switch s.preset {
	case PresetBullish:
		return presetCondition(0.7, 14.5, market.TrendUp, market.VolatilityLow)
	case PresetBearish:
		return presetCondition(-0.7, 32.0, market.TrendDown, market.VolatilityHigh)
	case PresetVolatile:
		return presetCondition(score, 38.5, market.TrendSideways, market.VolatilityHigh)
	case PresetNeutral:
		return presetCondition(0.0, 16.0, market.TrendSideways, market.VolatilityLow)
	}

	trend := market.TrendSideways
	sma := talib.Sma(s.closes, smaPeriod)
	if n := len(sma); n >= 2 {
		slope := sma[n-1] - sma[n-2]
		switch {
		case slope > 0.05:
			trend = market.TrendUp
		case slope < -0.05:
			trend = market.TrendDown
		}
	}

	volatility := market.VolatilityLow
	vix := 15.0
	atr := talib.Atr(s.highs, s.lows, s.closes, atrPeriod)
	if n := len(atr); n > 0 && s.closes[len(s.closes)-1] != 0 {
		ratio := atr[n-1] / s.closes[len(s.closes)-1]
		vix = 12 + ratio*600
		switch {
		case ratio > 0.035:
			volatility = market.VolatilityHigh
		case ratio > 0.015:
			volatility = market.VolatilityMedium
		}
	}

	return market.Condition{
		Overall: market.Sentiment{
			Score:      score,
			Label:      labelFor(score),
			Confidence: 0.7 + s.rng.Float64()*0.2,
			Sources:    len(s.closes),
			Keywords:   conditionKeywords(trend, volatility),
		},
		VIX:        vix,
		Trend:      trend,
		Volatility: volatility,
	}
}

// seedBars fills the bar history so SMA and ATR have enough data from
// the first snapshot
func (s *Simulator) seedBars() {
	level := 100.0
	for i := 0; i < barWindow; i++ {
		level += (s.rng.Float64()*2 - 1) * 1.5
		s.pushBar(level)
	}
}

func (s *Simulator) appendBar(score float64) {
	last := s.closes[len(s.closes)-1]
	drift := score * 1.2
	noise := (s.rng.Float64()*2 - 1) * 0.8
	if s.preset == PresetVolatile {
		noise *= 4
	}
	s.pushBar(last + drift + noise)
}

func (s *Simulator) pushBar(close float64) {
	spread := 0.5 + s.rng.Float64()
	s.closes = append(s.closes, close)
	s.highs = append(s.highs, close+spread)
	s.lows = append(s.lows, close-spread)

	if len(s.closes) > barWindow {
		s.closes = s.closes[1:]
		s.highs = s.highs[1:]
		s.lows = s.lows[1:]
	}
}

// marketScore is the cap-weighted average of instrument sentiment scores
func marketScore(instruments []market.Stock) float64 {
	var weighted, total float64
	for _, st := range instruments {
		w := float64(st.MarketCap)
		weighted += st.Sentiment.Score * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return clampScore(weighted / total)
}

func presetCondition(score, vix float64, trend market.Trend, vol market.Volatility) market.Condition {
	return market.Condition{
		Overall: market.Sentiment{
			Score:      score,
			Label:      labelFor(score),
			Confidence: 0.9,
			Sources:    barWindow,
			Keywords:   conditionKeywords(trend, vol),
		},
		VIX:        vix,
		Trend:      trend,
		Volatility: vol,
	}
}

func labelFor(score float64) market.SentimentLabel {
	switch {
	case score > 0.3:
		return market.SentimentBullish
	case score < -0.3:
		return market.SentimentBearish
	}
	return market.SentimentNeutral
}

func conditionKeywords(trend market.Trend, vol market.Volatility) []string {
	keywords := []string{"simulation"}
	switch trend {
	case market.TrendUp:
		keywords = append(keywords, "rally", "momentum")
	case market.TrendDown:
		keywords = append(keywords, "selloff", "risk-off")
	default:
		keywords = append(keywords, "range-bound")
	}
	if vol == market.VolatilityHigh {
		keywords = append(keywords, "turbulence")
	}
	return keywords
}

func clampScore(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
