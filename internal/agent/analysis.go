package agent

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"stocksense/internal/domain/market"
	"stocksense/internal/domain/user"
)

// Urgency grades how quickly the dashboard should react
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// analyzeMarket builds the market narrative from the snapshot.
// Thresholds at ±0.3 split the overall score into bearish, neutral and
// bullish readings.
func analyzeMarket(snapshot *market.Snapshot) string {
	var bearish, bullish int
	for _, s := range snapshot.Instruments {
		switch s.Sentiment.Label {
		case market.SentimentBearish:
			bearish++
		case market.SentimentBullish:
			bullish++
		}
	}

	score := snapshot.Condition.Overall.Score
	total := len(snapshot.Instruments)

	switch {
	case score < -0.3:
		return fmt.Sprintf("Market sentiment is strongly bearish (%.2f). %d/%d stocks showing negative sentiment.", score, bearish, total)
	case score > 0.3:
		return fmt.Sprintf("Market sentiment is bullish (%.2f). %d/%d stocks showing positive sentiment.", score, bullish, total)
	default:
		return fmt.Sprintf("Market sentiment is neutral (%.2f). Mixed signals across sectors.", score)
	}
}

// analyzeUser builds the user narrative from the tracked profile
func analyzeUser(profile *user.Profile) string {
	recent := profile.SearchHistory
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	return fmt.Sprintf("User expertise: %s. Recent focus: %s. Activity level: %d interactions.",
		profile.ExpertiseTier, strings.Join(recent, ", "), len(profile.ClickEvents))
}

// recommendations derives advice from market conditions and the user's
// tier
func recommendations(snapshot *market.Snapshot, profile *user.Profile) []string {
	var out []string

	if snapshot.Condition.Overall.Score < -0.3 {
		out = append(out, "Consider defensive positions")
		out = append(out, "Monitor VIX levels closely")

		if worst := worstPerformer(snapshot.Instruments); worst != nil {
			out = append(out, fmt.Sprintf("Watch %s ($%s market cap) leading the decline",
				worst.Symbol, humanize.Comma(worst.MarketCap)))
		}
	}

	if profile.ExpertiseTier == user.TierBeginner {
		out = append(out, "Focus on educational content")
		out = append(out, "Simplify technical indicators")
	}

	return out
}

func worstPerformer(stocks []market.Stock) *market.Stock {
	var worst *market.Stock
	for i := range stocks {
		s := &stocks[i]
		if s.Sentiment.Label != market.SentimentBearish {
			continue
		}
		if worst == nil || s.ChangePercent < worst.ChangePercent {
			worst = s
		}
	}
	return worst
}

// urgencyFor grades the situation from overall sentiment magnitude and
// volatility
func urgencyFor(cond market.Condition) Urgency {
	score := cond.Overall.Score
	if score < 0 {
		score = -score
	}

	if score > 0.7 || cond.Volatility == market.VolatilityHigh {
		return UrgencyHigh
	}
	if score > 0.3 || cond.Volatility == market.VolatilityMedium {
		return UrgencyMedium
	}
	return UrgencyLow
}
