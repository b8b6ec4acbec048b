package knowledge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksense/internal/domain/user"
	"stocksense/pkg/logger"
)

func init() {
	logger.Init("error", "test")
}

func TestAnalyzeTermScoring(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	tests := []struct {
		term       string
		complexity float64
	}{
		{"stock price", 1},
		{"dividend yield", 1},
		{"RSI indicator", 2},
		{"moving average", 2},
		{"implied volatility", 3},
		{"black scholes", 3},
		{"quantitative strategy", 2.5},
		{"how do i get rich quick", 2.5},
		{"xyzzy", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			svc.Reset()
			a := svc.AnalyzeTerm(ctx, tt.term)
			assert.Equal(t, tt.complexity, a.Complexity)
			assert.NotEmpty(t, a.Reasoning)
		})
	}
}

func TestAnalyzeTermIsTotal(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	for _, term := range []string{"", "   ", "!!!", "日本語", "a b c d e f g"} {
		a := svc.AnalyzeTerm(ctx, term)
		assert.True(t, a.Complexity >= 1 && a.Complexity <= 3, "term %q", term)
		assert.True(t, a.Tier.Valid(), "term %q", term)
		assert.True(t, a.Confidence > 0 && a.Confidence <= 1, "term %q", term)
	}
}

func TestAssessmentProgression(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	svc.AnalyzeTerm(ctx, "stock price")
	first := svc.Assessment()
	assert.Equal(t, user.TierBeginner, first.Tier)

	svc.AnalyzeTerm(ctx, "RSI indicator")
	second := svc.Assessment()
	assert.Equal(t, user.TierIntermediate, second.Tier)
	assert.Greater(t, second.Confidence, first.Confidence)
	assert.Equal(t, "progressing from simple to complex terms", second.SearchPattern)

	svc.AnalyzeTerm(ctx, "implied volatility")
	svc.AnalyzeTerm(ctx, "black scholes")
	svc.AnalyzeTerm(ctx, "greeks")
	third := svc.Assessment()
	assert.Equal(t, user.TierAdvanced, third.Tier)
}

func TestAssessmentAveragesWholeWindow(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	// Complexities 3, 3, 1 average to 2.33, over the advanced cutoff.
	// A single simple search must not outweigh the rest of the window.
	svc.AnalyzeTerm(ctx, "implied volatility")
	svc.AnalyzeTerm(ctx, "black scholes")
	svc.AnalyzeTerm(ctx, "stock")

	a := svc.Assessment()
	assert.Equal(t, user.TierAdvanced, a.Tier)
}

func TestRecommendationsFollowSearchTopics(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	svc.AnalyzeTerm(ctx, "dividend yield")
	a := svc.Assessment()
	assert.Contains(t, a.Recommendations, "Explore dividend growth investing strategies")
	assert.LessOrEqual(t, len(a.Recommendations), 4)

	svc.Reset()
	svc.AnalyzeTerm(ctx, "chart patterns")
	a = svc.Assessment()
	assert.Contains(t, a.Recommendations, "Study advanced technical analysis patterns")

	svc.Reset()
	svc.AnalyzeTerm(ctx, "options trading")
	a = svc.Assessment()
	assert.Contains(t, a.Recommendations, "Learn about risk management with derivatives")
	assert.LessOrEqual(t, len(a.Recommendations), 4)
}

func TestAssessmentEmptyHistory(t *testing.T) {
	svc := NewService(nil)

	a := svc.Assessment()
	assert.Equal(t, user.TierBeginner, a.Tier)
	assert.Equal(t, 0.5, a.Confidence)
	assert.Equal(t, "insufficient data", a.SearchPattern)
	assert.NotEmpty(t, a.Recommendations)
}

func TestHistoryWindowBounded(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	for i := 0; i < historyWindow+15; i++ {
		svc.AnalyzeTerm(ctx, "volatility")
	}
	assert.Len(t, svc.History(), historyWindow)
}

func TestReset(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	svc.AnalyzeTerm(ctx, "options")
	require.NotEmpty(t, svc.History())

	svc.Reset()
	assert.Empty(t, svc.History())
	assert.Equal(t, "insufficient data", svc.Assessment().SearchPattern)
}

func TestConfidenceCapped(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	svc.AnalyzeTerm(ctx, "stock")
	svc.AnalyzeTerm(ctx, "moving average")
	svc.AnalyzeTerm(ctx, "greeks")
	svc.AnalyzeTerm(ctx, "implied volatility")

	a := svc.Assessment()
	assert.LessOrEqual(t, a.Confidence, 1.0)
}

func TestDefinitionLookupLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Abstract":"A measure of dispersion of returns.","RelatedTopics":[{"Text":"Standard deviation"},{"Text":"VIX"}]}`))
	}))
	defer srv.Close()

	c := NewDefinitionClient(2 * time.Second)
	c.baseURL = srv.URL

	d := c.Lookup(context.Background(), "volatility")
	assert.False(t, d.FromFallback)
	assert.Equal(t, "A measure of dispersion of returns.", d.Definition)
	assert.Equal(t, []string{"Standard deviation", "VIX"}, d.Related)
}

func TestDefinitionLookupFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewDefinitionClient(2 * time.Second)
	c.baseURL = srv.URL

	d := c.Lookup(context.Background(), "volatility")
	assert.True(t, d.FromFallback)
	assert.NotEmpty(t, d.Definition)
	assert.Contains(t, d.Related, "risk")
	assert.NotEmpty(t, d.Reason)
}

func TestDefinitionLookupUnknownTermFallback(t *testing.T) {
	c := NewDefinitionClient(time.Millisecond)
	c.baseURL = "http://127.0.0.1:1"

	d := c.Lookup(context.Background(), "frobnication ratio")
	assert.True(t, d.FromFallback)
	assert.Contains(t, d.Definition, "frobnication ratio")
}
