package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksense/internal/adapters/config"
	"stocksense/internal/domain/market"
	"stocksense/internal/domain/user"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

func init() {
	logger.Init("error", "test")
}

func testProviderConfig() config.ProviderConfig {
	return config.ProviderConfig{
		FinnhubAPIKey: "demo",
		IEXAPIKey:     "pk_demo",
		NewsAPIKey:    "demo",
		HTTPTimeout:   2 * time.Second,
		RatePerSecond: 100,
	}
}

func TestFinnhubInsiderTransactionsLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/insider-transactions", r.URL.Path)
		assert.Equal(t, "demo", r.URL.Query().Get("token"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"data":[{"symbol":"AAPL","name":"Jane Roe","share":1000,"change":500,"transactionCode":"P","transactionPrice":180.25}]}`))
	}))
	defer srv.Close()

	c := NewFinnhubClient(testProviderConfig())
	c.http.baseURL = srv.URL

	res := c.InsiderTransactions(context.Background(), "AAPL")
	require.Equal(t, SourceLive, res.Source)
	assert.Empty(t, res.Reason)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Jane Roe", res.Data[0].Name)
	assert.Equal(t, int64(500), res.Data[0].Change)
}

func TestFinnhubFallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFinnhubClient(testProviderConfig())
	c.http.baseURL = srv.URL

	res := c.InsiderTransactions(context.Background(), "AAPL")
	require.Equal(t, SourceFallback, res.Source)
	assert.NotEmpty(t, res.Reason)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "Timothy D. Cook", res.Data[0].Name)
}

func TestFinnhubFallbackOnUnreachableHost(t *testing.T) {
	c := NewFinnhubClient(testProviderConfig())
	c.http.baseURL = "http://127.0.0.1:1"

	res := c.EarningsData(context.Background(), "AAPL")
	require.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Data, 1)
	assert.Equal(t, 1.40, res.Data[0].EPSActual)
}

func TestClientClassifiesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newHTTPClient("finnhub", srv.URL, "demo", "token", 50*time.Millisecond, 100)

	var out map[string]interface{}
	err := c.getJSON(context.Background(), "/quote", nil, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTimeout))
}

func TestAnalyzeInsidersEmpty(t *testing.T) {
	a := AnalyzeInsiders(nil, user.TierAdvanced)
	assert.Equal(t, "No recent insider trading activity", a.Summary)
	assert.Equal(t, "neutral", a.Recommendation)
}

func TestAnalyzeInsidersBeginner(t *testing.T) {
	txs := []InsiderTransaction{
		{Name: "A", Change: 100_000, TransactionCode: "P", TransactionPrice: 170},
		{Name: "B", Change: -20_000, TransactionCode: "S", TransactionPrice: 172},
	}

	a := AnalyzeInsiders(txs, user.TierBeginner)
	assert.Contains(t, a.Summary, "Executives bought 1 times recently")
	assert.Equal(t, "bullish", a.Recommendation)
	assert.Contains(t, a.Insights, "1 insider purchases vs 1 sales")
}

func TestAnalyzeInsidersIntermediate(t *testing.T) {
	txs := []InsiderTransaction{
		{Name: "A", Change: 60_000, TransactionCode: "P", TransactionPrice: 170},
		{Name: "B", Change: -200_000, TransactionCode: "S", TransactionPrice: 172},
	}

	a := AnalyzeInsiders(txs, user.TierIntermediate)
	assert.Equal(t, "Net insider activity: -140,000 shares", a.Summary)
	assert.Equal(t, "bearish", a.Recommendation)
	assert.Contains(t, a.Insights, "Purchase volume: 60,000 shares")
	assert.Contains(t, a.Insights, "Insider sentiment: Negative")
}

func TestAnalyzeInsidersAdvanced(t *testing.T) {
	txs := []InsiderTransaction{
		{Name: "A", Change: 300_000, TransactionCode: "P", TransactionPrice: 160},
		{Name: "B", Change: 50_000, TransactionCode: "P", TransactionPrice: 180},
	}

	a := AnalyzeInsiders(txs, user.TierAdvanced)
	assert.Equal(t, "strong_bullish", a.Recommendation)
	assert.Contains(t, a.Summary, "2 transactions")
	assert.Contains(t, a.Insights, "Net insider flow: +350,000 shares")
	assert.Contains(t, a.Insights, "Transaction price range: $160.00 - $180.00")
	assert.Contains(t, a.Insights, "Insider confidence ratio: 100.0%")
}

func TestIEXQuoteLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/MSFT/quote", r.URL.Path)
		w.Write([]byte(`{"symbol":"MSFT","companyName":"Microsoft Corporation","latestPrice":430.10,"change":5.20,"changePercent":0.012}`))
	}))
	defer srv.Close()

	c := NewIEXClient(testProviderConfig())
	c.http.baseURL = srv.URL

	res := c.GetQuote(context.Background(), "MSFT")
	require.Equal(t, SourceLive, res.Source)
	assert.Equal(t, "MSFT", res.Data.Symbol)
	assert.Equal(t, "430.1", res.Data.LatestPrice.String())
}

func TestIEXQuoteFallback(t *testing.T) {
	c := NewIEXClient(testProviderConfig())
	c.http.baseURL = "http://127.0.0.1:1"

	res := c.GetQuote(context.Background(), "AAPL")
	require.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, "AAPL", res.Data.Symbol)
	assert.Equal(t, "AAPL Inc.", res.Data.CompanyName)
	assert.Equal(t, "174.5", res.Data.LatestPrice.String())
}

func TestIEXBatchQuotesFallbackCoversAllSymbols(t *testing.T) {
	c := NewIEXClient(testProviderConfig())
	c.http.baseURL = "http://127.0.0.1:1"

	symbols := []string{"AAPL", "NVDA", "UNKNOWN"}
	res := c.BatchQuotes(context.Background(), symbols)
	require.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Data, 3)
	for _, sym := range symbols {
		assert.Equal(t, sym, res.Data[sym].Symbol)
	}
}

func TestIEXMoversFallback(t *testing.T) {
	c := NewIEXClient(testProviderConfig())
	c.http.baseURL = "http://127.0.0.1:1"

	res := c.Movers(context.Background(), MoversGainers)
	require.Equal(t, SourceFallback, res.Source)
	assert.NotEmpty(t, res.Data)
}

func TestNewsBreakingLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-headlines", r.URL.Path)
		assert.Equal(t, "business", r.URL.Query().Get("category"))
		w.Write([]byte(`{"articles":[{"source":{"name":"Reuters"},"title":"Breaking: Federal Reserve holds interest rate steady","description":"Markets respond with strong buying after the decision.","url":"https://example.com/a","publishedAt":"2025-08-20T12:00:00Z"}]}`))
	}))
	defer srv.Close()

	c := NewNewsClient(testProviderConfig())
	c.http.baseURL = srv.URL

	res := c.Breaking(context.Background())
	require.Equal(t, SourceLive, res.Source)
	require.Len(t, res.Data, 1)

	a := res.Data[0]
	assert.Equal(t, ImpactHigh, a.Impact)
	assert.Equal(t, SentimentPositive, a.Sentiment)
	assert.Equal(t, CategoryBusiness, a.Category)
}

func TestNewsBreakingFallback(t *testing.T) {
	c := NewNewsClient(testProviderConfig())
	c.http.baseURL = "http://127.0.0.1:1"

	res := c.Breaking(context.Background())
	require.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Data, 3)
	assert.Contains(t, res.Data[0].Title, "Fed Signals Potential Rate Cut")
	assert.Equal(t, ImpactHigh, res.Data[0].Impact)
}

func TestNewsPoliticalFallbackClassification(t *testing.T) {
	c := NewNewsClient(testProviderConfig())
	c.http.baseURL = "http://127.0.0.1:1"

	res := c.Political(context.Background())
	require.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Data, 2)
	assert.Equal(t, CategoryPolitics, res.Data[0].Category)
	assert.Contains(t, res.Data[0].AffectedSectors, "Technology")
}

func TestNewsSectorNewsScopesSectors(t *testing.T) {
	c := NewNewsClient(testProviderConfig())
	c.http.baseURL = "http://127.0.0.1:1"

	res := c.SectorNews(context.Background(), []string{"Energy", "Healthcare"})
	require.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Data, 2)
	require.NotEmpty(t, res.Data["Energy"])
	assert.Equal(t, []string{"Energy"}, res.Data["Energy"][0].AffectedSectors)
}

func TestArticleClassifiers(t *testing.T) {
	tests := []struct {
		title     string
		category  ArticleCategory
		impact    Impact
		sentiment ArticleSentiment
	}{
		{"Senate weighs new policy", CategoryPolitics, ImpactMedium, SentimentNeutral},
		{"Chip maker posts strong growth", CategoryTechnology, ImpactLow, SentimentPositive},
		{"Stock earnings miss sparks concern", CategoryBusiness, ImpactHigh, SentimentNegative},
		{"Local weather update", CategoryGeneral, ImpactLow, SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.category, categorize(tt.title, ""))
			assert.Equal(t, tt.impact, assessImpact(tt.title, ""))
			assert.Equal(t, tt.sentiment, articleSentiment(tt.title, ""))
		})
	}
}

func TestSimulatorSnapshotRanges(t *testing.T) {
	sim := NewSimulator(42)

	snap, err := sim.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, snap.Instruments)
	assert.False(t, snap.Timestamp.IsZero())

	for _, st := range snap.Instruments {
		require.NoError(t, st.Sentiment.Validate(), "symbol %s", st.Symbol)
		assert.True(t, st.Price.IsPositive(), "symbol %s", st.Symbol)
	}
	require.NoError(t, snap.Condition.Overall.Validate())
	assert.Greater(t, snap.Condition.VIX, 0.0)
}

func TestSimulatorPresets(t *testing.T) {
	sim := NewSimulator(7)
	ctx := context.Background()

	require.NoError(t, sim.SetPreset(PresetBearish))
	assert.Equal(t, PresetBearish, sim.Preset())

	snap, err := sim.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, market.SentimentBearish, snap.Condition.Overall.Label)
	assert.Equal(t, market.TrendDown, snap.Condition.Trend)
	assert.Equal(t, market.VolatilityHigh, snap.Condition.Volatility)

	require.NoError(t, sim.SetPreset(PresetBullish))
	snap, err = sim.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, market.SentimentBullish, snap.Condition.Overall.Label)
	assert.Equal(t, market.TrendUp, snap.Condition.Trend)

	require.NoError(t, sim.SetPreset(PresetVolatile))
	snap, err = sim.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, market.VolatilityHigh, snap.Condition.Volatility)
	assert.Greater(t, snap.Condition.VIX, 30.0)
}

func TestSimulatorRejectsUnknownPreset(t *testing.T) {
	sim := NewSimulator(1)
	assert.Error(t, sim.SetPreset(Preset("sideways")))
}

func TestSimulatorSnapshotCancelled(t *testing.T) {
	sim := NewSimulator(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Snapshot(ctx)
	assert.Error(t, err)
}
