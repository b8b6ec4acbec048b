package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"

	"stocksense/internal/adapters/config"
	"stocksense/internal/domain/user"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// InsiderTransaction is one reported insider trade
type InsiderTransaction struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Share            int64   `json:"share"`
	Change           int64   `json:"change"`
	FilingDate       string  `json:"filingDate"`
	TransactionDate  string  `json:"transactionDate"`
	TransactionCode  string  `json:"transactionCode"`
	TransactionPrice float64 `json:"transactionPrice"`
}

// InsiderSentiment is the monthly insider sentiment reading
type InsiderSentiment struct {
	Symbol string  `json:"symbol"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Change int64   `json:"change"`
	MSPR   float64 `json:"mspr"`
}

// Earnings is one quarterly earnings report
type Earnings struct {
	Symbol          string  `json:"symbol"`
	Date            string  `json:"date"`
	EPSActual       float64 `json:"epsActual"`
	EPSEstimate     float64 `json:"epsEstimate"`
	RevenueActual   int64   `json:"revenueActual"`
	RevenueEstimate int64   `json:"revenueEstimate"`
	Surprise        float64 `json:"surprise"`
	SurprisePercent float64 `json:"surprisePercent"`
}

// CompanyNews is one company news item
type CompanyNews struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// FinnhubClient fetches insider and earnings data, degrading to canned
// payloads on any failure
type FinnhubClient struct {
	http *httpClient
}

func NewFinnhubClient(cfg config.ProviderConfig) *FinnhubClient {
	return &FinnhubClient{
		http: newHTTPClient("finnhub", finnhubBaseURL, cfg.FinnhubAPIKey, "token", cfg.HTTPTimeout, cfg.RatePerSecond),
	}
}

// InsiderTransactions returns insider trades for the trailing month
func (c *FinnhubClient) InsiderTransactions(ctx context.Context, symbol string) Result[[]InsiderTransaction] {
	const endpoint = "/stock/insider-transactions"

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", time.Now().AddDate(0, 0, -30).Format("2006-01-02"))
	params.Set("to", time.Now().Format("2006-01-02"))

	var payload struct {
		Data []InsiderTransaction `json:"data"`
	}
	if err := c.http.getJSON(ctx, endpoint, params, &payload); err != nil {
		return Fallback(mockInsiderTransactions(), c.http.fellBack(endpoint, err))
	}

	c.http.live(endpoint)
	return Live(payload.Data)
}

// InsiderSentimentData returns monthly insider sentiment readings
func (c *FinnhubClient) InsiderSentimentData(ctx context.Context, symbol string) Result[[]InsiderSentiment] {
	const endpoint = "/stock/insider-sentiment"

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", "2024-01-01")
	params.Set("to", "2024-12-31")

	var payload struct {
		Data []InsiderSentiment `json:"data"`
	}
	if err := c.http.getJSON(ctx, endpoint, params, &payload); err != nil {
		return Fallback(mockInsiderSentiment(), c.http.fellBack(endpoint, err))
	}

	c.http.live(endpoint)
	return Live(payload.Data)
}

// EarningsData returns quarterly earnings reports
func (c *FinnhubClient) EarningsData(ctx context.Context, symbol string) Result[[]Earnings] {
	const endpoint = "/stock/earnings"

	params := url.Values{}
	params.Set("symbol", symbol)

	var payload []Earnings
	if err := c.http.getJSON(ctx, endpoint, params, &payload); err != nil {
		return Fallback(mockEarnings(), c.http.fellBack(endpoint, err))
	}

	c.http.live(endpoint)
	return Live(payload)
}

// News returns company news for the trailing week
func (c *FinnhubClient) News(ctx context.Context, symbol string) Result[[]CompanyNews] {
	const endpoint = "/company-news"

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", time.Now().AddDate(0, 0, -7).Format("2006-01-02"))
	params.Set("to", time.Now().Format("2006-01-02"))

	var payload []CompanyNews
	if err := c.http.getJSON(ctx, endpoint, params, &payload); err != nil {
		return Fallback(mockCompanyNews(time.Now()), c.http.fellBack(endpoint, err))
	}

	c.http.live(endpoint)
	return Live(payload)
}

// InsiderAnalysis summarizes insider activity for one expertise tier
type InsiderAnalysis struct {
	Summary        string   `json:"summary"`
	Insights       []string `json:"insights"`
	Recommendation string   `json:"recommendation"`
}

// AnalyzeInsiders shapes the insider trading picture for the user's
// tier: beginners get plain language, advanced users get flow metrics.
func AnalyzeInsiders(transactions []InsiderTransaction, tier user.ExpertiseTier) InsiderAnalysis {
	if len(transactions) == 0 {
		return InsiderAnalysis{
			Summary:        "No recent insider trading activity",
			Recommendation: "neutral",
		}
	}

	var purchases, sales []InsiderTransaction
	var totalPurchases, totalSales int64
	for _, t := range transactions {
		switch {
		case t.TransactionCode == "P" && t.Change > 0:
			purchases = append(purchases, t)
			totalPurchases += t.Change
		case t.TransactionCode == "S" && t.Change < 0:
			sales = append(sales, t)
			totalSales += -t.Change
		}
	}
	net := totalPurchases - totalSales

	switch tier {
	case user.TierAdvanced:
		return advancedInsiderAnalysis(transactions, purchases, sales, totalPurchases, totalSales, net)
	case user.TierIntermediate:
		return intermediateInsiderAnalysis(transactions, purchases, sales, totalPurchases, totalSales, net)
	default:
		return beginnerInsiderAnalysis(purchases, sales, net)
	}
}

func beginnerInsiderAnalysis(purchases, sales []InsiderTransaction, net int64) InsiderAnalysis {
	summary := "Mixed insider activity - no clear signal"
	if net > 0 {
		summary = fmt.Sprintf("Executives bought %d times recently - usually a good sign!", len(purchases))
	} else if net < 0 {
		summary = "Executives sold more than they bought recently - might be cautious"
	}

	buySignal := "Be careful when insiders are selling"
	if net > 0 {
		buySignal = "When company leaders buy stock, they often expect good news"
	}

	return InsiderAnalysis{
		Summary: summary,
		Insights: []string{
			fmt.Sprintf("%d insider purchases vs %d sales", len(purchases), len(sales)),
			buySignal,
			"Insider trading is legal when reported properly",
		},
		Recommendation: thresholdRecommendation(net, 50_000),
	}
}

func intermediateInsiderAnalysis(all, purchases, sales []InsiderTransaction, totalPurchases, totalSales, net int64) InsiderAnalysis {
	mood := "Neutral"
	if net > 0 {
		mood = "Positive"
	} else if net < 0 {
		mood = "Negative"
	}

	return InsiderAnalysis{
		Summary: fmt.Sprintf("Net insider activity: %s shares", signedComma(net)),
		Insights: []string{
			fmt.Sprintf("Purchase volume: %s shares", humanize.Comma(totalPurchases)),
			fmt.Sprintf("Sale volume: %s shares", humanize.Comma(totalSales)),
			fmt.Sprintf("Insider sentiment: %s", mood),
			fmt.Sprintf("Average transaction size: %s shares", humanize.Comma((totalPurchases+totalSales)/int64(len(all)))),
		},
		Recommendation: thresholdRecommendation(net, 100_000),
	}
}

func advancedInsiderAnalysis(all, purchases, sales []InsiderTransaction, totalPurchases, totalSales, net int64) InsiderAnalysis {
	minPrice, maxPrice := all[0].TransactionPrice, all[0].TransactionPrice
	var priceSum float64
	for _, t := range all {
		priceSum += t.TransactionPrice
		if t.TransactionPrice < minPrice {
			minPrice = t.TransactionPrice
		}
		if t.TransactionPrice > maxPrice {
			maxPrice = t.TransactionPrice
		}
	}
	avgPrice := priceSum / float64(len(all))

	confidence := 0.0
	if totalPurchases+totalSales > 0 {
		confidence = float64(totalPurchases) / float64(totalPurchases+totalSales) * 100
	}

	momentum := "Insider selling may indicate overvaluation or profit-taking"
	if net > 0 {
		momentum = "Positive insider momentum suggests confidence in near-term catalysts"
	}

	recommendation := "neutral"
	switch {
	case net > 200_000:
		recommendation = "strong_bullish"
	case net > 50_000:
		recommendation = "bullish"
	case net < -200_000:
		recommendation = "strong_bearish"
	case net < -50_000:
		recommendation = "bearish"
	}

	return InsiderAnalysis{
		Summary: fmt.Sprintf("Comprehensive insider analysis: %d transactions, net %s shares", len(all), humanize.Comma(net)),
		Insights: []string{
			fmt.Sprintf("Net insider flow: %s shares", signedComma(net)),
			fmt.Sprintf("Transaction price range: $%.2f - $%.2f", minPrice, maxPrice),
			fmt.Sprintf("Average transaction price: $%.2f", avgPrice),
			fmt.Sprintf("Insider confidence ratio: %.1f%%", confidence),
			fmt.Sprintf("Recent filing velocity: %d filings in 30 days", len(all)),
			momentum,
		},
		Recommendation: recommendation,
	}
}

func thresholdRecommendation(net, threshold int64) string {
	if net > threshold {
		return "bullish"
	}
	if net < -threshold {
		return "bearish"
	}
	return "neutral"
}

func signedComma(n int64) string {
	if n > 0 {
		return "+" + humanize.Comma(n)
	}
	return humanize.Comma(n)
}

func mockInsiderTransactions() []InsiderTransaction {
	return []InsiderTransaction{
		{
			Symbol:           "AAPL",
			Name:             "Timothy D. Cook",
			Share:            5_000_000,
			Change:           100_000,
			FilingDate:       "2025-08-05",
			TransactionDate:  "2025-08-03",
			TransactionCode:  "P",
			TransactionPrice: 174.50,
		},
		{
			Symbol:           "AAPL",
			Name:             "Luca Maestri",
			Share:            1_500_000,
			Change:           50_000,
			FilingDate:       "2025-08-04",
			TransactionDate:  "2025-08-02",
			TransactionCode:  "P",
			TransactionPrice: 175.20,
		},
	}
}

func mockInsiderSentiment() []InsiderSentiment {
	return []InsiderSentiment{
		{Symbol: "AAPL", Year: 2025, Month: 8, Change: 150_000, MSPR: 0.8},
		{Symbol: "AAPL", Year: 2025, Month: 7, Change: 200_000, MSPR: 0.9},
		{Symbol: "AAPL", Year: 2025, Month: 6, Change: -50_000, MSPR: 0.3},
	}
}

func mockEarnings() []Earnings {
	return []Earnings{
		{
			Symbol:          "AAPL",
			Date:            "2025-08-01",
			EPSActual:       1.40,
			EPSEstimate:     1.35,
			RevenueActual:   85_400_000_000,
			RevenueEstimate: 84_500_000_000,
			Surprise:        0.05,
			SurprisePercent: 3.7,
		},
	}
}

func mockCompanyNews(now time.Time) []CompanyNews {
	return []CompanyNews{
		{
			Category: "company",
			Datetime: now.Unix(),
			Headline: "Apple Reports Strong Q3 Earnings, Beats Expectations",
			ID:       1001,
			Related:  "AAPL",
			Source:   "Reuters",
			Summary:  "Apple Inc. reported better-than-expected quarterly results driven by strong iPhone sales and services revenue growth.",
			URL:      "https://example.com/news/1",
		},
		{
			Category: "company",
			Datetime: now.Add(-24 * time.Hour).Unix(),
			Headline: "Apple Insider Trading Activity Increases Ahead of Launch Event",
			ID:       1002,
			Related:  "AAPL",
			Source:   "Financial Times",
			Summary:  "Several Apple executives have increased their stock holdings ahead of the upcoming product launch event.",
			URL:      "https://example.com/news/2",
		},
	}
}
