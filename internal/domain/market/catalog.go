package market

import (
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"
)

func stock(symbol, name string, price, change float64, changePct float64, score float64, label SentimentLabel, confidence float64, sources int, keywords []string, sector string, marketCap int64) Stock {
	return Stock{
		Symbol:        symbol,
		Name:          name,
		Price:         decimal.NewFromFloat(price),
		Change:        decimal.NewFromFloat(change),
		ChangePercent: changePct,
		Sentiment: Sentiment{
			Score:      score,
			Label:      label,
			Confidence: confidence,
			Sources:    sources,
			Keywords:   keywords,
		},
		Sector:    sector,
		MarketCap: marketCap,
	}
}

// catalog is the built-in instrument universe used when no live quote
// source is available.
//
// TSM appears twice (International Technology and Emerging Markets)
// with different sentiment records; the catalog is intentionally not
// deduplicated by symbol.
var catalog = []Stock{
	// US Technology
	stock("AAPL", "Apple Inc.", 174.50, -2.30, -1.3, 0.2, SentimentBullish, 0.7, 45, []string{"innovation", "AI", "iPhone"}, "Technology", 2800000000000),
	stock("MSFT", "Microsoft Corporation", 421.30, 8.90, 2.2, 0.6, SentimentBullish, 0.9, 89, []string{"AI", "cloud", "azure"}, "Technology", 3120000000000),
	stock("GOOGL", "Alphabet Inc.", 140.85, 3.25, 2.4, 0.4, SentimentBullish, 0.8, 67, []string{"search", "AI", "advertising"}, "Technology", 1750000000000),
	stock("NVDA", "NVIDIA Corporation", 518.73, 15.20, 3.0, 0.8, SentimentBullish, 0.95, 134, []string{"AI", "chips", "gaming"}, "Technology", 1280000000000),
	stock("META", "Meta Platforms Inc.", 485.20, -8.45, -1.7, 0.1, SentimentNeutral, 0.6, 78, []string{"metaverse", "social", "VR"}, "Technology", 1230000000000),

	// International Technology
	stock("TSM", "Taiwan Semiconductor", 145.60, 2.80, 2.0, 0.5, SentimentBullish, 0.8, 56, []string{"semiconductors", "manufacturing", "chips"}, "Technology", 756000000000),
	stock("ASML", "ASML Holding N.V.", 720.45, 12.30, 1.7, 0.6, SentimentBullish, 0.85, 42, []string{"lithography", "equipment", "Netherlands"}, "Technology", 295000000000),

	// Healthcare & Pharmaceuticals
	stock("JNJ", "Johnson & Johnson", 158.90, 1.45, 0.9, 0.3, SentimentBullish, 0.7, 89, []string{"healthcare", "pharma", "dividend"}, "Healthcare", 418000000000),
	stock("PFE", "Pfizer Inc.", 28.75, -0.85, -2.9, -0.2, SentimentBearish, 0.6, 124, []string{"vaccine", "decline", "post-covid"}, "Healthcare", 162000000000),
	stock("UNH", "UnitedHealth Group", 542.30, 8.70, 1.6, 0.4, SentimentBullish, 0.8, 67, []string{"insurance", "healthcare", "growth"}, "Healthcare", 512000000000),
	stock("NVO", "Novo Nordisk A/S", 108.45, 3.20, 3.0, 0.7, SentimentBullish, 0.9, 78, []string{"diabetes", "ozempic", "Denmark"}, "Healthcare", 495000000000),

	// Financial Services
	stock("JPM", "JPMorgan Chase & Co.", 185.20, 2.15, 1.2, 0.3, SentimentBullish, 0.75, 156, []string{"banking", "rates", "earnings"}, "Finance", 542000000000),
	stock("BAC", "Bank of America Corp.", 34.85, 0.65, 1.9, 0.2, SentimentBullish, 0.7, 134, []string{"banking", "consumer", "credit"}, "Finance", 278000000000),
	stock("V", "Visa Inc.", 265.40, 4.20, 1.6, 0.5, SentimentBullish, 0.85, 89, []string{"payments", "digital", "network"}, "Finance", 578000000000),

	// Energy
	stock("XOM", "Exxon Mobil Corporation", 108.75, -1.25, -1.1, -0.1, SentimentNeutral, 0.6, 167, []string{"oil", "energy", "climate"}, "Energy", 458000000000),
	stock("CVX", "Chevron Corporation", 154.30, 0.85, 0.6, 0.1, SentimentNeutral, 0.65, 145, []string{"oil", "dividend", "production"}, "Energy", 295000000000),
	stock("NEE", "NextEra Energy Inc.", 75.20, 1.90, 2.6, 0.6, SentimentBullish, 0.8, 78, []string{"renewable", "solar", "wind"}, "Energy", 152000000000),

	// Automotive
	stock("TSLA", "Tesla Inc.", 248.50, -12.80, -4.9, -0.4, SentimentBearish, 0.8, 267, []string{"EV", "volatility", "musk"}, "Automotive", 790000000000),
	stock("F", "Ford Motor Company", 11.45, -0.35, -3.0, -0.3, SentimentBearish, 0.7, 189, []string{"traditional", "EV transition", "debt"}, "Automotive", 46000000000),
	stock("TM", "Toyota Motor Corporation", 178.90, 2.40, 1.4, 0.3, SentimentBullish, 0.75, 134, []string{"hybrid", "reliable", "Japan"}, "Automotive", 248000000000),

	// Consumer Goods
	stock("AMZN", "Amazon.com Inc.", 145.30, 3.85, 2.7, 0.4, SentimentBullish, 0.8, 234, []string{"e-commerce", "AWS", "cloud"}, "Consumer", 1520000000000),
	stock("WMT", "Walmart Inc.", 165.20, 1.25, 0.8, 0.2, SentimentBullish, 0.7, 156, []string{"retail", "value", "consumer"}, "Consumer", 534000000000),
	stock("PG", "Procter & Gamble Co.", 158.70, 0.90, 0.6, 0.3, SentimentBullish, 0.75, 89, []string{"consumer goods", "dividend", "stable"}, "Consumer", 378000000000),
	stock("NKE", "Nike Inc.", 102.15, -1.85, -1.8, -0.1, SentimentNeutral, 0.6, 167, []string{"athletic", "brand", "china"}, "Consumer", 159000000000),
	stock("NESN", "Nestlé S.A.", 112.80, 1.40, 1.3, 0.3, SentimentBullish, 0.7, 67, []string{"food", "Switzerland", "emerging markets"}, "Consumer", 356000000000),

	// Aerospace & Defense
	stock("BA", "Boeing Company", 198.45, -5.20, -2.6, -0.5, SentimentBearish, 0.8, 234, []string{"aerospace", "issues", "safety"}, "Aerospace", 118000000000),
	stock("LMT", "Lockheed Martin Corp.", 465.30, 8.90, 1.9, 0.4, SentimentBullish, 0.8, 89, []string{"defense", "contracts", "military"}, "Aerospace", 115000000000),

	// Real Estate
	stock("AMT", "American Tower Corp.", 195.60, 2.80, 1.5, 0.3, SentimentBullish, 0.75, 67, []string{"REIT", "towers", "5G"}, "Real Estate", 92000000000),
	stock("PLD", "Prologis Inc.", 125.40, 1.60, 1.3, 0.3, SentimentBullish, 0.7, 56, []string{"logistics", "warehouses", "e-commerce"}, "Real Estate", 116000000000),

	// Telecommunications
	stock("VZ", "Verizon Communications", 41.25, 0.45, 1.1, 0.1, SentimentNeutral, 0.6, 134, []string{"telecom", "dividend", "5G"}, "Telecom", 173000000000),
	stock("T", "AT&T Inc.", 19.85, -0.25, -1.2, -0.2, SentimentBearish, 0.7, 156, []string{"telecom", "debt", "restructuring"}, "Telecom", 142000000000),

	// Entertainment & Media
	stock("DIS", "Walt Disney Company", 89.75, 2.30, 2.6, 0.3, SentimentBullish, 0.7, 189, []string{"streaming", "parks", "entertainment"}, "Entertainment", 164000000000),
	stock("NFLX", "Netflix Inc.", 485.60, 12.40, 2.6, 0.5, SentimentBullish, 0.8, 145, []string{"streaming", "content", "subscribers"}, "Entertainment", 216000000000),

	// International Financial
	stock("BRK.B", "Berkshire Hathaway Inc.", 420.85, 5.20, 1.3, 0.4, SentimentBullish, 0.8, 234, []string{"buffett", "value", "conglomerate"}, "Finance", 920000000000),

	// Emerging Markets
	stock("BABA", "Alibaba Group Holding", 78.90, -2.15, -2.7, -0.3, SentimentBearish, 0.7, 189, []string{"china", "e-commerce", "regulation"}, "Technology", 198000000000),
	stock("TSM", "Taiwan Semiconductor", 145.60, 2.80, 2.0, 0.5, SentimentBullish, 0.8, 134, []string{"chips", "AI", "manufacturing"}, "Technology", 756000000000),
}

// SectorInfo describes a sector grouping for presentation
type SectorInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Sectors is the sector catalog keyed by sector tag
var Sectors = map[string]SectorInfo{
	"Technology":    {Name: "Technology", Description: "Software, hardware, and internet companies"},
	"Healthcare":    {Name: "Healthcare", Description: "Pharmaceutical, biotech, and medical device companies"},
	"Finance":       {Name: "Financial Services", Description: "Banks, insurance, and financial technology companies"},
	"Energy":        {Name: "Energy", Description: "Oil, gas, renewable energy, and utilities"},
	"Consumer":      {Name: "Consumer Goods", Description: "Retail, e-commerce, and consumer products"},
	"Automotive":    {Name: "Automotive", Description: "Car manufacturers and automotive technology"},
	"Aerospace":     {Name: "Aerospace & Defense", Description: "Aircraft manufacturers and defense contractors"},
	"Real Estate":   {Name: "Real Estate", Description: "REITs and real estate companies"},
	"Telecom":       {Name: "Telecommunications", Description: "Telecom providers and communication services"},
	"Entertainment": {Name: "Entertainment & Media", Description: "Streaming, gaming, and media companies"},
}

// Catalog returns a copy of the built-in instrument universe
func Catalog() []Stock {
	out := make([]Stock, len(catalog))
	copy(out, catalog)
	return out
}

// BySector returns catalog instruments with the given sector tag
func BySector(sector string) []Stock {
	var out []Stock
	for _, s := range catalog {
		if s.Sector == sector {
			out = append(out, s)
		}
	}
	return out
}

// SectorTags returns all known sector tags
func SectorTags() []string {
	tags := make([]string, 0, len(Sectors))
	for tag := range Sectors {
		tags = append(tags, tag)
	}
	return tags
}

// Random returns count instruments sampled without replacement
func Random(rng *rand.Rand, count int) []Stock {
	shuffled := Catalog()
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}

// Search matches query against symbol, name, sector, and sentiment keywords
func Search(query string) []Stock {
	q := strings.ToLower(query)
	var out []Stock
	for _, s := range catalog {
		if strings.Contains(strings.ToLower(s.Symbol), q) ||
			strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Sector), q) ||
			keywordMatch(s.Sentiment.Keywords, q) {
			out = append(out, s)
		}
	}
	return out
}

func keywordMatch(keywords []string, q string) bool {
	for _, k := range keywords {
		if strings.Contains(strings.ToLower(k), q) {
			return true
		}
	}
	return false
}
